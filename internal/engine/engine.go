// Package engine implements the core reconciliation loop: it watches an IP
// source for change events and, for each configured record, checks state for
// idempotency and rate limiting before asking a DNS provider to update the
// record, persisting the result and emitting observability events.
package engine

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/kuadrant/ddns-operator/internal/config"
	"github.com/kuadrant/ddns-operator/internal/ddnserr"
	"github.com/kuadrant/ddns-operator/internal/dnsprovider"
	"github.com/kuadrant/ddns-operator/internal/ipsource"
	"github.com/kuadrant/ddns-operator/internal/metrics"
	"github.com/kuadrant/ddns-operator/internal/model"
	"github.com/kuadrant/ddns-operator/internal/statestore"
)

// State is the engine's lifecycle state.
type State string

const (
	StateConstructed State = "constructed"
	StateRunning     State = "running"
	StateDraining    State = "draining"
	StateStopped     State = "stopped"
)

// Engine orchestrates the IP-change -> state-check -> provider-update ->
// state-persist -> event-emit flow for every enabled, supported record.
type Engine struct {
	ipSource   ipsource.Source
	provider   dnsprovider.Provider
	stateStore statestore.Store
	records    []model.Record
	engineCfg  config.EngineConfig
	log        logr.Logger

	events chan model.EngineEvent
	state  State

	runID string
}

// New constructs an Engine. It fails with a Config error when no records are
// given or the event channel capacity is not positive; the provider and IP
// source configurations are not checked here (config.Config.Validate does).
func New(src ipsource.Source, provider dnsprovider.Provider, store statestore.Store, records []config.RecordConfig, engineCfg config.EngineConfig, log logr.Logger) (*Engine, error) {
	if len(records) == 0 {
		return nil, ddnserr.Config("records: at least one record must be configured")
	}
	if engineCfg.EventChannelCapacity <= 0 {
		return nil, ddnserr.Config("engine.event_channel_capacity must be > 0")
	}

	recs := make([]model.Record, 0, len(records))
	for _, r := range records {
		recs = append(recs, model.Record{Name: r.Name, Type: r.TypeOrDefault(), Enabled: r.EnabledOrDefault()})
	}

	return &Engine{
		ipSource:   src,
		provider:   provider,
		stateStore: store,
		records:    recs,
		engineCfg:  engineCfg,
		log:        log,
		events:     make(chan model.EngineEvent, engineCfg.EventChannelCapacity),
		state:      StateConstructed,
		runID:      uuid.NewString(),
	}, nil
}

// Events returns the engine's observability event channel. It is closed when
// the engine stops.
func (e *Engine) Events() <-chan model.EngineEvent { return e.events }

// State reports the engine's current lifecycle state.
func (e *Engine) State() State { return e.state }

// Run starts the engine's event-driven loop and blocks until ctx is
// cancelled. Cancelling ctx is the production shutdown path (wired to
// SIGINT/SIGTERM by the caller); RunWithShutdown exists for tests that need
// an additional, independently controllable signal.
func (e *Engine) Run(ctx context.Context) error {
	return e.RunWithShutdown(ctx, nil)
}

// RunWithShutdown is Run's internal implementation, exposed so tests can
// supply an extra shutdown channel instead of relying on context
// cancellation alone. Production code should call Run.
func (e *Engine) RunWithShutdown(ctx context.Context, shutdown <-chan struct{}) error {
	defer close(e.events)

	e.log = e.log.WithValues("run_id", e.runID)
	e.state = StateRunning
	e.emit(model.EngineEvent{Kind: model.EventStarted, Time: time.Now(), RecordsCount: len(e.records)})

	if e.engineCfg.StartupDelaySecs > 0 {
		timer := time.NewTimer(time.Duration(e.engineCfg.StartupDelaySecs) * time.Second)
		select {
		case <-ctx.Done():
			timer.Stop()
			e.state = StateStopped
			return ctx.Err()
		case <-timer.C:
		}
	}

	if ip, err := e.ipSource.Current(ctx); err != nil {
		e.state = StateStopped
		return ddnserr.IpSource("current", err)
	} else {
		e.log.Info("initial IP", "ip", ip)
	}

	changes, err := e.ipSource.Watch(ctx)
	if err != nil {
		e.state = StateStopped
		return ddnserr.IpSource("watch", err)
	}

	for {
		select {
		case <-ctx.Done():
			e.state = StateDraining
			e.emit(model.EngineEvent{Kind: model.EventStopped, Time: time.Now(), Reason: "context cancelled"})
			err := e.drain(ctx)
			e.state = StateStopped
			return err

		case <-shutdown:
			e.state = StateDraining
			e.emit(model.EngineEvent{Kind: model.EventStopped, Time: time.Now(), Reason: "shutdown signal"})
			err := e.drain(ctx)
			e.state = StateStopped
			return err

		case event, ok := <-changes:
			if !ok {
				e.state = StateDraining
				e.emit(model.EngineEvent{Kind: model.EventStopped, Time: time.Now(), Reason: "ip source closed"})
				err := e.drain(ctx)
				e.state = StateStopped
				return err
			}
			e.handleIpChange(ctx, event)
		}
	}
}

// drain flushes the state store before the engine stops. A flush failure is
// fatal to Run, mirroring the initial current() read.
func (e *Engine) drain(ctx context.Context) error {
	if err := e.stateStore.Flush(ctx); err != nil {
		wrapped := ddnserr.StateStore("flush", err)
		e.log.Error(wrapped, "failed to flush state store on shutdown")
		return wrapped
	}
	return nil
}

// handleIpChange processes a single IP change event against every enabled,
// supported record, in configuration order.
func (e *Engine) handleIpChange(ctx context.Context, event model.IpChangeEvent) {
	for _, record := range e.records {
		if !record.Enabled {
			continue
		}
		if !e.provider.SupportsRecord(record.Name) {
			e.log.Info("provider does not support record, skipping", "provider", e.provider.Name(), "record", record.Name)
			continue
		}

		e.emit(model.EngineEvent{Kind: model.EventIpChangeDetected, Time: time.Now(), Record: record.Name, NewIP: event.NewIP})

		if err := e.updateRecordWithRetry(ctx, record.Name, event.NewIP); err != nil {
			e.log.Error(err, "failed to update record", "record", record.Name)
		}
	}
}

// updateRecordWithRetry gates on idempotency and rate limiting, then attempts
// the update up to MaxRetries+1 times with RetryDelaySecs between attempts.
func (e *Engine) updateRecordWithRetry(ctx context.Context, name string, newIP net.IP) error {
	if lastIP, ok, err := e.stateStore.GetLastIP(ctx, name); err == nil && ok && lastIP.Equal(newIP) {
		e.emit(model.EngineEvent{Kind: model.EventUpdateSkipped, Time: time.Now(), Record: name, CurrentIP: newIP})
		return nil
	}

	if e.engineCfg.MinUpdateIntervalSecs > 0 {
		if rec, ok, err := e.stateStore.GetRecord(ctx, name); err == nil && ok {
			minInterval := time.Duration(e.engineCfg.MinUpdateIntervalSecs) * time.Second
			if !rec.IsStale(minInterval, time.Now()) {
				e.emit(model.EngineEvent{Kind: model.EventUpdateSkipped, Time: time.Now(), Record: name, CurrentIP: newIP})
				return nil
			}
		}
	}

	e.emit(model.EngineEvent{Kind: model.EventUpdateStarted, Time: time.Now(), Record: name, NewIP: newIP})

	var lastErr error
	attempt := 0
	for ; attempt <= e.engineCfg.MaxRetries; attempt++ {
		result, err := e.doUpdate(ctx, name, newIP)
		if err == nil {
			metrics.ProviderCallsTotal.WithLabelValues(e.provider.Name(), "success").Inc()
			metrics.RetryAttempts.WithLabelValues(name).Observe(float64(attempt + 1))
			metrics.UpdateOutcomesTotal.WithLabelValues(name, string(result.Kind)).Inc()
			e.onUpdateSuccess(name, newIP, result)
			if setErr := e.stateStore.SetLastIP(ctx, name, newIP); setErr != nil {
				return ddnserr.StateStore("set_last_ip", setErr)
			}
			return nil
		}

		metrics.ProviderCallsTotal.WithLabelValues(e.provider.Name(), "error").Inc()
		lastErr = err
		e.log.Error(dnsprovider.SanitizeError(err), "update attempt failed", "record", name, "attempt", attempt)

		if attempt < e.engineCfg.MaxRetries {
			timer := time.NewTimer(time.Duration(e.engineCfg.RetryDelaySecs) * time.Second)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	metrics.RetryAttempts.WithLabelValues(name).Observe(float64(attempt))
	metrics.UpdateOutcomesTotal.WithLabelValues(name, "failed").Inc()
	sanitized := dnsprovider.SanitizeError(lastErr)
	e.emit(model.EngineEvent{Kind: model.EventUpdateFailed, Time: time.Now(), Record: name, NewIP: newIP, Err: sanitized, RetryCount: e.engineCfg.MaxRetries})
	return ddnserr.DnsProvider(name, sanitized)
}

func (e *Engine) onUpdateSuccess(name string, newIP net.IP, result model.UpdateResult) {
	switch result.Kind {
	case model.OutcomeUpdated:
		e.emit(model.EngineEvent{Kind: model.EventUpdateSucceeded, Time: time.Now(), Record: name, NewIP: newIP, PreviousIP: result.PreviousIP})
	case model.OutcomeCreated:
		e.emit(model.EngineEvent{Kind: model.EventUpdateSucceeded, Time: time.Now(), Record: name, NewIP: newIP})
	case model.OutcomeUnchanged:
		// No event: the provider found nothing to do, and the engine
		// already emitted UpdateStarted; there is no additional signal
		// worth a distinct event beyond the state store write below.
	}
}

// doUpdate performs exactly one provider call, wrapping any error with the
// provider's identity for attribution (§7 error propagation).
func (e *Engine) doUpdate(ctx context.Context, name string, newIP net.IP) (model.UpdateResult, error) {
	result, err := e.provider.UpdateRecord(ctx, name, newIP)
	if err != nil {
		return model.UpdateResult{}, fmt.Errorf("provider %q: %w", e.provider.Name(), err)
	}
	return result, nil
}

// emit performs a non-blocking bounded send, dropping (and counting) the
// event if the channel is full rather than applying backpressure to the
// reconciliation loop.
func (e *Engine) emit(event model.EngineEvent) {
	metrics.EngineEventsTotal.WithLabelValues(string(event.Kind)).Inc()
	select {
	case e.events <- event:
	default:
		metrics.EventChannelDropsTotal.Inc()
		e.log.Info("event channel full, dropping event", "kind", event.Kind)
	}
}
