// Package fake provides a controllable DNS provider test double that
// records every UpdateRecord call, for asserting the engine's idempotency,
// retry, and call-count behavior.
package fake

import (
	"context"
	"net"
	"sync"

	"github.com/kuadrant/ddns-operator/internal/dnsprovider"
	"github.com/kuadrant/ddns-operator/internal/model"
)

// Call records a single UpdateRecord invocation.
type Call struct {
	Name string
	IP   net.IP
}

// Provider is a controllable dnsprovider.Provider test double.
type Provider struct {
	mu sync.Mutex

	// Results, if set, is consumed in order for successive UpdateRecord
	// calls; when exhausted the last entry repeats.
	Results []model.UpdateResult
	// Err, if set, makes every UpdateRecord call fail with this error.
	Err error

	calls    []Call
	records  map[string]net.IP
}

// New constructs an empty fake provider.
func New() *Provider {
	return &Provider{records: make(map[string]net.IP)}
}

var _ dnsprovider.Provider = (*Provider)(nil)

func (p *Provider) Name() string { return "fake" }

func (p *Provider) SupportsRecord(name string) bool { return name != "" }

func (p *Provider) GetRecord(ctx context.Context, name string) (dnsprovider.RecordMetadata, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ip, ok := p.records[name]
	if !ok {
		return dnsprovider.RecordMetadata{}, dnsprovider.ErrRecordNotFound
	}
	return dnsprovider.RecordMetadata{Name: name, IP: ip}, nil
}

func (p *Provider) UpdateRecord(ctx context.Context, name string, ip net.IP) (model.UpdateResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{Name: name, IP: ip})

	if p.Err != nil {
		return model.UpdateResult{}, p.Err
	}

	if len(p.Results) > 0 {
		idx := len(p.calls) - 1
		if idx >= len(p.Results) {
			idx = len(p.Results) - 1
		}
		result := p.Results[idx]
		if result.NewIP != nil {
			p.records[name] = result.NewIP
		}
		return result, nil
	}

	previous, existed := p.records[name]
	p.records[name] = ip
	if !existed {
		return model.UpdateResult{Kind: model.OutcomeCreated, NewIP: ip}, nil
	}
	if previous.Equal(ip) {
		return model.UpdateResult{Kind: model.OutcomeUnchanged, CurrentIP: ip}, nil
	}
	return model.UpdateResult{Kind: model.OutcomeUpdated, PreviousIP: previous, NewIP: ip}, nil
}

// Calls returns every UpdateRecord call observed so far, in order.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount is a convenience for len(Calls()).
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
