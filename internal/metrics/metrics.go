// Package metrics exposes the prometheus collectors the daemon registers
// against its own registry and serves over its metrics HTTP endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the daemon's own prometheus registry. The teacher registers
// against the controller-runtime manager's shared registry; this daemon has
// no manager, so it keeps a private registry served directly by cmd/ddnsd.
var Registry = prometheus.NewRegistry()

const (
	recordLabel   = "record"
	providerLabel = "provider"
)

var (
	// EngineEventsTotal counts engine observability events by kind.
	EngineEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddns_engine_events_total",
			Help: "Count of engine observability events, by event kind.",
		},
		[]string{"kind"},
	)

	// UpdateOutcomesTotal counts update-with-retry outcomes per record.
	UpdateOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddns_update_outcomes_total",
			Help: "Count of update-with-retry outcomes, by record and outcome.",
		},
		[]string{recordLabel, "outcome"},
	)

	// ProviderCallsTotal counts calls made to DNS providers, by provider and result.
	ProviderCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ddns_provider_calls_total",
			Help: "Count of DNS provider update_record invocations, by provider and result.",
		},
		[]string{providerLabel, "result"},
	)

	// RetryAttempts observes the number of attempts consumed per update.
	RetryAttempts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ddns_update_retry_attempts",
			Help:    "Number of provider attempts consumed per update-with-retry call.",
			Buckets: []float64{1, 2, 3, 4, 5, 8},
		},
		[]string{recordLabel},
	)

	// EventChannelDropsTotal counts observability events dropped because the
	// bounded event channel was full.
	EventChannelDropsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ddns_event_channel_drops_total",
			Help: "Count of engine events dropped because the observability channel was full.",
		},
	)
)

func init() {
	Registry.MustRegister(
		EngineEventsTotal,
		UpdateOutcomesTotal,
		ProviderCallsTotal,
		RetryAttempts,
		EventChannelDropsTotal,
		clientCounter,
		clientLatency,
		clientInFlight,
	)
}
