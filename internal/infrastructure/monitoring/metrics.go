package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Suggestion fetch outcomes.
const (
	FetchInTime = "in_time"
	FetchLate   = "late"
	FetchStale  = "stale"
	FetchError  = "error"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Query pipeline metrics
	QueriesTotal       *prometheus.CounterVec
	SuggestionFetches  *prometheus.CounterVec
	SuggestionDuration *prometheus.HistogramVec
	SuggestionsMerged  prometheus.Counter
	UpdatesPublished   prometheus.Counter
	Invocations        *prometheus.CounterVec

	// Settings persistence metrics
	StoreLoads *prometheus.CounterVec
	StoreSaves *prometheus.CounterVec

	// Provider breaker state (0 closed, 1 half-open, 2 open)
	BreakerState *prometheus.GaugeVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec
}

// NewMetrics creates a new metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websearch_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "websearch_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),

		QueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websearch_queries_total",
				Help: "Total number of queries answered, by search source keyword",
			},
			[]string{"keyword"},
		),
		SuggestionFetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websearch_suggestion_fetches_total",
				Help: "Suggestion fetches by provider and outcome (in_time, late, stale, error)",
			},
			[]string{"provider", "outcome"},
		),
		SuggestionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "websearch_suggestion_fetch_duration_seconds",
				Help:    "Suggestion fetch duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .2, .3, .5, 1, 2.5, 5},
			},
			[]string{"provider"},
		),
		SuggestionsMerged: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "websearch_suggestions_merged_total",
				Help: "Total number of suggestion entries merged into result lists",
			},
		),
		UpdatesPublished: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "websearch_result_updates_published_total",
				Help: "Total number of late result updates delivered to listeners",
			},
		),
		Invocations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websearch_result_invocations_total",
				Help: "Result actions invoked, by outcome",
			},
			[]string{"outcome"},
		),

		StoreLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websearch_store_loads_total",
				Help: "Stored value loads by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		StoreSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websearch_store_saves_total",
				Help: "Stored value saves by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "websearch_provider_breaker_state",
				Help: "Suggestion provider circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"provider"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "websearch_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "websearch_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordQuery counts a query answered from the source with keyword.
func (m *Metrics) RecordQuery(keyword string) {
	m.QueriesTotal.WithLabelValues(keyword).Inc()
}

// RecordSuggestionFetch records one finished suggestion fetch.
func (m *Metrics) RecordSuggestionFetch(provider, outcome string, duration time.Duration) {
	m.SuggestionFetches.WithLabelValues(provider, outcome).Inc()
	m.SuggestionDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// AddSuggestionsMerged counts suggestion entries appended to a result list.
func (m *Metrics) AddSuggestionsMerged(n int) {
	m.SuggestionsMerged.Add(float64(n))
}

// IncUpdatesPublished counts a late update delivered to listeners.
func (m *Metrics) IncUpdatesPublished() {
	m.UpdatesPublished.Inc()
}

// RecordInvocation counts a result action invocation.
func (m *Metrics) RecordInvocation(handled bool) {
	outcome := "handled"
	if !handled {
		outcome = "unhandled"
	}
	m.Invocations.WithLabelValues(outcome).Inc()
}

// StoreLoaded implements storage.Observer.
func (m *Metrics) StoreLoaded(kind, outcome string) {
	m.StoreLoads.WithLabelValues(kind, outcome).Inc()
}

// StoreSaved implements storage.Observer.
func (m *Metrics) StoreSaved(kind, outcome string) {
	m.StoreSaves.WithLabelValues(kind, outcome).Inc()
}

// SetBreakerState records a provider breaker state.
func (m *Metrics) SetBreakerState(provider string, state int) {
	m.BreakerState.WithLabelValues(provider).Set(float64(state))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}
