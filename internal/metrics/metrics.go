package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Pipeline metrics
	providerFetches  *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	snapshotReuses   prometheus.Counter
	snapshotPersists *prometheus.CounterVec
	authzDecisions   *prometheus.CounterVec
	backtestsTotal   *prometheus.CounterVec
	pipelineDuration prometheus.Histogram
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Pipeline metrics
	r.providerFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundpipe_provider_fetches_total",
			Help: "Total number of live provider fetches",
		},
		[]string{"ticker", "status"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundpipe_cache_lookups_total",
			Help: "Total number of volatile cache lookups",
		},
		[]string{"outcome"},
	)
	r.snapshotReuses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fundpipe_snapshot_reuses_total",
			Help: "Total number of fresh durable snapshots reused instead of a live fetch",
		},
	)
	r.snapshotPersists = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundpipe_snapshot_persists_total",
			Help: "Total number of opportunistic snapshot writes",
		},
		[]string{"status"},
	)
	r.authzDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundpipe_authz_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"decision"},
	)
	r.backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundpipe_backtests_total",
			Help: "Total number of backtests",
		},
		[]string{"status"},
	)
	r.pipelineDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fundpipe_pipeline_duration_seconds",
			Help:    "Fund pipeline duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	reg.MustRegister(r.providerFetches)
	reg.MustRegister(r.cacheLookups)
	reg.MustRegister(r.snapshotReuses)
	reg.MustRegister(r.snapshotPersists)
	reg.MustRegister(r.authzDecisions)
	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.pipelineDuration)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordProviderFetch records a live provider fetch.
func (r *Registry) RecordProviderFetch(ticker, status string) {
	r.providerFetches.WithLabelValues(ticker, status).Inc()
}

// RecordCacheLookup records a volatile cache hit or miss.
func (r *Registry) RecordCacheLookup(outcome string) {
	r.cacheLookups.WithLabelValues(outcome).Inc()
}

// RecordSnapshotReuse records a fresh durable snapshot reuse.
func (r *Registry) RecordSnapshotReuse() {
	r.snapshotReuses.Inc()
}

// RecordSnapshotPersist records an opportunistic snapshot write.
func (r *Registry) RecordSnapshotPersist(status string) {
	r.snapshotPersists.WithLabelValues(status).Inc()
}

// RecordAuthzDecision records an authorization grant or deny.
func (r *Registry) RecordAuthzDecision(decision string) {
	r.authzDecisions.WithLabelValues(decision).Inc()
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(status string) {
	r.backtestsTotal.WithLabelValues(status).Inc()
}

// RecordPipeline records a completed fund pipeline run.
func (r *Registry) RecordPipeline(duration float64) {
	r.pipelineDuration.Observe(duration)
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
