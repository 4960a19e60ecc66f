package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Datastore Metrics
	DatastoreQueriesTotal    *prometheus.CounterVec
	DatastoreQueryDuration   *prometheus.HistogramVec
	DatastoreCacheHits       *prometheus.CounterVec
	DatastoreConnectionsOpen prometheus.Gauge

	// Database Metrics
	DatabaseRecords   *prometheus.GaugeVec
	DatabaseInvalid   prometheus.Gauge

	// Application Metrics
	IPLookupsTotal    *prometheus.CounterVec
	IPLookupsNotFound prometheus.Counter
	IPLookupsErrors   *prometheus.CounterVec
}

// New creates all metrics and registers them with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates all metrics and registers them with reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		// Datastore Metrics
		DatastoreQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_queries_total",
				Help: "Total number of datastore queries",
			},
			[]string{"datastore", "operation", "status"},
		),

		DatastoreQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datastore_query_duration_seconds",
				Help:    "Datastore query latency in seconds",
				Buckets: []float64{.00001, .0001, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"datastore", "operation"},
		),

		DatastoreCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_cache_hits_total",
				Help: "Total number of cache hits vs misses",
			},
			[]string{"datastore", "result"},
		),

		DatastoreConnectionsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "datastore_connections_open",
				Help: "Number of open datastore connections",
			},
		),

		// Database Metrics
		DatabaseRecords: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ipdb_records",
				Help: "Number of range records loaded per address family",
			},
			[]string{"family"},
		),

		DatabaseInvalid: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "ipdb_invalid",
				Help: "1 when a zone of the loaded database failed validation and is served as empty",
			},
		),

		// Application Metrics
		IPLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ip_lookups_total",
				Help: "Total number of IP lookups",
			},
			[]string{"result"},
		),

		IPLookupsNotFound: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ip_lookups_not_found_total",
				Help: "Total number of IP lookups that returned not found",
			},
		),

		IPLookupsErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ip_lookups_errors_total",
				Help: "Total number of IP lookup errors",
			},
			[]string{"error_type"},
		),
	}
}

// ObserveQuery records one datastore query. m may be nil.
func (m *Metrics) ObserveQuery(datastore, operation, status string, seconds float64) {
	if m == nil {
		return
	}
	m.DatastoreQueriesTotal.WithLabelValues(datastore, operation, status).Inc()
	m.DatastoreQueryDuration.WithLabelValues(datastore, operation).Observe(seconds)
}

// CacheResult records a cache hit or miss. m may be nil.
func (m *Metrics) CacheResult(datastore, result string) {
	if m == nil {
		return
	}
	m.DatastoreCacheHits.WithLabelValues(datastore, result).Inc()
}
