package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "traffic_cams"

// Metrics holds the Prometheus counters and histograms for feed aggregation,
// the HTTP surface, marker rendering and the Kafka export.
type Metrics struct {
	// Feed metrics.
	FeedDecodes    *prometheus.CounterVec   // labels: source, outcome={success,error}
	FeedRecords    *prometheus.CounterVec   // labels: source
	FeedDropped    *prometheus.CounterVec   // labels: source, reason
	FeedDuration   *prometheus.HistogramVec // labels: source
	FeedsAvailable prometheus.Gauge

	// Aggregate metrics.
	AggregateDuration prometheus.Histogram
	AggregateFailures prometheus.Counter

	HTTPRequests    *prometheus.CounterVec // labels: route, status
	MarkerCache     *prometheus.CounterVec // labels: result={hit,miss}
	RecordsExported prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FeedDecodes,
		m.FeedRecords,
		m.FeedDropped,
		m.FeedDuration,
		m.FeedsAvailable,
		m.AggregateDuration,
		m.AggregateFailures,
		m.HTTPRequests,
		m.MarkerCache,
		m.RecordsExported,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// NewUnregisteredMetrics creates Metrics for one-shot commands that never
// expose /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FeedDecodes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_decodes_total",
			Help:      "Feed decode attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		FeedRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_records_total",
			Help:      "Records produced by the normalizers, by source.",
		}, []string{"source"}),
		FeedDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_dropped_records_total",
			Help:      "Raw features discarded during normalization, by source and reason.",
		}, []string{"source", "reason"}),
		FeedDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_duration_seconds",
			Help:      "Time to read, decode and normalize one feed.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
		FeedsAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feeds_available",
			Help:      "Number of feed files readable at the last readiness check.",
		}),
		AggregateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "Duration of a full four-source aggregation.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		AggregateFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregate_failures_total",
			Help:      "Aggregations that failed outright: every source failed or the deadline expired.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		MarkerCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "marker_cache_total",
			Help:      "Marker icon cache lookups by result.",
		}, []string{"result"}),
		RecordsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_exported_total",
			Help:      "Records published to the export topic.",
		}),
	}
}
