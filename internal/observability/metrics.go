package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// telemetry pipeline.
type Metrics struct {
	ReadingsConsumed    prometheus.Counter
	RecordsPublished    prometheus.Counter
	TransformErrors     prometheus.Counter
	UnknownObservations prometheus.Counter
	PipelineRunning     prometheus.Gauge

	ReadingsNormalized *prometheus.CounterVec // label: source={stream,rest,rest-history}

	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Site enrichment metrics.
	SiteLookups *prometheus.CounterVec // labels: outcome={success,error}, result={hit,miss}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.ReadingsConsumed,
		m.RecordsPublished,
		m.TransformErrors,
		m.UnknownObservations,
		m.PipelineRunning,
		m.ReadingsNormalized,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.SiteLookups,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		ReadingsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "easee_etl",
			Name:      "readings_consumed_total",
			Help:      "Total raw reading envelopes extracted from the transports.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "easee_etl",
			Name:      "records_published_total",
			Help:      "Total canonical records written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "easee_etl",
			Name:      "transform_errors_total",
			Help:      "Total envelopes dropped because they held no observation data.",
		}),
		UnknownObservations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "easee_etl",
			Name:      "unknown_observations_total",
			Help:      "Readings normalized without a matching catalogue definition.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "easee_etl",
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		ReadingsNormalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easee_etl",
			Name:      "readings_normalized_total",
			Help:      "Canonical records produced, by originating transport.",
		}, []string{"source"}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "easee_etl",
			Name:      "batch_size",
			Help:      "Number of envelopes per extracted batch.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "easee_etl",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-transform-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		SiteLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "easee_etl",
			Name:      "site_lookups_total",
			Help:      "Site metadata lookups by outcome and cache result.",
		}, []string{"outcome", "result"}),
	}
}
