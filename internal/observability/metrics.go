package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the ET
// pipeline.
type Metrics struct {
	DaysComputed     prometheus.Counter
	DayFailures      prometheus.Counter
	RecordsPublished prometheus.Counter
	PipelineRunning  prometheus.Gauge

	// Per-day processing metrics.
	DayComputeDuration prometheus.Histogram

	// Archive fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: kind={day,ancillary}, outcome={success,missing,error}
	FetchDuration *prometheus.HistogramVec // labels: kind={day,ancillary}
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DaysComputed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "refet_etl",
			Name:      "days_computed_total",
			Help:      "Total calendar days successfully evaluated.",
		}),
		DayFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "refet_etl",
			Name:      "day_failures_total",
			Help:      "Total calendar days that failed to evaluate.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "refet_etl",
			Name:      "records_published_total",
			Help:      "Total day records delivered to sinks.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "refet_etl",
			Name:      "pipeline_running",
			Help:      "1 when the driver is active, 0 when shut down.",
		}),
		DayComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "refet_etl",
			Name:      "day_compute_duration_seconds",
			Help:      "Duration of one fetch-normalize-evaluate day cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "refet_etl",
			Name:      "fetch_requests_total",
			Help:      "Archive fetches by kind and outcome.",
		}, []string{"kind", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "refet_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Archive request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
	}

	prometheus.MustRegister(
		m.DaysComputed,
		m.DayFailures,
		m.RecordsPublished,
		m.PipelineRunning,
		m.DayComputeDuration,
		m.FetchRequests,
		m.FetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DaysComputed:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "refet_etl", Name: "days_computed_total"}),
		DayFailures:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "refet_etl", Name: "day_failures_total"}),
		RecordsPublished:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "refet_etl", Name: "records_published_total"}),
		PipelineRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "refet_etl", Name: "pipeline_running"}),
		DayComputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "refet_etl", Name: "day_compute_duration_seconds"}),
		FetchRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "refet_etl", Name: "fetch_requests_total"}, []string{"kind", "outcome"}),
		FetchDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "refet_etl", Name: "fetch_duration_seconds"}, []string{"kind"}),
	}
}
