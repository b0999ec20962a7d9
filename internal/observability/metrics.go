package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cyclist_scatter"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Source fetch metrics.
	FetchRequests *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration prometheus.Histogram
	CacheLookups  *prometheus.CounterVec // labels: result={hit,miss}

	// Dataset build metrics.
	RecordsNormalized    prometheus.Counter
	NormalizeErrors      prometheus.Counter
	DatasetSize          prometheus.Gauge
	DuplicateYearRecords prometheus.Gauge
	BuildDuration        prometheus.Histogram

	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
	PipelineReady    prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	if err := m.Register(prometheus.DefaultRegisterer); err != nil {
		panic(err)
	}
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// Register adds all metrics to r.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Dataset fetches by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a dataset fetch in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_cache_total",
			Help:      "Dataset cache lookups by result.",
		}, []string{"result"}),
		RecordsNormalized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_normalized_total",
			Help:      "Total raw records converted into normalized records.",
		}),
		NormalizeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_errors_total",
			Help:      "Total dataset builds rejected because of a malformed record.",
		}),
		DatasetSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Number of records in the current dataset.",
		}),
		DuplicateYearRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_duplicate_year_records",
			Help:      "Records in the current dataset flagged as repeating their predecessor.",
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Duration of a complete fetch, normalize and layout cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_published_total",
			Help:      "Total normalized records written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Total failed Kafka publish attempts.",
		}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_ready",
			Help:      "1 once a dataset has been built, 0 before.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FetchRequests,
		m.FetchDuration,
		m.CacheLookups,
		m.RecordsNormalized,
		m.NormalizeErrors,
		m.DatasetSize,
		m.DuplicateYearRecords,
		m.BuildDuration,
		m.RecordsPublished,
		m.PublishErrors,
		m.PipelineReady,
	}
}
