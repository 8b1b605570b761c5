package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "eurolife"

// Metrics holds the Prometheus counters, histograms, and gauges for the dashboard service.
type Metrics struct {
	// Dataset load metrics.
	DatasetLoads        *prometheus.CounterVec // labels: outcome={success,error}
	DatasetLoadDuration prometheus.Histogram
	DatasetReady        prometheus.Gauge
	Observations        prometheus.Gauge
	DroppedRows         *prometheus.CounterVec // labels: reason

	// Source fetch metrics.
	FetchRequests *prometheus.CounterVec   // labels: scheme={file,http}, outcome={success,error}
	FetchDuration *prometheus.HistogramVec // labels: scheme

	// Interaction metrics.
	Resolutions      *prometheus.CounterVec // labels: kind={direct,alias,none}
	SelectionToggles *prometheus.CounterVec // labels: result={added,removed,rejected}
	Sessions         prometheus.Counter

	// Explorer metrics.
	ExplorerUploads *prometheus.CounterVec // labels: outcome={success,error}
	ExplorerTables  prometheus.Gauge

	// Export metrics.
	MessagesPublished prometheus.Counter
	PublishErrors     prometheus.Counter
}

func newMetrics() *Metrics {
	return &Metrics{
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset load attempts by outcome.",
		}, []string{"outcome"}),
		DatasetLoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_load_duration_seconds",
			Help:      "Duration of a complete fetch-join-derive cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		DatasetReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_ready",
			Help:      "1 once a dataset has been installed, 0 before.",
		}),
		Observations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "observations",
			Help:      "Observations in the installed combined dataset.",
		}),
		DroppedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_rows_total",
			Help:      "Source rows dropped while cleaning or joining, by reason.",
		}, []string{"reason"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Source fetches by scheme and outcome.",
		}, []string{"scheme", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Source fetch duration in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"scheme"}),
		Resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "country_resolutions_total",
			Help:      "Boundary code resolutions by match kind.",
		}, []string{"kind"}),
		SelectionToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selection_toggles_total",
			Help:      "Selection toggles by result.",
		}, []string{"result"}),
		Sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Dashboard sessions created since start.",
		}),
		ExplorerUploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explorer_uploads_total",
			Help:      "Explorer table uploads by outcome.",
		}, []string{"outcome"}),
		ExplorerTables: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "explorer_tables",
			Help:      "Explorer tables currently held in memory.",
		}),
		MessagesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "Observation messages written to the export topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed dataset exports.",
		}),
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.DatasetLoads,
		m.DatasetLoadDuration,
		m.DatasetReady,
		m.Observations,
		m.DroppedRows,
		m.FetchRequests,
		m.FetchDuration,
		m.Resolutions,
		m.SelectionToggles,
		m.Sessions,
		m.ExplorerUploads,
		m.ExplorerTables,
		m.MessagesPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
