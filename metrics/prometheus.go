package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "social_analytics"

// PrometheusRecorder exports pipeline events as Prometheus metrics.
type PrometheusRecorder struct {
	filesImported  *prometheus.CounterVec
	filesFailed    *prometheus.CounterVec
	rowsAccepted   *prometheus.HistogramVec
	importDuration prometheus.Histogram
	viewsComputed  *prometheus.CounterVec
}

// NewPrometheusRecorder registers the pipeline metrics on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		filesImported: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "import",
				Name:      "files_total",
				Help:      "Total number of files imported by record type",
			},
			[]string{"record_type"},
		),
		filesFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "import",
				Name:      "files_failed_total",
				Help:      "Total number of files rejected by failure reason",
			},
			[]string{"reason"},
		),
		rowsAccepted: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "import",
				Name:      "rows_accepted",
				Help:      "Rows accepted per imported file",
				Buckets:   []float64{1, 7, 30, 90, 365, 1000, 5000},
			},
			[]string{"record_type"},
		),
		importDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "import",
				Name:      "batch_duration_seconds",
				Help:      "Duration of import batches in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		viewsComputed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "analytics",
				Name:      "views_total",
				Help:      "Total number of dashboard views computed by window",
			},
			[]string{"window"},
		),
	}
}

func (r *PrometheusRecorder) IncFileImported(recordType string) {
	r.filesImported.WithLabelValues(recordType).Inc()
}

func (r *PrometheusRecorder) IncFileFailed(reason string) {
	r.filesFailed.WithLabelValues(reason).Inc()
}

func (r *PrometheusRecorder) ObserveRowsAccepted(recordType string, rows int) {
	r.rowsAccepted.WithLabelValues(recordType).Observe(float64(rows))
}

func (r *PrometheusRecorder) ObserveImportDuration(d time.Duration) {
	r.importDuration.Observe(d.Seconds())
}

func (r *PrometheusRecorder) IncViewComputed(window string) {
	r.viewsComputed.WithLabelValues(window).Inc()
}
