package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ingestion Prometheus metrics, labeled by document layout.
var (
	ingestDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nobelidx",
			Name:      "ingest_documents_total",
			Help:      "Documents processed by ingestion",
		},
		[]string{"layout", "status"}, // "written" / "failed"
	)

	ingestWriteRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nobelidx",
			Name:      "ingest_write_retries_total",
			Help:      "Document write retries",
		},
		[]string{"layout"},
	)

	ingestBuildErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nobelidx",
			Name:      "ingest_build_errors_total",
			Help:      "Records or laureates rejected by the document builder",
		},
		[]string{"layout"},
	)

	ingestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nobelidx",
			Name:      "ingest_duration_seconds",
			Help:      "Wall time of one layout's ingestion",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"layout"},
	)
)

var ingestOnce sync.Once

// RegisterIngestMetrics registers ingestion metrics. Safe to call more than once.
func RegisterIngestMetrics() {
	ingestOnce.Do(func() {
		prometheus.MustRegister(ingestDocumentsTotal)
		prometheus.MustRegister(ingestWriteRetriesTotal)
		prometheus.MustRegister(ingestBuildErrorsTotal)
		prometheus.MustRegister(ingestDuration)
	})
}

// IngestRecorder reports ingestion progress to Prometheus.
type IngestRecorder struct{}

// Written counts a persisted document.
func (IngestRecorder) Written(layout string) {
	ingestDocumentsTotal.WithLabelValues(layout, "written").Inc()
}

// Failed counts a document dropped after exhausting retries.
func (IngestRecorder) Failed(layout string) {
	ingestDocumentsTotal.WithLabelValues(layout, "failed").Inc()
}

// Retried counts one write retry.
func (IngestRecorder) Retried(layout string) {
	ingestWriteRetriesTotal.WithLabelValues(layout).Inc()
}

// BuildError counts one builder rejection.
func (IngestRecorder) BuildError(layout string) {
	ingestBuildErrorsTotal.WithLabelValues(layout).Inc()
}

// Observe records one layout's ingestion duration.
func (IngestRecorder) Observe(layout string, d time.Duration) {
	ingestDuration.WithLabelValues(layout).Observe(d.Seconds())
}
