// Package metrics provides Prometheus metrics for the file library.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PanelsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshelf_panels_rendered_total",
			Help: "Total number of additional-data panels rendered",
		},
		[]string{"variant"},
	)

	RecordsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshelf_records_ingested_total",
			Help: "Total number of file records stored",
		},
		[]string{"source"},
	)

	PrintsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshelf_prints_recorded_total",
			Help: "Total number of print events recorded",
		},
		[]string{"result"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "printshelf_uploads_total",
			Help: "Total number of upload attempts",
		},
		[]string{"status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "printshelf_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)

func RecordPanel(variant string) {
	PanelsRendered.WithLabelValues(variant).Inc()
}

func RecordIngest(source string) {
	RecordsIngested.WithLabelValues(source).Inc()
}

func RecordPrint(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	PrintsRecorded.WithLabelValues(result).Inc()
}

func RecordUpload(status string) {
	UploadsTotal.WithLabelValues(status).Inc()
}

func RecordRequest(method, status string, duration time.Duration) {
	RequestDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
