package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidvault",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vidvault",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidvault",
			Subsystem: "ingest",
			Name:      "uploads_total",
			Help:      "Total video uploads",
		},
		[]string{"status"},
	)

	UploadBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vidvault",
			Subsystem: "ingest",
			Name:      "upload_bytes_total",
			Help:      "Total bytes accepted for processing",
		},
	)

	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidvault",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by final verdict",
		},
		[]string{"verdict"},
	)

	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "vidvault",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "End-to-end pipeline run duration in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	PipelineStageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidvault",
			Subsystem: "pipeline",
			Name:      "stage_failures_total",
			Help:      "Absorbed per-stage failures",
		},
		[]string{"stage"},
	)

	StreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidvault",
			Subsystem: "stream",
			Name:      "requests_total",
			Help:      "Range streaming requests by status",
		},
		[]string{"status"},
	)

	StreamBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vidvault",
			Subsystem: "stream",
			Name:      "bytes_total",
			Help:      "Total bytes served over range responses",
		},
	)

	WSClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vidvault",
			Subsystem: "events",
			Name:      "ws_clients",
			Help:      "Currently connected progress subscribers",
		},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vidvault",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Progress and completion events published",
		},
		[]string{"type"},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordUpload records one upload attempt.
func RecordUpload(status string, bytes int64) {
	UploadsTotal.WithLabelValues(status).Inc()
	if status == "accepted" {
		UploadBytesTotal.Add(float64(bytes))
	}
}

// RecordPipelineRun records a finished run.
func RecordPipelineRun(verdict string, durationSec float64) {
	PipelineRunsTotal.WithLabelValues(verdict).Inc()
	PipelineRunDuration.Observe(durationSec)
}

// RecordStageFailure records an absorbed stage failure.
func RecordStageFailure(stage string) {
	PipelineStageFailures.WithLabelValues(stage).Inc()
}

// RecordStream records a range request outcome.
func RecordStream(status string, bytes int64) {
	StreamRequestsTotal.WithLabelValues(status).Inc()
	if bytes > 0 {
		StreamBytesTotal.Add(float64(bytes))
	}
}

// RecordEvent records a published realtime event.
func RecordEvent(eventType string) {
	EventsPublished.WithLabelValues(eventType).Inc()
}
