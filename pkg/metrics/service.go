package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records service-level observability signals.
//
// The API server and the thumbnail worker share this interface; either
// gets a no-op implementation when metrics are disabled.
type Metrics interface {
	// RecordUpload records a successful resource creation by type
	// (folder, file, image).
	RecordUpload(fileType string)

	// RecordThumbnailJob records a completed thumbnail job with its
	// duration and outcome ("ok", "skipped", "fatal", "error").
	RecordThumbnailJob(outcome string, duration time.Duration)

	// RecordHTTPRequest records a completed HTTP request.
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// NewMetrics returns a Prometheus-backed Metrics if the registry is
// initialized, otherwise a no-op implementation.
func NewMetrics() Metrics {
	if !IsEnabled() {
		return &noopMetrics{}
	}
	return newPromMetrics(GetRegistry())
}

type promMetrics struct {
	uploadsTotal       *prometheus.CounterVec
	thumbnailJobsTotal *prometheus.CounterVec
	thumbnailDuration  *prometheus.HistogramVec
	httpDuration       *prometheus.HistogramVec
}

func newPromMetrics(reg *prometheus.Registry) *promMetrics {
	factory := promauto.With(reg)

	return &promMetrics{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "filedepot_uploads_total",
			Help: "Resources created, by type",
		}, []string{"type"}),
		thumbnailJobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "filedepot_thumbnail_jobs_total",
			Help: "Thumbnail jobs processed, by outcome",
		}, []string{"outcome"}),
		thumbnailDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "filedepot_thumbnail_job_duration_seconds",
			Help:    "Thumbnail job processing time",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "filedepot_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *promMetrics) RecordUpload(fileType string) {
	m.uploadsTotal.WithLabelValues(fileType).Inc()
}

func (m *promMetrics) RecordThumbnailJob(outcome string, duration time.Duration) {
	m.thumbnailJobsTotal.WithLabelValues(outcome).Inc()
	m.thumbnailDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (m *promMetrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// noopMetrics is used when metrics are disabled.
type noopMetrics struct{}

func (*noopMetrics) RecordUpload(string)                                  {}
func (*noopMetrics) RecordThumbnailJob(string, time.Duration)             {}
func (*noopMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}
