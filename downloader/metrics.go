package downloader

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the downloader.
type Metrics struct {
	Registry         *prometheus.Registry
	DownloadsTotal   *prometheus.CounterVec
	DownloadDuration prometheus.Histogram
	SessionsTotal    prometheus.Counter
	PollChecksTotal  prometheus.Counter
	ErrorsTotal      *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	downloads := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bhavget_downloads_total",
			Help: "Total download attempts by terminal status.",
		},
		[]string{"status"},
	)
	downloadDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bhavget_download_duration_seconds",
			Help:    "Wall-clock time from date selection to file on disk.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8),
		},
	)
	sessions := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bhavget_sessions_total",
			Help: "Total browser sessions started.",
		},
	)
	pollChecks := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bhavget_poll_checks_total",
			Help: "Total filesystem checks while waiting for downloads.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bhavget_errors_total",
			Help: "Total downloader errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(downloads, downloadDuration, sessions, pollChecks, errorsTotal)

	return &Metrics{
		Registry:         registry,
		DownloadsTotal:   downloads,
		DownloadDuration: downloadDuration,
		SessionsTotal:    sessions,
		PollChecksTotal:  pollChecks,
		ErrorsTotal:      errorsTotal,
	}
}

// IncDownload increments the download counter for a terminal status.
func (m *Metrics) IncDownload(status string) {
	if m == nil {
		return
	}
	m.DownloadsTotal.WithLabelValues(status).Inc()
}

// ObserveDuration records one download's wall-clock duration.
func (m *Metrics) ObserveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.DownloadDuration.Observe(d.Seconds())
}

// IncSession increments the sessions counter.
func (m *Metrics) IncSession() {
	if m == nil {
		return
	}
	m.SessionsTotal.Inc()
}

// IncPollCheck increments the poll checks counter.
func (m *Metrics) IncPollCheck() {
	if m == nil {
		return
	}
	m.PollChecksTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
