package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ascii_theater_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ascii_theater_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Renderer metrics
var (
	RendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_renders_total",
			Help: "Total number of frame render operations",
		},
		[]string{"mode"}, // "plain", "color"
	)

	RenderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ascii_theater_render_duration_seconds",
			Help:    "Duration of a single frame render in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
)

// Playback metrics
var (
	PlaybackActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ascii_theater_playback_active",
			Help: "Whether a playback session is currently running (1 = running, 0 = idle)",
		},
	)

	FramesEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ascii_theater_frames_emitted_total",
			Help: "Total number of frames written to the output sink",
		},
	)

	FramesSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ascii_theater_frames_skipped_total",
			Help: "Total number of source frames discarded to catch up with wall-clock pacing",
		},
	)

	PlaybacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_playbacks_total",
			Help: "Total number of playback sessions by outcome",
		},
		[]string{"outcome"}, // "completed", "stopped"
	)
)

// Upload metrics
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_uploads_total",
			Help: "Total number of upload requests",
		},
		[]string{"kind", "status"}, // kind: "image", "video"; status: "success", "error"
	)

	UploadBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_upload_bytes_total",
			Help: "Total bytes received in uploads",
		},
		[]string{"kind"},
	)
)

// History store metrics
var (
	HistoryQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ascii_theater_history_queries_total",
			Help: "Total number of history store queries",
		},
		[]string{"operation", "status"},
	)
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, mode := range []string{"plain", "color"} {
		RendersTotal.WithLabelValues(mode)
	}

	for _, outcome := range []string{"completed", "stopped"} {
		PlaybacksTotal.WithLabelValues(outcome)
	}

	for _, kind := range []string{"image", "video"} {
		UploadsTotal.WithLabelValues(kind, "success")
		UploadsTotal.WithLabelValues(kind, "error")
		UploadBytes.WithLabelValues(kind)
	}

	for _, op := range []string{"initialize_schema", "record", "recent"} {
		HistoryQueriesTotal.WithLabelValues(op, "success")
		HistoryQueriesTotal.WithLabelValues(op, "error")
	}
}
