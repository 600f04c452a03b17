package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the recording service
type Metrics struct {
	// Capture metrics
	FramesCaptured  prometheus.Counter
	SamplesCaptured prometheus.Counter
	FramesDropped   prometheus.Counter
	StaleFrames     prometheus.Counter

	// Session metrics
	SessionsStarted prometheus.Counter
	SessionsStopped prometheus.Counter
	SessionDuration prometheus.Histogram

	// Chunk metrics
	ChunksEmitted  prometheus.Counter
	ChunkDuration  prometheus.Histogram
	ChunkSize      prometheus.Histogram
	EncodeFailures prometheus.Counter

	// Event delivery metrics
	EventSubscribers prometheus.Gauge
	EventsSuppressed prometheus.Counter

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// New creates all metrics and registers them on the given registerer.
// Tests pass their own prometheus.NewRegistry to avoid collisions.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Capture metrics
		FramesCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "rec_frames_captured_total",
			Help: "Total number of capture frames processed",
		}),
		SamplesCaptured: factory.NewCounter(prometheus.CounterOpts{
			Name: "rec_samples_captured_total",
			Help: "Total number of audio samples processed",
		}),
		FramesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "rec_frames_dropped_total",
			Help: "Total number of frames dropped due to a full capture queue",
		}),
		StaleFrames: factory.NewCounter(prometheus.CounterOpts{
			Name: "rec_stale_frames_total",
			Help: "Total number of frames discarded for a stale session id",
		}),

		// Session metrics
		SessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rec_sessions_started_total",
			Help: "Total number of recording sessions started",
		}),
		SessionsStopped: factory.NewCounter(prometheus.CounterOpts{
			Name: "rec_sessions_stopped_total",
			Help: "Total number of recording sessions stopped",
		}),
		SessionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rec_session_duration_seconds",
			Help:    "Duration of recording sessions in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~68 minutes
		}),

		// Chunk metrics
		ChunksEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rec_chunks_emitted_total",
			Help: "Total number of encoded audio chunks emitted",
		}),
		ChunkDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rec_chunk_duration_seconds",
			Help:    "Audio duration of emitted chunks",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~8.5 minutes
		}),
		ChunkSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rec_chunk_size_bytes",
			Help:    "Size of emitted audio chunks in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 14), // 1KB to ~16MB
		}),
		EncodeFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "rec_encode_failures_total",
			Help: "Total number of chunk encode failures",
		}),

		// Event delivery metrics
		EventSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "rec_event_subscribers",
			Help: "Current number of connected event subscribers",
		}),
		EventsSuppressed: factory.NewCounter(prometheus.CounterOpts{
			Name: "rec_events_suppressed_total",
			Help: "Total number of chunk events suppressed by the delivery gate",
		}),

		// HTTP API metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rec_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rec_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rec_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordFrameCaptured records one processed capture frame
func (m *Metrics) RecordFrameCaptured(samples int) {
	m.FramesCaptured.Inc()
	m.SamplesCaptured.Add(float64(samples))
}

// RecordFramesDropped adds to the dropped frames counter
func (m *Metrics) RecordFramesDropped(count uint64) {
	m.FramesDropped.Add(float64(count))
}

// RecordStaleFrame increments the stale frames counter
func (m *Metrics) RecordStaleFrame() {
	m.StaleFrames.Inc()
}

// RecordSessionStarted increments the sessions started counter
func (m *Metrics) RecordSessionStarted() {
	m.SessionsStarted.Inc()
}

// RecordSessionStopped increments the sessions stopped counter and records duration
func (m *Metrics) RecordSessionStopped(durationSeconds float64) {
	m.SessionsStopped.Inc()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordChunkEmitted records an emitted audio chunk
func (m *Metrics) RecordChunkEmitted(sizeBytes int, durationSeconds float64) {
	m.ChunksEmitted.Inc()
	m.ChunkSize.Observe(float64(sizeBytes))
	m.ChunkDuration.Observe(durationSeconds)
}

// RecordEncodeFailure increments the encode failures counter
func (m *Metrics) RecordEncodeFailure() {
	m.EncodeFailures.Inc()
}

// SetEventSubscribers sets the current subscriber count
func (m *Metrics) SetEventSubscribers(count int) {
	m.EventSubscribers.Set(float64(count))
}

// RecordEventSuppressed increments the suppressed events counter
func (m *Metrics) RecordEventSuppressed() {
	m.EventsSuppressed.Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}
