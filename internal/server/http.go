package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skypro1111/mic-chunk-service/internal/config"
	"github.com/skypro1111/mic-chunk-service/internal/events"
	"github.com/skypro1111/mic-chunk-service/internal/metrics"
	"github.com/skypro1111/mic-chunk-service/internal/session"
)

// HTTPServer provides the recording control API, the event WebSocket and
// monitoring endpoints
type HTTPServer struct {
	server   *http.Server
	logger   *slog.Logger
	config   *config.Config
	recorder *session.Recorder
	hub      *events.Hub
	gate     *events.Gate
	metrics  *metrics.Metrics

	startTime time.Time
}

// startRequest is the body of POST /recording/start. ChunkDurationMs is
// optional; the configured default applies when it is omitted.
type startRequest struct {
	ChunkDurationMs int `json:"chunk_duration_ms"`
}

type startResponse struct {
	SessionID       string `json:"session_id"`
	ChunkDurationMs int64  `json:"chunk_duration_ms"`
	Format          string `json:"format"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewHTTPServer creates the HTTP API server
func NewHTTPServer(cfg config.HTTPConfig, logger *slog.Logger,
	appConfig *config.Config, recorder *session.Recorder, hub *events.Hub,
	gate *events.Gate, m *metrics.Metrics) *HTTPServer {

	h := &HTTPServer{
		logger:    logger,
		config:    appConfig,
		recorder:  recorder,
		hub:       hub,
		gate:      gate,
		metrics:   m,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	h.setupRoutes(mux)

	h.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return h
}

// setupRoutes configures HTTP API routes
func (h *HTTPServer) setupRoutes(mux *http.ServeMux) {
	// Recording control endpoints
	mux.HandleFunc("/recording/start", h.withMetrics("/recording/start", h.handleStart))
	mux.HandleFunc("/recording/stop", h.withMetrics("/recording/stop", h.handleStop))
	mux.HandleFunc("/recording/status", h.withMetrics("/recording/status", h.handleStatus))

	// Chunk event stream (WebSocket connections are long lived, so no
	// request metrics wrapper)
	mux.HandleFunc("/ws", h.hub.HandleWebSocket)

	// Health check endpoint
	mux.HandleFunc("/health", h.withMetrics("/health", h.handleHealth))

	// Configuration endpoint
	mux.HandleFunc("/config", h.withMetrics("/config", h.handleConfig))

	// Statistics endpoint
	mux.HandleFunc("/stats", h.withMetrics("/stats", h.handleStats))

	// Prometheus metrics endpoint
	mux.Handle("/metrics", promhttp.Handler())

	// Root endpoint with API documentation
	mux.HandleFunc("/", h.withMetrics("/", h.handleRoot))
}

// withMetrics wraps an HTTP handler with metrics collection
func (h *HTTPServer) withMetrics(endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()

		ww := &responseWriter{ResponseWriter: w, statusCode: 200}

		handler(ww, r)

		duration := time.Since(startTime).Seconds()
		statusCode := fmt.Sprintf("%d", ww.statusCode)

		h.metrics.RecordHTTPRequest(r.Method, endpoint, statusCode, duration)

		if ww.statusCode >= 400 {
			errorType := "client_error"
			if ww.statusCode >= 500 {
				errorType = "server_error"
			}
			h.metrics.RecordHTTPError(r.Method, endpoint, errorType)
		}
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server
func (h *HTTPServer) Start() error {
	h.logger.Info("Starting HTTP API server",
		slog.String("address", h.server.Addr),
	)

	go func() {
		if err := h.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			h.logger.Error("HTTP server error", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (h *HTTPServer) Stop(ctx context.Context) error {
	h.logger.Info("Stopping HTTP API server...")

	return h.server.Shutdown(ctx)
}

// statusForCode maps an engine error code to an HTTP status
func statusForCode(code string) int {
	switch code {
	case session.CodeAlreadyRecording, session.CodeNotRecording:
		return http.StatusConflict
	case session.CodeInvalidChunkDuration:
		return http.StatusBadRequest
	case session.CodePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *HTTPServer) writeError(w http.ResponseWriter, err error) {
	code := session.Code(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusForCode(code))
	json.NewEncoder(w).Encode(errorResponse{
		Error: errorBody{Code: code, Message: err.Error()},
	})
}

// handleStart implements POST /recording/start
func (h *HTTPServer) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	chunkDuration := h.config.Audio.GetDefaultChunkDuration()
	if req.ChunkDurationMs != 0 {
		chunkDuration = time.Duration(req.ChunkDurationMs) * time.Millisecond
	}

	sessionID, err := h.recorder.Start(r.Context(), chunkDuration)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(startResponse{
		SessionID:       sessionID,
		ChunkDurationMs: chunkDuration.Milliseconds(),
		Format:          h.config.Encoder.Format,
	})
}

// handleStop implements POST /recording/stop
func (h *HTTPServer) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.recorder.Stop(); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "stopped"})
}

// handleStatus implements GET /recording/status
func (h *HTTPServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.recorder.GetStatus())
}

// handleHealth implements the /health endpoint
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(h.startTime)
	status := h.recorder.GetStatus()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    uptime.String(),
		"service": map[string]interface{}{
			"name":    "mic-chunk-service",
			"version": "1.0.0",
		},
		"components": map[string]interface{}{
			"recorder": map[string]interface{}{
				"state":          status.State,
				"chunks_emitted": status.ChunksEmitted,
			},
			"events": map[string]interface{}{
				"subscribers": h.hub.SubscriberCount(),
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

// handleConfig implements the /config endpoint
func (h *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sanitizedConfig := map[string]interface{}{
		"http": map[string]interface{}{
			"port":    h.config.HTTP.Port,
			"address": h.config.HTTP.Address,
		},
		"audio": map[string]interface{}{
			"sample_rate":               h.config.Audio.SampleRate,
			"channels":                  h.config.Audio.Channels,
			"bit_depth":                 h.config.Audio.BitDepth,
			"default_chunk_duration_ms": h.config.Audio.DefaultChunkDurationMs,
		},
		"capture": map[string]interface{}{
			"backend":           h.config.Capture.Backend,
			"frames_per_buffer": h.config.Capture.FramesPerBuffer,
			"queue_size":        h.config.Capture.QueueSize,
		},
		"encoder": map[string]interface{}{
			"format":              h.config.Encoder.Format,
			"max_encode_failures": h.config.Encoder.MaxEncodeFailures,
		},
		"logging": map[string]interface{}{
			"level":  h.config.Logging.Level,
			"format": h.config.Logging.Format,
			"output": h.config.Logging.Output,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sanitizedConfig)
}

// handleStats implements the /stats endpoint
func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(h.startTime)

	stats := map[string]interface{}{
		"uptime":    uptime.String(),
		"timestamp": time.Now().UTC(),
		"recorder":  h.recorder.GetStatus(),
		"gate":      h.gate.GetStats(),
		"events": map[string]interface{}{
			"subscribers": h.hub.SubscriberCount(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// handleRoot implements the / endpoint with API documentation
func (h *HTTPServer) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	apiDoc := map[string]interface{}{
		"service": "Microphone Chunked Recording Service",
		"version": "1.0.0",
		"endpoints": map[string]interface{}{
			"GET /":                     "API documentation",
			"POST /recording/start":     "Start a chunked recording session",
			"POST /recording/stop":      "Stop the live recording session",
			"GET /recording/status":     "Current recorder state",
			"GET /ws":                   "WebSocket chunk event stream",
			"GET /health":               "Service health check",
			"GET /config":               "Get service configuration",
			"GET /stats":                "Get service statistics",
			"GET /metrics":              "Prometheus metrics",
		},
		"timestamp": time.Now().UTC(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiDoc)
}
