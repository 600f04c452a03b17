package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skypro1111/mic-chunk-service/internal/capture"
	"github.com/skypro1111/mic-chunk-service/internal/config"
	"github.com/skypro1111/mic-chunk-service/internal/encoder"
	"github.com/skypro1111/mic-chunk-service/internal/events"
	"github.com/skypro1111/mic-chunk-service/internal/metrics"
	"github.com/skypro1111/mic-chunk-service/internal/session"
)

func testAppConfig() *config.Config {
	return &config.Config{
		HTTP: config.HTTPConfig{Port: 8080, Address: "127.0.0.1"},
		Audio: config.AudioConfig{
			SampleRate:             44100,
			Channels:               1,
			BitDepth:               16,
			DefaultChunkDurationMs: 30000,
		},
		Capture: config.CaptureConfig{
			Backend:         "synthetic",
			FramesPerBuffer: 441,
			QueueSize:       64,
		},
		Encoder: config.EncoderConfig{Format: "wav", MaxEncodeFailures: 3},
		Logging: config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"},
	}
}

func newTestServer(t *testing.T, permission capture.Permissioner) (*httptest.Server, func()) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	appConfig := testAppConfig()
	m := metrics.New(prometheus.NewRegistry())

	engine := capture.NewSyntheticEngine(logger)
	enc, err := encoder.New(appConfig.Encoder.Format, encoder.Format{
		SampleRate: appConfig.Audio.SampleRate,
		Channels:   appConfig.Audio.Channels,
	}, appConfig.Encoder.FFmpegPath)
	require.NoError(t, err)

	hub := events.NewHub(m, logger)
	gate := events.NewGate(hub, m, logger)

	recorder := session.NewRecorder(session.Config{
		SampleRate:        appConfig.Audio.SampleRate,
		Channels:          appConfig.Audio.Channels,
		FramesPerBuffer:   appConfig.Capture.FramesPerBuffer,
		QueueSize:         appConfig.Capture.QueueSize,
		MaxEncodeFailures: appConfig.Encoder.MaxEncodeFailures,
	}, engine, permission, enc, gate, m, logger)

	h := NewHTTPServer(appConfig.HTTP, logger, appConfig, recorder, hub, gate, m)
	server := httptest.NewServer(h.server.Handler)

	cleanup := func() {
		recorder.Stop()
		hub.Close()
		server.Close()
	}
	return server, cleanup
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestStartStopEndpoints(t *testing.T) {
	server, cleanup := newTestServer(t, capture.StaticPermission{Granted: true})
	defer cleanup()

	resp := postJSON(t, server.URL+"/recording/start", map[string]int{"chunk_duration_ms": 5000})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var started startResponse
	decodeJSON(t, resp, &started)
	assert.NotEmpty(t, started.SessionID)
	assert.Equal(t, int64(5000), started.ChunkDurationMs)
	assert.Equal(t, "wav", started.Format)

	resp = postJSON(t, server.URL+"/recording/stop", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestStartWhileActiveReturnsConflict(t *testing.T) {
	server, cleanup := newTestServer(t, capture.StaticPermission{Granted: true})
	defer cleanup()

	resp := postJSON(t, server.URL+"/recording/start", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/recording/start", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var errResp errorResponse
	decodeJSON(t, resp, &errResp)
	assert.Equal(t, session.CodeAlreadyRecording, errResp.Error.Code)
}

func TestStopWhileIdleReturnsConflict(t *testing.T) {
	server, cleanup := newTestServer(t, capture.StaticPermission{Granted: true})
	defer cleanup()

	resp := postJSON(t, server.URL+"/recording/stop", nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var errResp errorResponse
	decodeJSON(t, resp, &errResp)
	assert.Equal(t, session.CodeNotRecording, errResp.Error.Code)
}

func TestStartWithInvalidChunkDuration(t *testing.T) {
	server, cleanup := newTestServer(t, capture.StaticPermission{Granted: true})
	defer cleanup()

	resp := postJSON(t, server.URL+"/recording/start", map[string]int{"chunk_duration_ms": -100})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp errorResponse
	decodeJSON(t, resp, &errResp)
	assert.Equal(t, session.CodeInvalidChunkDuration, errResp.Error.Code)
}

func TestStartWithPermissionDenied(t *testing.T) {
	server, cleanup := newTestServer(t, capture.StaticPermission{Granted: false})
	defer cleanup()

	resp := postJSON(t, server.URL+"/recording/start", nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	var errResp errorResponse
	decodeJSON(t, resp, &errResp)
	assert.Equal(t, session.CodePermissionDenied, errResp.Error.Code)
}

func TestStatusEndpoint(t *testing.T) {
	server, cleanup := newTestServer(t, capture.StaticPermission{Granted: true})
	defer cleanup()

	resp, err := http.Get(server.URL + "/recording/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status session.Status
	decodeJSON(t, resp, &status)
	assert.Equal(t, "idle", status.State)

	startResp := postJSON(t, server.URL+"/recording/start", nil)
	require.Equal(t, http.StatusAccepted, startResp.StatusCode)
	var started startResponse
	decodeJSON(t, startResp, &started)

	resp, err = http.Get(server.URL + "/recording/status")
	require.NoError(t, err)
	decodeJSON(t, resp, &status)
	assert.Equal(t, "active", status.State)
	assert.Equal(t, started.SessionID, status.SessionID)
}

func TestHealthEndpoint(t *testing.T) {
	server, cleanup := newTestServer(t, capture.StaticPermission{Granted: true})
	defer cleanup()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	decodeJSON(t, resp, &health)
	assert.Equal(t, "healthy", health["status"])
}

func TestMethodNotAllowed(t *testing.T) {
	server, cleanup := newTestServer(t, capture.StaticPermission{Granted: true})
	defer cleanup()

	resp, err := http.Get(server.URL + "/recording/start")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Post(server.URL+"/recording/status", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
