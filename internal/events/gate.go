package events

import (
	"log/slog"
	"sync"
	"time"

	"github.com/skypro1111/mic-chunk-service/internal/metrics"
)

// Gate filters and orders events before they reach the sink. It tracks
// the live session id: events tagged with any other id are suppressed.
// Within a session, chunk numbers must not decrease, at most one final
// event fires, and nothing follows it.
type Gate struct {
	sink    Sink
	metrics *metrics.Metrics
	logger  *slog.Logger

	sessionID  string
	lastChunk  int
	finalSent  bool
	suppressed uint64

	mu sync.Mutex
}

// GateStats represents gate statistics for monitoring.
type GateStats struct {
	SessionID  string `json:"session_id"`
	LastChunk  int    `json:"last_chunk"`
	FinalSent  bool   `json:"final_sent"`
	Suppressed uint64 `json:"suppressed_events"`
}

// NewGate creates an emitter gate in front of the given sink.
func NewGate(sink Sink, m *metrics.Metrics, logger *slog.Logger) *Gate {
	return &Gate{
		sink:      sink,
		metrics:   m,
		logger:    logger,
		lastChunk: -1,
	}
}

// BeginSession makes sessionID the live session. Any previous session is
// superseded; its in-flight events will be suppressed from here on.
func (g *Gate) BeginSession(sessionID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.sessionID = sessionID
	g.lastChunk = -1
	g.finalSent = false
}

// EmitChunk delivers a chunk event if it passes the gate.
func (g *Gate) EmitChunk(ev ChunkEvent) {
	g.mu.Lock()

	if ev.SessionID != g.sessionID {
		g.suppressed++
		g.mu.Unlock()
		g.metrics.RecordEventSuppressed()
		g.logger.Debug("Suppressed chunk event from stale session",
			slog.String("event_session_id", ev.SessionID),
			slog.String("live_session_id", g.sessionID),
			slog.Int("chunk_number", ev.Payload.ChunkNumber),
		)
		return
	}

	if g.finalSent {
		g.suppressed++
		g.mu.Unlock()
		g.metrics.RecordEventSuppressed()
		g.logger.Warn("Suppressed chunk event after final chunk",
			slog.String("session_id", ev.SessionID),
			slog.Int("chunk_number", ev.Payload.ChunkNumber),
		)
		return
	}

	if ev.Payload.ChunkNumber < g.lastChunk {
		g.suppressed++
		g.mu.Unlock()
		g.metrics.RecordEventSuppressed()
		g.logger.Warn("Suppressed out-of-order chunk event",
			slog.String("session_id", ev.SessionID),
			slog.Int("chunk_number", ev.Payload.ChunkNumber),
			slog.Int("last_chunk", g.lastChunk),
		)
		return
	}

	g.lastChunk = ev.Payload.ChunkNumber
	if ev.Final() {
		g.finalSent = true
	}
	g.mu.Unlock()

	if ev.EmittedAt.IsZero() {
		ev.EmittedAt = time.Now()
	}
	g.sink.DeliverChunk(ev)
}

// EmitDebug delivers a diagnostic message. Debug events bypass session
// and ordering checks.
func (g *Gate) EmitDebug(sessionID, message string) {
	g.sink.DeliverDebug(DebugEvent{
		Type:      TypeDebug,
		SessionID: sessionID,
		Message:   message,
		EmittedAt: time.Now(),
	})
}

// GetStats returns current gate statistics.
func (g *Gate) GetStats() GateStats {
	g.mu.Lock()
	defer g.mu.Unlock()

	return GateStats{
		SessionID:  g.sessionID,
		LastChunk:  g.lastChunk,
		FinalSent:  g.finalSent,
		Suppressed: g.suppressed,
	}
}
