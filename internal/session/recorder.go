package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skypro1111/mic-chunk-service/internal/capture"
	"github.com/skypro1111/mic-chunk-service/internal/encoder"
	"github.com/skypro1111/mic-chunk-service/internal/events"
	"github.com/skypro1111/mic-chunk-service/internal/metrics"
)

// State represents the recorder lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateActive
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateActive:
		return "active"
	case StateStopping:
		return "stopping"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Config contains the recording engine configuration.
type Config struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int
	QueueSize       int

	// MaxEncodeFailures is the number of consecutive chunk encode
	// failures tolerated before the session is torn down.
	MaxEncodeFailures int
}

// Emitter is the event gate the engine emits through. *events.Gate
// satisfies it.
type Emitter interface {
	BeginSession(sessionID string)
	EmitChunk(ev events.ChunkEvent)
	EmitDebug(sessionID, message string)
}

// Recorder owns at most one live recording session and serializes all
// start/stop transitions. It is the sole writer of the lifecycle state.
type Recorder struct {
	cfg        Config
	engine     capture.Engine
	permission capture.Permissioner
	encoder    encoder.Encoder
	emitter    Emitter
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// clock is injectable for testing; defaults to time.Now.
	clock func() time.Time

	mu      sync.Mutex
	state   State
	current *session
}

// Status is a snapshot of the recorder for monitoring and the control API.
type Status struct {
	State              string        `json:"state"`
	SessionID          string        `json:"session_id,omitempty"`
	ChunkDurationMs    int64         `json:"chunk_duration_ms,omitempty"`
	StartedAt          time.Time     `json:"started_at,omitempty"`
	Duration           time.Duration `json:"duration,omitempty"`
	ChunksEmitted      int           `json:"chunks_emitted"`
	PendingBytes       int           `json:"pending_bytes"`
	StaleFramesDropped uint64        `json:"stale_frames_dropped"`
	CaptureDropped     uint64        `json:"capture_dropped"`
}

// NewRecorder creates a recording engine wired to its collaborators.
func NewRecorder(cfg Config, engine capture.Engine, permission capture.Permissioner,
	enc encoder.Encoder, emitter Emitter, m *metrics.Metrics, logger *slog.Logger) *Recorder {

	if cfg.MaxEncodeFailures <= 0 {
		cfg.MaxEncodeFailures = 3
	}

	return &Recorder{
		cfg:        cfg,
		engine:     engine,
		permission: permission,
		encoder:    enc,
		emitter:    emitter,
		metrics:    m,
		logger:     logger,
		clock:      time.Now,
	}
}

// Start begins a new chunked recording session. It fails with
// ErrAlreadyRecording unless the recorder is idle, and with
// ErrPermissionDenied or ErrSetupFailed when a collaborator refuses;
// in both failure cases the state reverts to idle with every partially
// acquired resource released.
func (r *Recorder) Start(ctx context.Context, chunkDuration time.Duration) (string, error) {
	if chunkDuration <= 0 {
		return "", ErrInvalidChunkDuration
	}

	r.mu.Lock()
	if r.state != StateIdle {
		state := r.state
		r.mu.Unlock()
		r.logger.Warn("Start rejected",
			slog.String("state", state.String()),
		)
		return "", ErrAlreadyRecording
	}
	r.state = StateStarting
	r.mu.Unlock()

	sessionID := uuid.NewString()

	revert := func() {
		r.mu.Lock()
		r.state = StateIdle
		r.mu.Unlock()
	}

	granted, err := r.permission.Request(ctx)
	if err != nil {
		revert()
		r.emitter.EmitDebug(sessionID, fmt.Sprintf("permission request failed: %v", err))
		return "", fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	if !granted {
		revert()
		r.emitter.EmitDebug(sessionID, "microphone permission denied")
		r.logger.Warn("Microphone permission denied", slog.String("session_id", sessionID))
		return "", ErrPermissionDenied
	}

	stream, err := r.engine.Open(capture.Config{
		SessionID:       sessionID,
		SampleRate:      r.cfg.SampleRate,
		Channels:        r.cfg.Channels,
		FramesPerBuffer: r.cfg.FramesPerBuffer,
		QueueSize:       r.cfg.QueueSize,
	})
	if err != nil {
		revert()
		r.emitter.EmitDebug(sessionID, fmt.Sprintf("capture engine start failed: %v", err))
		r.logger.Error("Capture engine start failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("%w: %w", ErrSetupFailed, err)
	}

	s := newSession(sessionID, chunkDuration, stream, r)

	r.mu.Lock()
	r.state = StateActive
	r.current = s
	r.mu.Unlock()

	// The gate must know the live session before the first frame can
	// produce a chunk.
	r.emitter.BeginSession(sessionID)
	s.start()

	r.metrics.RecordSessionStarted()
	r.logger.Info("Recording session started",
		slog.String("session_id", sessionID),
		slog.Duration("chunk_duration", chunkDuration),
		slog.Int("sample_rate", r.cfg.SampleRate),
		slog.Int("channels", r.cfg.Channels),
		slog.String("format", r.encoder.ContainerFormat()),
	)

	return sessionID, nil
}

// Stop ends the live session: capture is torn down, the processing loop
// drains every in-flight frame, and the final flush emits the terminal
// chunk. The recorder always returns to idle, even when teardown fails;
// the teardown error is still reported.
func (r *Recorder) Stop() error {
	return r.stop("")
}

// stop ends the current session. When sessionID is non-empty the stop is
// conditional: it only applies while that session is still the live one.
func (r *Recorder) stop(sessionID string) error {
	r.mu.Lock()
	if r.state != StateActive || r.current == nil {
		r.mu.Unlock()
		if sessionID == "" {
			return ErrNotRecording
		}
		return nil // stale escalation, session already gone
	}
	if sessionID != "" && r.current.id != sessionID {
		r.mu.Unlock()
		return nil
	}
	s := r.current
	r.state = StateStopping
	r.mu.Unlock()

	// Stopping the stream closes its frame channel; the processing loop
	// drains whatever is queued, flushes, and exits.
	teardownErr := s.stream.Stop()
	<-s.done

	snap := s.snapshot()

	r.mu.Lock()
	r.state = StateIdle
	r.current = nil
	r.mu.Unlock()

	r.metrics.RecordSessionStopped(r.clock().Sub(snap.StartedAt).Seconds())
	if snap.CaptureDropped > 0 {
		r.metrics.RecordFramesDropped(snap.CaptureDropped)
	}
	r.logger.Info("Recording session stopped",
		slog.String("session_id", s.id),
		slog.Duration("duration", r.clock().Sub(snap.StartedAt)),
		slog.Int("chunks_emitted", snap.ChunksEmitted),
		slog.Uint64("stale_frames_dropped", snap.StaleFramesDropped),
		slog.Uint64("capture_dropped", snap.CaptureDropped),
	)

	if teardownErr != nil {
		r.emitter.EmitDebug(s.id, fmt.Sprintf("capture teardown failed: %v", teardownErr))
		return fmt.Errorf("%w: %w", ErrTeardownFailed, teardownErr)
	}
	return nil
}

// GetStatus returns a snapshot of the recorder and its live session.
func (r *Recorder) GetStatus() Status {
	r.mu.Lock()
	state := r.state
	s := r.current
	r.mu.Unlock()

	status := Status{State: state.String()}
	if s == nil {
		return status
	}

	snap := s.snapshot()
	status.SessionID = s.id
	status.ChunkDurationMs = s.chunkDuration.Milliseconds()
	status.StartedAt = snap.StartedAt
	status.Duration = r.clock().Sub(snap.StartedAt)
	status.ChunksEmitted = snap.ChunksEmitted
	status.PendingBytes = snap.PendingBytes
	status.StaleFramesDropped = snap.StaleFramesDropped
	status.CaptureDropped = snap.CaptureDropped
	return status
}
