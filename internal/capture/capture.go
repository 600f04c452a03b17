package capture

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Backend identifies a capture engine implementation.
type Backend string

const (
	BackendPortAudio Backend = "portaudio"
	BackendSynthetic Backend = "synthetic"
	BackendAuto      Backend = "auto"
)

// Frame is one batch of raw samples delivered by a capture backend.
// SessionID is stamped when the stream is opened; the session engine drops
// frames whose id no longer matches the live session.
type Frame struct {
	SessionID string
	Samples   []float32
	Timestamp time.Time
}

// Config describes how a capture stream should be opened.
type Config struct {
	SessionID       string
	SampleRate      int
	Channels        int
	FramesPerBuffer int
	QueueSize       int
}

// Stream is a live capture stream. Frames are delivered on the Frames
// channel; the channel is closed after Stop, once no further frames will
// be produced.
type Stream interface {
	Frames() <-chan Frame
	SampleRate() int
	Channels() int
	// Dropped reports how many frames were discarded because the hand-off
	// queue was full.
	Dropped() uint64
	Stop() error
}

// Engine creates capture streams.
type Engine interface {
	Open(cfg Config) (Stream, error)
	Backend() Backend
}

// Permissioner models the platform microphone-permission prompt. The
// result may arrive asynchronously on platforms with a real prompt; the
// call blocks until the user answers or ctx is done.
type Permissioner interface {
	Request(ctx context.Context) (bool, error)
}

// StaticPermission is a Permissioner with a fixed answer. Server platforms
// have no interactive prompt, so the default is an unconditional grant.
type StaticPermission struct {
	Granted bool
}

func (p StaticPermission) Request(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return p.Granted, nil
}

// NewEngine creates a capture engine for the configured backend.
func NewEngine(backend string, logger *slog.Logger) (Engine, error) {
	switch Backend(strings.ToLower(backend)) {
	case BackendPortAudio, BackendAuto, "":
		return NewPortAudioEngine(logger), nil
	case BackendSynthetic:
		return NewSyntheticEngine(logger), nil
	default:
		return nil, fmt.Errorf("unknown capture backend: %q", backend)
	}
}

func (c Config) validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels <= 0 {
		return fmt.Errorf("channel count must be positive, got %d", c.Channels)
	}
	if c.FramesPerBuffer <= 0 {
		return fmt.Errorf("frames per buffer must be positive, got %d", c.FramesPerBuffer)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue size must be positive, got %d", c.QueueSize)
	}
	return nil
}
