package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudioEngine opens capture streams on the default input device.
type PortAudioEngine struct {
	logger *slog.Logger
}

// NewPortAudioEngine creates a PortAudio-backed capture engine.
func NewPortAudioEngine(logger *slog.Logger) *PortAudioEngine {
	return &PortAudioEngine{logger: logger}
}

func (e *PortAudioEngine) Backend() Backend {
	return BackendPortAudio
}

// Open initializes PortAudio, opens the default input stream and starts
// capturing. Any failure releases everything acquired so far before
// returning.
func (e *PortAudioEngine) Open(cfg Config) (Stream, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	s := &portAudioStream{
		sessionID:  cfg.SessionID,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		frames:     make(chan Frame, cfg.QueueSize),
		logger:     e.logger,
	}

	// The callback runs on the PortAudio audio thread. It must not block:
	// the samples are copied and handed off with a non-blocking send.
	stream, err := portaudio.OpenDefaultStream(cfg.Channels, 0, float64(cfg.SampleRate),
		cfg.FramesPerBuffer, s.onSamples)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	s.stream = stream

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("failed to start input stream: %w", err)
	}

	e.logger.Info("Capture stream opened",
		slog.String("backend", string(BackendPortAudio)),
		slog.String("session_id", cfg.SessionID),
		slog.Int("sample_rate", cfg.SampleRate),
		slog.Int("channels", cfg.Channels),
		slog.Int("frames_per_buffer", cfg.FramesPerBuffer),
	)

	return s, nil
}

type portAudioStream struct {
	sessionID  string
	sampleRate int
	channels   int
	stream     *portaudio.Stream
	frames     chan Frame
	dropped    atomic.Uint64
	stopOnce   sync.Once
	stopped    atomic.Bool
	logger     *slog.Logger
}

// onSamples is the real-time capture callback.
func (s *portAudioStream) onSamples(in []float32) {
	if s.stopped.Load() {
		return
	}

	// The input buffer is reused by PortAudio after the callback returns.
	samples := make([]float32, len(in))
	copy(samples, in)

	frame := Frame{
		SessionID: s.sessionID,
		Samples:   samples,
		Timestamp: time.Now(),
	}

	select {
	case s.frames <- frame:
	default:
		s.dropped.Add(1)
	}
}

func (s *portAudioStream) Frames() <-chan Frame {
	return s.frames
}

func (s *portAudioStream) SampleRate() int {
	return s.sampleRate
}

func (s *portAudioStream) Channels() int {
	return s.channels
}

func (s *portAudioStream) Dropped() uint64 {
	return s.dropped.Load()
}

// Stop halts capture and closes the frame channel. Safe to call more than
// once; the channel is closed only after the callback can no longer fire.
func (s *portAudioStream) Stop() error {
	var err error
	s.stopOnce.Do(func() {
		s.stopped.Store(true)

		if stopErr := s.stream.Stop(); stopErr != nil {
			err = fmt.Errorf("failed to stop input stream: %w", stopErr)
		}
		if closeErr := s.stream.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close input stream: %w", closeErr)
		}
		if termErr := portaudio.Terminate(); termErr != nil && err == nil {
			err = fmt.Errorf("failed to terminate portaudio: %w", termErr)
		}

		close(s.frames)

		if dropped := s.dropped.Load(); dropped > 0 {
			s.logger.Warn("Capture stream dropped frames",
				slog.String("session_id", s.sessionID),
				slog.Uint64("dropped", dropped),
			)
		}
	})
	return err
}
