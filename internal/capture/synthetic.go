package capture

import (
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// SyntheticEngine produces a 440 Hz sine tone at the configured format.
// It exists for development machines without an input device and for
// end-to-end exercises of the recording pipeline.
type SyntheticEngine struct {
	logger *slog.Logger
}

// NewSyntheticEngine creates a synthetic capture engine.
func NewSyntheticEngine(logger *slog.Logger) *SyntheticEngine {
	return &SyntheticEngine{logger: logger}
}

func (e *SyntheticEngine) Backend() Backend {
	return BackendSynthetic
}

func (e *SyntheticEngine) Open(cfg Config) (Stream, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	s := &syntheticStream{
		sessionID:  cfg.SessionID,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		frameSize:  cfg.FramesPerBuffer,
		frames:     make(chan Frame, cfg.QueueSize),
		quit:       make(chan struct{}),
	}

	s.wg.Add(1)
	go s.generate()

	e.logger.Info("Capture stream opened",
		slog.String("backend", string(BackendSynthetic)),
		slog.String("session_id", cfg.SessionID),
		slog.Int("sample_rate", cfg.SampleRate),
		slog.Int("channels", cfg.Channels),
	)

	return s, nil
}

type syntheticStream struct {
	sessionID  string
	sampleRate int
	channels   int
	frameSize  int
	frames     chan Frame
	dropped    atomic.Uint64
	quit       chan struct{}
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

const toneFrequency = 440.0

// generate paces sine-wave frames at the real-time rate.
func (s *syntheticStream) generate() {
	defer s.wg.Done()
	defer close(s.frames)

	interval := time.Duration(s.frameSize) * time.Second / time.Duration(s.sampleRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	phase := 0.0
	step := 2 * math.Pi * toneFrequency / float64(s.sampleRate)

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			samples := make([]float32, s.frameSize*s.channels)
			for i := 0; i < s.frameSize; i++ {
				v := float32(0.5 * math.Sin(phase))
				for ch := 0; ch < s.channels; ch++ {
					samples[i*s.channels+ch] = v
				}
				phase += step
			}

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
	}
}

func (s *syntheticStream) Frames() <-chan Frame {
	return s.frames
}

func (s *syntheticStream) SampleRate() int {
	return s.sampleRate
}

func (s *syntheticStream) Channels() int {
	return s.channels
}

func (s *syntheticStream) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *syntheticStream) Stop() error {
	s.stopOnce.Do(func() {
		close(s.quit)
		s.wg.Wait()
	})
	return nil
}
