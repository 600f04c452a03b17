package session

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/skypro1111/mic-chunk-service/internal/audio"
	"github.com/skypro1111/mic-chunk-service/internal/capture"
	"github.com/skypro1111/mic-chunk-service/internal/events"
)

// session holds the per-recording state. All fields below the mutex are
// written only by the processing goroutine; the mutex exists so status
// snapshots can read them from other goroutines.
type session struct {
	id            string
	chunkDuration time.Duration
	stream        capture.Stream
	recorder      *Recorder
	acc           *audio.Accumulator
	done          chan struct{}

	mu             sync.Mutex
	startedAt      time.Time
	lastCut        time.Time
	chunkIndex     int
	chunksEmitted  int
	framesSeen     bool
	staleDropped   uint64
	encodeFailures int
}

type sessionSnapshot struct {
	StartedAt          time.Time
	ChunksEmitted      int
	PendingBytes       int
	StaleFramesDropped uint64
	CaptureDropped     uint64
}

func newSession(id string, chunkDuration time.Duration, stream capture.Stream, r *Recorder) *session {
	return &session{
		id:            id,
		chunkDuration: chunkDuration,
		stream:        stream,
		recorder:      r,
		acc:           audio.NewAccumulator(stream.SampleRate(), stream.Channels()),
		done:          make(chan struct{}),
		startedAt:     r.clock(),
	}
}

func (s *session) start() {
	go s.run()
}

// run is the session processing loop. The stream's frame channel closes
// after Stop, so the loop drains every in-flight frame before the final
// flush. Exactly one final event per session leaves here.
func (s *session) run() {
	defer close(s.done)

	for frame := range s.stream.Frames() {
		s.handleFrame(frame)
	}
	s.finalFlush()
}

func (s *session) handleFrame(frame capture.Frame) {
	if frame.SessionID != s.id {
		s.mu.Lock()
		s.staleDropped++
		dropped := s.staleDropped
		s.mu.Unlock()
		s.recorder.metrics.RecordStaleFrame()
		if dropped == 1 {
			s.recorder.emitter.EmitDebug(s.id,
				fmt.Sprintf("dropping frames tagged for stale session %s", frame.SessionID))
		}
		return
	}

	pcm := audio.Float32ToPCM16(frame.Samples)
	if err := s.acc.Append(pcm); err != nil {
		s.recorder.logger.Error("Frame append failed",
			slog.String("session_id", s.id),
			slog.String("error", err.Error()),
		)
		return
	}
	s.recorder.metrics.RecordFrameCaptured(len(frame.Samples))

	s.mu.Lock()
	s.framesSeen = true
	if s.lastCut.IsZero() {
		// The chunk clock starts at the first captured frame, not at
		// Start; setup latency never shortens chunk zero.
		s.lastCut = frame.Timestamp
	}
	due := frame.Timestamp.Sub(s.lastCut) >= s.chunkDuration
	s.mu.Unlock()

	if due {
		s.cutChunk(frame.Timestamp)
	}
}

// cutChunk drains the accumulator and emits one interior chunk. A failed
// encode does not consume a chunk number, so the delivered sequence stays
// gapless; repeated failures escalate to an automatic teardown.
func (s *session) cutChunk(cutAt time.Time) {
	pcm := s.acc.Drain()

	s.mu.Lock()
	s.lastCut = cutAt
	index := s.chunkIndex
	s.mu.Unlock()

	if len(pcm) == 0 {
		return
	}

	encoded, err := s.recorder.encoder.Encode(context.Background(), pcm)
	if err != nil {
		s.onEncodeFailure(index, err)
		return
	}

	s.mu.Lock()
	s.encodeFailures = 0
	s.chunkIndex++
	s.chunksEmitted++
	s.mu.Unlock()

	s.emit(events.TypeChunkReady, encoded, index)
	s.recorder.metrics.RecordChunkEmitted(len(encoded),
		audio.PCMDuration(len(pcm), s.stream.SampleRate(), s.stream.Channels()).Seconds())
}

func (s *session) onEncodeFailure(index int, err error) {
	s.mu.Lock()
	s.encodeFailures++
	failures := s.encodeFailures
	s.mu.Unlock()

	s.recorder.metrics.RecordEncodeFailure()
	s.recorder.emitter.EmitDebug(s.id,
		fmt.Sprintf("chunk %d encode failed (%d consecutive): %v", index, failures, err))
	s.recorder.logger.Error("Chunk encode failed",
		slog.String("session_id", s.id),
		slog.Int("chunk_number", index),
		slog.Int("consecutive_failures", failures),
		slog.String("error", err.Error()),
	)

	if failures >= s.recorder.cfg.MaxEncodeFailures {
		s.recorder.emitter.EmitDebug(s.id, "too many encode failures, stopping session")
		// Stop must come from outside the processing loop; Stop waits
		// on this loop to drain.
		go s.recorder.stop(s.id)
	}
}

// finalFlush emits the terminal event for the session. When nothing was
// ever captured there is no final chunk; otherwise the remainder is
// encoded and emitted, falling back to an empty payload when the
// remainder is empty or the encode fails.
func (s *session) finalFlush() {
	s.mu.Lock()
	framesSeen := s.framesSeen
	index := s.chunkIndex
	s.mu.Unlock()

	pcm := s.acc.Drain()

	if !framesSeen && len(pcm) == 0 {
		s.recorder.emitter.EmitDebug(s.id, "session ended before any audio was captured")
		return
	}

	var encoded []byte
	if len(pcm) > 0 {
		var err error
		encoded, err = s.recorder.encoder.Encode(context.Background(), pcm)
		if err != nil {
			s.recorder.metrics.RecordEncodeFailure()
			s.recorder.emitter.EmitDebug(s.id,
				fmt.Sprintf("final chunk %d encode failed: %v", index, err))
			s.recorder.logger.Error("Final chunk encode failed",
				slog.String("session_id", s.id),
				slog.Int("chunk_number", index),
				slog.String("error", err.Error()),
			)
			encoded = nil
		}
	}

	s.mu.Lock()
	s.chunksEmitted++
	s.mu.Unlock()

	s.emit(events.TypeLastChunkReady, encoded, index)
	if len(encoded) > 0 {
		s.recorder.metrics.RecordChunkEmitted(len(encoded),
			audio.PCMDuration(len(pcm), s.stream.SampleRate(), s.stream.Channels()).Seconds())
	}
}

func (s *session) emit(evType string, encoded []byte, index int) {
	s.recorder.emitter.EmitChunk(events.ChunkEvent{
		Type:      evType,
		SessionID: s.id,
		Payload: events.ChunkPayload{
			AudioData:     base64.StdEncoding.EncodeToString(encoded),
			Format:        s.recorder.encoder.ContainerFormat(),
			SampleRate:    s.stream.SampleRate(),
			Channels:      s.stream.Channels(),
			BitsPerSample: audio.BitsPerSample,
			ChunkNumber:   index,
		},
	})
}

func (s *session) snapshot() sessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sessionSnapshot{
		StartedAt:          s.startedAt,
		ChunksEmitted:      s.chunksEmitted,
		PendingBytes:       s.acc.Len(),
		StaleFramesDropped: s.staleDropped,
		CaptureDropped:     s.stream.Dropped(),
	}
}
