package audio

import (
	"fmt"
	"sync"
	"time"
)

// Accumulator collects canonical PCM-16 bytes between chunk cuts.
// It is owned by a single session's processing loop; the mutex protects
// the occasional cross-goroutine stats read, not concurrent appends.
type Accumulator struct {
	sampleRate int
	channels   int

	data []byte

	// Lifetime counters, never reset by Drain.
	totalBytes  uint64
	totalFrames uint64
	drains      uint64
	lastAppend  time.Time

	mu sync.RWMutex
}

// AccumulatorStats represents accumulator statistics for monitoring.
type AccumulatorStats struct {
	PendingBytes   int           `json:"pending_bytes"`
	PendingSamples int           `json:"pending_samples"`
	Pending        time.Duration `json:"pending_duration"`
	TotalBytes     uint64        `json:"total_bytes"`
	TotalFrames    uint64        `json:"total_frames"`
	Drains         uint64        `json:"drains"`
}

// NewAccumulator creates an accumulator for the given canonical format.
func NewAccumulator(sampleRate, channels int) *Accumulator {
	return &Accumulator{
		sampleRate: sampleRate,
		channels:   channels,
		data:       make([]byte, 0, sampleRate*channels*BytesPerSample), // 1 second
	}
}

// Append adds PCM-16 little-endian bytes to the accumulator.
// The byte count must be frame-aligned (even, and a multiple of the
// channel count).
func (a *Accumulator) Append(pcm []byte) error {
	if len(pcm) == 0 {
		return nil
	}
	frameSize := a.channels * BytesPerSample
	if len(pcm)%frameSize != 0 {
		return fmt.Errorf("pcm data not frame-aligned: %d bytes, frame size %d", len(pcm), frameSize)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.data = append(a.data, pcm...)
	a.totalBytes += uint64(len(pcm))
	a.totalFrames++
	a.lastAppend = time.Now()
	return nil
}

// Drain removes and returns all accumulated bytes, leaving the
// accumulator empty. The returned slice is owned by the caller.
func (a *Accumulator) Drain() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.data) == 0 {
		a.drains++
		return nil
	}

	out := a.data
	a.data = make([]byte, 0, cap(out))
	a.drains++
	return out
}

// Len returns the number of pending bytes.
func (a *Accumulator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.data)
}

// PendingDuration returns the audio duration of the pending bytes.
func (a *Accumulator) PendingDuration() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return PCMDuration(len(a.data), a.sampleRate, a.channels)
}

// GetStats returns current accumulator statistics.
func (a *Accumulator) GetStats() AccumulatorStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return AccumulatorStats{
		PendingBytes:   len(a.data),
		PendingSamples: len(a.data) / BytesPerSample,
		Pending:        PCMDuration(len(a.data), a.sampleRate, a.channels),
		TotalBytes:     a.totalBytes,
		TotalFrames:    a.totalFrames,
		Drains:         a.drains,
	}
}
