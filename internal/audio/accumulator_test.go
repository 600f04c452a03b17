package audio

import (
	"bytes"
	"testing"
	"time"
)

func TestNewAccumulator(t *testing.T) {
	acc := NewAccumulator(44100, 1)
	if acc == nil {
		t.Fatal("NewAccumulator returned nil")
	}

	if acc.Len() != 0 {
		t.Errorf("New accumulator should be empty, got %d bytes", acc.Len())
	}
}

func TestAccumulatorAppendAndDrain(t *testing.T) {
	acc := NewAccumulator(44100, 1)

	first := []byte{1, 0, 2, 0}
	second := []byte{3, 0, 4, 0}

	if err := acc.Append(first); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := acc.Append(second); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if acc.Len() != 8 {
		t.Errorf("Expected 8 pending bytes, got %d", acc.Len())
	}

	drained := acc.Drain()
	want := append(append([]byte{}, first...), second...)
	if !bytes.Equal(drained, want) {
		t.Errorf("Drain returned %v, want %v", drained, want)
	}

	if acc.Len() != 0 {
		t.Errorf("Accumulator should be empty after drain, got %d bytes", acc.Len())
	}
}

func TestAccumulatorDrainEmpty(t *testing.T) {
	acc := NewAccumulator(44100, 1)

	if drained := acc.Drain(); drained != nil {
		t.Errorf("Drain of empty accumulator should return nil, got %d bytes", len(drained))
	}
}

func TestAccumulatorDrainIsolation(t *testing.T) {
	acc := NewAccumulator(44100, 1)

	if err := acc.Append([]byte{1, 0}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	drained := acc.Drain()

	// Appends after a drain must not show up in the drained slice.
	if err := acc.Append([]byte{9, 0}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if !bytes.Equal(drained, []byte{1, 0}) {
		t.Errorf("Drained slice mutated by later append: %v", drained)
	}
}

func TestAccumulatorUnalignedAppend(t *testing.T) {
	acc := NewAccumulator(44100, 1)

	if err := acc.Append([]byte{1}); err == nil {
		t.Error("Expected error for odd byte count")
	}

	stereo := NewAccumulator(44100, 2)
	if err := stereo.Append([]byte{1, 0}); err == nil {
		t.Error("Expected error for half a stereo frame")
	}
}

func TestAccumulatorEmptyAppend(t *testing.T) {
	acc := NewAccumulator(44100, 1)

	if err := acc.Append(nil); err != nil {
		t.Errorf("Empty append should be a no-op, got error: %v", err)
	}

	if acc.Len() != 0 {
		t.Errorf("Expected empty accumulator, got %d bytes", acc.Len())
	}
}

func TestAccumulatorPendingDuration(t *testing.T) {
	acc := NewAccumulator(44100, 1)

	// Half a second of mono PCM-16 at 44.1kHz.
	if err := acc.Append(make([]byte, 44100)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got := acc.PendingDuration()
	want := 500 * time.Millisecond
	if got != want {
		t.Errorf("Expected pending duration %v, got %v", want, got)
	}
}

func TestAccumulatorStats(t *testing.T) {
	acc := NewAccumulator(44100, 1)

	if err := acc.Append([]byte{1, 0, 2, 0}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	acc.Drain()
	if err := acc.Append([]byte{3, 0}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	stats := acc.GetStats()
	if stats.TotalBytes != 6 {
		t.Errorf("Expected 6 total bytes, got %d", stats.TotalBytes)
	}
	if stats.TotalFrames != 2 {
		t.Errorf("Expected 2 total frames, got %d", stats.TotalFrames)
	}
	if stats.Drains != 1 {
		t.Errorf("Expected 1 drain, got %d", stats.Drains)
	}
	if stats.PendingBytes != 2 {
		t.Errorf("Expected 2 pending bytes, got %d", stats.PendingBytes)
	}
}
