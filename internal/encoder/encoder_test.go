package encoder

import (
	"context"
	"errors"
	"testing"

	"github.com/skypro1111/mic-chunk-service/internal/audio"
)

func TestNewEncoderSelection(t *testing.T) {
	format := Format{SampleRate: 44100, Channels: 1}

	enc, err := New("wav", format, "")
	if err != nil {
		t.Fatalf("New(wav) failed: %v", err)
	}
	if enc.ContainerFormat() != "wav" {
		t.Errorf("Expected format wav, got %s", enc.ContainerFormat())
	}

	enc, err = New("m4a", format, "/usr/bin/ffmpeg")
	if err != nil {
		t.Fatalf("New(m4a) failed: %v", err)
	}
	if enc.ContainerFormat() != "m4a" {
		t.Errorf("Expected format m4a, got %s", enc.ContainerFormat())
	}

	if _, err := New("ogg", format, ""); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestWAVEncoderRoundTrip(t *testing.T) {
	enc := NewWAVEncoder(Format{SampleRate: 44100, Channels: 1})

	pcm := audio.Int16ToBytes([]int16{100, -100, 200, -200})
	blob, err := enc.Encode(context.Background(), pcm)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	decoded, sampleRate, channels, err := audio.DecodeWAV(blob)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}
	if sampleRate != 44100 || channels != 1 {
		t.Errorf("Format mismatch: %d Hz, %d channels", sampleRate, channels)
	}
	if len(decoded) != len(pcm) {
		t.Errorf("Expected %d pcm bytes, got %d", len(pcm), len(decoded))
	}
}

func TestWAVEncoderEmptyInput(t *testing.T) {
	enc := NewWAVEncoder(Format{SampleRate: 44100, Channels: 1})

	_, err := enc.Encode(context.Background(), nil)
	if err == nil {
		t.Fatal("Expected error for empty pcm")
	}
	if !errors.Is(err, ErrEncodeFailed) {
		t.Errorf("Expected ErrEncodeFailed, got %v", err)
	}
}

func TestWAVEncoderCancelledContext(t *testing.T) {
	enc := NewWAVEncoder(Format{SampleRate: 44100, Channels: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := enc.Encode(ctx, []byte{1, 0})
	if !errors.Is(err, ErrEncodeFailed) {
		t.Errorf("Expected ErrEncodeFailed for cancelled context, got %v", err)
	}
}

func TestM4AEncoderMissingBinary(t *testing.T) {
	enc := NewM4AEncoder(Format{SampleRate: 44100, Channels: 1}, "/nonexistent/ffmpeg")

	_, err := enc.Encode(context.Background(), []byte{1, 0, 2, 0})
	if err == nil {
		t.Fatal("Expected error for missing ffmpeg binary")
	}
	if !errors.Is(err, ErrEncodeFailed) {
		t.Errorf("Expected ErrEncodeFailed, got %v", err)
	}
}
