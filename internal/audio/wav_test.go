package audio

import (
	"bytes"
	"testing"
)

func TestEncodeWAVRoundTrip(t *testing.T) {
	samples := make([]int16, 44100) // 1 second at 44.1kHz
	for i := range samples {
		samples[i] = int16(i % 2000)
	}
	pcm := Int16ToBytes(samples)

	encoded, err := EncodeWAV(pcm, 44100, 1)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	if len(encoded) != 44+len(pcm) {
		t.Errorf("Expected %d bytes, got %d", 44+len(pcm), len(encoded))
	}

	decoded, sampleRate, channels, err := DecodeWAV(encoded)
	if err != nil {
		t.Fatalf("DecodeWAV failed: %v", err)
	}

	if sampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", sampleRate)
	}

	if channels != 1 {
		t.Errorf("Expected 1 channel, got %d", channels)
	}

	if !bytes.Equal(decoded, pcm) {
		t.Error("Decoded PCM does not match original")
	}
}

func TestEncodeWAVEmptyData(t *testing.T) {
	if _, err := EncodeWAV(nil, 44100, 1); err == nil {
		t.Error("Expected error for empty audio data")
	}
}

func TestEncodeWAVInvalidParams(t *testing.T) {
	pcm := []byte{0, 0, 0, 0}

	if _, err := EncodeWAV(pcm, 0, 1); err == nil {
		t.Error("Expected error for zero sample rate")
	}

	if _, err := EncodeWAV(pcm, 44100, 0); err == nil {
		t.Error("Expected error for zero channels")
	}

	if _, err := EncodeWAV([]byte{0, 0, 0}, 44100, 2); err == nil {
		t.Error("Expected error for unaligned data")
	}
}

func TestDecodeWAVTruncated(t *testing.T) {
	if _, _, _, err := DecodeWAV([]byte{'R', 'I', 'F', 'F'}); err == nil {
		t.Error("Expected error for truncated WAV data")
	}
}

func TestDecodeWAVInvalidMagic(t *testing.T) {
	pcm := []byte{1, 0, 2, 0}
	encoded, err := EncodeWAV(pcm, 44100, 1)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	corrupted := make([]byte, len(encoded))
	copy(corrupted, encoded)
	copy(corrupted[0:4], "JUNK")

	if _, _, _, err := DecodeWAV(corrupted); err == nil {
		t.Error("Expected error for corrupted RIFF header")
	}
}

func TestValidateWAV(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	encoded, err := EncodeWAV(pcm, 44100, 1)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	if err := ValidateWAV(encoded); err != nil {
		t.Errorf("ValidateWAV failed on valid data: %v", err)
	}

	if err := ValidateWAV([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for short data")
	}
}

func TestGetWAVDuration(t *testing.T) {
	// 2 seconds of 44.1kHz mono audio
	pcm := make([]byte, 44100*2*2)
	encoded, err := EncodeWAV(pcm, 44100, 1)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	duration, err := GetWAVDuration(encoded)
	if err != nil {
		t.Fatalf("GetWAVDuration failed: %v", err)
	}

	if duration < 1.99 || duration > 2.01 {
		t.Errorf("Expected duration ~2.0s, got %f", duration)
	}
}

func TestGetWAVInfo(t *testing.T) {
	pcm := make([]byte, 44100*2) // 1 second mono
	encoded, err := EncodeWAV(pcm, 44100, 1)
	if err != nil {
		t.Fatalf("EncodeWAV failed: %v", err)
	}

	info, err := GetWAVInfo(encoded)
	if err != nil {
		t.Fatalf("GetWAVInfo failed: %v", err)
	}

	if info.SampleRate != 44100 {
		t.Errorf("Expected sample rate 44100, got %d", info.SampleRate)
	}
	if info.Channels != 1 {
		t.Errorf("Expected 1 channel, got %d", info.Channels)
	}
	if info.BitsPerSample != 16 {
		t.Errorf("Expected 16 bits per sample, got %d", info.BitsPerSample)
	}
	if info.DataSize != uint32(len(pcm)) {
		t.Errorf("Expected data size %d, got %d", len(pcm), info.DataSize)
	}
}
