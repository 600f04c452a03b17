package audio

import (
	"testing"
	"time"
)

func TestFloat32ToPCM16(t *testing.T) {
	tests := []struct {
		name   string
		sample float32
		want   int16
	}{
		{"silence", 0.0, 0},
		{"full positive", 1.0, 32767},
		{"full negative", -1.0, -32768},
		{"half positive", 0.5, 16383},
		{"clipped positive", 1.5, 32767},
		{"clipped negative", -2.0, -32768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Float32ToPCM16([]float32{tt.sample})
			if len(out) != 2 {
				t.Fatalf("Expected 2 bytes, got %d", len(out))
			}
			got := int16(out[0]) | int16(out[1])<<8
			if got != tt.want {
				t.Errorf("Float32ToPCM16(%f) = %d, want %d", tt.sample, got, tt.want)
			}
		})
	}
}

func TestInt16BytesRoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 32767, -32768, 12345, -12345}

	data := Int16ToBytes(samples)
	if len(data) != len(samples)*2 {
		t.Fatalf("Expected %d bytes, got %d", len(samples)*2, len(data))
	}

	back := BytesToInt16(data)
	if len(back) != len(samples) {
		t.Fatalf("Expected %d samples, got %d", len(samples), len(back))
	}

	for i := range samples {
		if back[i] != samples[i] {
			t.Errorf("Sample %d: got %d, want %d", i, back[i], samples[i])
		}
	}
}

func TestPCMDuration(t *testing.T) {
	tests := []struct {
		name       string
		numBytes   int
		sampleRate int
		channels   int
		want       time.Duration
	}{
		{"one second mono", 44100 * 2, 44100, 1, time.Second},
		{"one second stereo", 44100 * 4, 44100, 2, time.Second},
		{"empty", 0, 44100, 1, 0},
		{"invalid rate", 1000, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PCMDuration(tt.numBytes, tt.sampleRate, tt.channels)
			if got != tt.want {
				t.Errorf("PCMDuration(%d, %d, %d) = %v, want %v",
					tt.numBytes, tt.sampleRate, tt.channels, got, tt.want)
			}
		})
	}
}
