package audio

import "time"

// Canonical sample encoding constants. All audio inside the service is
// PCM-16 little-endian after conversion from the capture backend.
const (
	BytesPerSample = 2
	BitsPerSample  = 16
)

// Float32ToPCM16 converts float32 samples in [-1, 1] to PCM-16
// little-endian bytes. Out-of-range samples are clipped.
func Float32ToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, s := range samples {
		if s > 1.0 {
			s = 1.0
		} else if s < -1.0 {
			s = -1.0
		}
		var v int16
		if s < 0 {
			v = int16(s * 32768)
		} else {
			v = int16(s * 32767)
		}
		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}
	return out
}

// Int16ToBytes converts int16 samples to little-endian bytes.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*BytesPerSample)
	for i, v := range samples {
		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}
	return out
}

// BytesToInt16 converts little-endian PCM-16 bytes to int16 samples.
// A trailing odd byte is ignored.
func BytesToInt16(data []byte) []int16 {
	n := len(data) / BytesPerSample
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = int16(data[2*i]) | int16(data[2*i+1])<<8
	}
	return out
}

// PCMDuration returns the playback duration of a PCM-16 byte count.
func PCMDuration(numBytes, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	samples := numBytes / (BytesPerSample * channels)
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}
