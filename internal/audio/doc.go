// Package audio handles PCM sample accumulation and format conversion.
// It implements the per-session sample accumulator that collects canonical
// 16-bit little-endian PCM between chunk cuts, conversion from the float32
// samples delivered by capture backends, and WAV container encoding/decoding.
package audio
