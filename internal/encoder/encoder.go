package encoder

import (
	"context"
	"errors"
	"fmt"
)

// ErrEncodeFailed wraps any codec or backing-storage failure while
// producing a chunk. The session engine skips the chunk and keeps the
// session alive unless failures repeat.
var ErrEncodeFailed = errors.New("encode failed")

// Format describes the PCM input an encoder receives.
type Format struct {
	SampleRate int
	Channels   int
}

// Encoder converts raw PCM-16 little-endian bytes into an encoded
// container blob. Implementations must never be invoked with empty input;
// the caller enforces that.
type Encoder interface {
	// Encode converts pcm into the target container.
	Encode(ctx context.Context, pcm []byte) ([]byte, error)
	// ContainerFormat returns the short format name carried in chunk
	// payloads ("wav", "m4a").
	ContainerFormat() string
}

// New creates an encoder for the configured container format.
func New(format string, audioFormat Format, ffmpegPath string) (Encoder, error) {
	switch format {
	case "wav":
		return NewWAVEncoder(audioFormat), nil
	case "m4a":
		return NewM4AEncoder(audioFormat, ffmpegPath), nil
	default:
		return nil, fmt.Errorf("unknown encoder format: %q", format)
	}
}
