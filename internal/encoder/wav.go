package encoder

import (
	"context"
	"fmt"

	"github.com/skypro1111/mic-chunk-service/internal/audio"
)

// WAVEncoder wraps PCM chunks in a WAV container in-process.
type WAVEncoder struct {
	format Format
}

// NewWAVEncoder creates a WAV encoder for the given PCM format.
func NewWAVEncoder(format Format) *WAVEncoder {
	return &WAVEncoder{format: format}
}

func (e *WAVEncoder) ContainerFormat() string {
	return "wav"
}

func (e *WAVEncoder) Encode(ctx context.Context, pcm []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}

	data, err := audio.EncodeWAV(pcm, e.format.SampleRate, e.format.Channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	return data, nil
}
