package encoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// M4AEncoder produces AAC audio in an MP4 (m4a) container by piping raw
// PCM into ffmpeg. The container writes its index on close, so the output
// goes through a temporary file rather than a pipe.
type M4AEncoder struct {
	format     Format
	ffmpegPath string
}

// NewM4AEncoder creates an m4a encoder. ffmpegPath may be empty, in which
// case "ffmpeg" is resolved from PATH.
func NewM4AEncoder(format Format, ffmpegPath string) *M4AEncoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &M4AEncoder{format: format, ffmpegPath: ffmpegPath}
}

func (e *M4AEncoder) ContainerFormat() string {
	return "m4a"
}

func (e *M4AEncoder) Encode(ctx context.Context, pcm []byte) ([]byte, error) {
	tmpDir, err := os.MkdirTemp("", "chunk-encode-*")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create backing dir: %w", ErrEncodeFailed, err)
	}
	defer os.RemoveAll(tmpDir)

	outPath := filepath.Join(tmpDir, "chunk.m4a")

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-f", "s16le",
		"-ar", strconv.Itoa(e.format.SampleRate),
		"-ac", strconv.Itoa(e.format.Channels),
		"-i", "pipe:0",
		"-c:a", "aac",
		"-movflags", "+faststart",
		"-y",
		outPath,
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open ffmpeg stdin: %w", ErrEncodeFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: failed to start %s: %w", ErrEncodeFailed, e.ffmpegPath, err)
	}

	_, writeErr := stdin.Write(pcm)
	closeErr := stdin.Close()

	if err := cmd.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %s exited: %w", ErrEncodeFailed, e.ffmpegPath, err)
	}
	if writeErr != nil {
		return nil, fmt.Errorf("%w: failed to write pcm: %w", ErrEncodeFailed, writeErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("%w: failed to close ffmpeg stdin: %w", ErrEncodeFailed, closeErr)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read encoded chunk: %w", ErrEncodeFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: encoder produced no output", ErrEncodeFailed)
	}

	return data, nil
}
