package session

import (
	"errors"

	"github.com/skypro1111/mic-chunk-service/internal/encoder"
)

// Sentinel errors of the recording engine. Precondition errors
// (ErrAlreadyRecording, ErrNotRecording, ErrInvalidChunkDuration) are
// returned synchronously and leave state untouched; the rest describe a
// failed start attempt or a degraded stop.
var (
	ErrAlreadyRecording     = errors.New("already recording")
	ErrNotRecording         = errors.New("not recording")
	ErrInvalidChunkDuration = errors.New("chunk duration must be positive")
	ErrPermissionDenied     = errors.New("microphone permission denied")
	ErrSetupFailed          = errors.New("audio capture setup failed")
	ErrTeardownFailed       = errors.New("audio capture teardown failed")
)

// Error codes carried on the wire.
const (
	CodeAlreadyRecording     = "ALREADY_RECORDING"
	CodeNotRecording         = "NOT_RECORDING"
	CodeInvalidChunkDuration = "INVALID_CHUNK_DURATION"
	CodePermissionDenied     = "PERMISSION_DENIED"
	CodeSetupFailed          = "AUDIO_SETUP_FAILED"
	CodeEncodeFailed         = "ENCODE_FAILED"
	CodeTeardownFailed       = "AUDIO_TEARDOWN_FAILED"
	CodeInternal             = "INTERNAL"
)

// Code maps an engine error to its wire code.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyRecording):
		return CodeAlreadyRecording
	case errors.Is(err, ErrNotRecording):
		return CodeNotRecording
	case errors.Is(err, ErrInvalidChunkDuration):
		return CodeInvalidChunkDuration
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrSetupFailed):
		return CodeSetupFailed
	case errors.Is(err, encoder.ErrEncodeFailed):
		return CodeEncodeFailed
	case errors.Is(err, ErrTeardownFailed):
		return CodeTeardownFailed
	default:
		return CodeInternal
	}
}
