// Package encoder converts accumulated PCM-16 audio into a compressed
// container blob, one chunk at a time. The WAV encoder wraps the samples
// in-process; the M4A encoder shells out to ffmpeg with a temporary
// backing file, since the MP4 container needs a seekable output.
package encoder
