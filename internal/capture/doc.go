// Package capture provides the microphone capture collaborator. It defines
// the engine/stream contract the recording session consumes, a PortAudio
// backend for real hardware, and a synthetic tone backend for machines
// without an input device. Capture callbacks never block: frames are handed
// off through a buffered channel and dropped (and counted) on overflow.
package capture
