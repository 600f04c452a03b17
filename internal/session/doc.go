// Package session implements the chunked-recording session engine: the
// start/stop state machine, per-session sample accumulation, chunk
// boundary detection, encode-and-emit, and the final flush on teardown.
//
// Chunk boundaries use the elapsed-time policy: each frame's capture
// timestamp is compared against the time of the last cut, and a cut
// triggers once the difference reaches the chunk duration. Cadence can
// jitter with callback scheduling, but every interior chunk carries data
// and the policy is deterministic under test. A fixed periodic timer is
// deliberately not used alongside it; one boundary policy only.
//
// All buffer appends, boundary checks and encodes for a session happen on
// one goroutine, so a drain can never interleave with an append. The
// real-time capture callback only performs a non-blocking channel send.
package session
