package events

import "time"

// Event type names on the wire.
const (
	TypeChunkReady     = "chunk-ready"
	TypeLastChunkReady = "last-chunk-ready"
	TypeDebug          = "debug"
)

// ChunkPayload is the wire schema of one encoded chunk.
type ChunkPayload struct {
	AudioData     string `json:"audioData"` // base64
	Format        string `json:"format"`
	SampleRate    int    `json:"sampleRate"`
	Channels      int    `json:"channels"`
	BitsPerSample int    `json:"bitsPerSample"`
	ChunkNumber   int    `json:"chunkNumber"`
}

// ChunkEvent is an interior or terminal chunk ready for delivery.
type ChunkEvent struct {
	Type      string       `json:"type"` // chunk-ready | last-chunk-ready
	SessionID string       `json:"sessionId"`
	Payload   ChunkPayload `json:"payload"`
	EmittedAt time.Time    `json:"emittedAt"`
}

// Final reports whether this is the terminal event of its session.
func (e ChunkEvent) Final() bool {
	return e.Type == TypeLastChunkReady
}

// DebugEvent is a low-volume diagnostic message. It may fire at any time
// with no ordering guarantee relative to chunk events.
type DebugEvent struct {
	Type      string    `json:"type"` // always "debug"
	SessionID string    `json:"sessionId,omitempty"`
	Message   string    `json:"message"`
	EmittedAt time.Time `json:"emittedAt"`
}

// Sink receives events that passed the gate. Implementations must not
// block for long; the hub buffers per client and drops slow consumers.
type Sink interface {
	DeliverChunk(ev ChunkEvent)
	DeliverDebug(ev DebugEvent)
}
