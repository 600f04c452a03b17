// Package events defines the chunk event schema, the emitter gate that
// decides which events fire and in what order, and the WebSocket hub that
// fans events out to subscribed consumers. The gate guarantees interior
// chunks arrive in increasing order, the final chunk is the last event of
// its session, and nothing from a superseded session leaks out. Debug
// events carry no ordering or delivery guarantee.
package events
