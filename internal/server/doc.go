// Package server implements the HTTP control API for the recording
// engine: start/stop/status endpoints, the WebSocket chunk event stream,
// and monitoring/management endpoints.
package server
