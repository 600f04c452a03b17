package events

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skypro1111/mic-chunk-service/internal/metrics"
)

const (
	clientQueueSize = 64
	writeTimeout    = 10 * time.Second
)

// Hub fans events out to WebSocket subscribers. Each client gets a
// buffered send queue; a client that cannot keep up is disconnected so
// one slow consumer never stalls the session engine.
type Hub struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	clients map[*client]struct{}
	mu      sync.RWMutex

	delivered uint64
	dropped   uint64
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty event hub.
func NewHub(m *metrics.Metrics, logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// HandleWebSocket upgrades the request and subscribes the connection to
// the event stream.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientQueueSize),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.SetEventSubscribers(count)
	h.logger.Info("Event subscriber connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.Int("subscribers", count),
	)

	go h.writeLoop(c)
	go h.readLoop(c)
}

// writeLoop drains the client queue onto the connection.
func (h *Hub) writeLoop(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.logger.Debug("Event subscriber write failed",
				slog.String("error", err.Error()),
			)
			return
		}
	}

	// Queue closed: the client was dropped for falling behind.
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "subscriber too slow"))
}

// readLoop consumes (and discards) client messages so pings and close
// frames are processed.
func (h *Hub) readLoop(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.SetEventSubscribers(count)
}

// DeliverChunk implements Sink.
func (h *Hub) DeliverChunk(ev ChunkEvent) {
	h.broadcast(ev)
}

// DeliverDebug implements Sink.
func (h *Hub) DeliverDebug(ev DebugEvent) {
	h.broadcast(ev)
}

func (h *Hub) broadcast(ev any) {
	message, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("Failed to marshal event", slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	removed := 0
	for c := range h.clients {
		select {
		case c.send <- message:
			h.delivered++
		default:
			// Slow client: disconnect rather than block or reorder.
			delete(h.clients, c)
			close(c.send)
			h.dropped++
			removed++
			h.logger.Warn("Dropped slow event subscriber")
		}
	}
	count := len(h.clients)
	h.mu.Unlock()

	if removed > 0 {
		h.metrics.SetEventSubscribers(count)
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
