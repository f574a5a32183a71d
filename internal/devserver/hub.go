package devserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/weft/pkg/telemetry"
)

const writeWait = 2 * time.Second

// MessageType is the kind of a message pushed to preview clients.
type MessageType string

// MessageRender carries the render root's HTML after a pass.
const MessageRender MessageType = "render"

// Message is sent to preview clients over the WebSocket.
type Message struct {
	Type      MessageType `json:"type"`
	Component string      `json:"component,omitempty"`
	HTML      string      `json:"html,omitempty"`
	Passes    int         `json:"passes,omitempty"`
	State     string      `json:"state,omitempty"`
}

// Hub tracks connected preview clients by id.
type Hub struct {
	clients  map[*websocket.Conn]string
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(m *telemetry.Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]string),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true // dev only
			},
		},
		metrics: m,
		logger:  logger,
	}
}

// Serve upgrades the request and keeps the client registered until it
// disconnects. greeting, when non-nil, is sent first.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, greeting *Message) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	if greeting != nil {
		if err := write(conn, *greeting); err != nil {
			conn.Close()
			return err
		}
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[conn] = id
	h.mu.Unlock()
	h.metrics.ClientConnected()
	h.logger.Debug("preview client connected", "client", id, "remote", r.RemoteAddr)

	// Clients only listen; reads detect the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(conn)
	return nil
}

// Broadcast sends msg to every client. Clients that fail are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.drop(c)
	}
}

func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	id, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		h.metrics.ClientDisconnected()
		h.logger.Debug("preview client disconnected", "client", id)
	}
	c.Close()
}

func write(c *websocket.Conn, msg Message) error {
	c.SetWriteDeadline(time.Now().Add(writeWait))
	return c.WriteJSON(msg)
}
