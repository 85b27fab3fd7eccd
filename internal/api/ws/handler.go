package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vesselhq/vessel/internal/infrastructure/logging"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The shell binds to loopback; the window surface is the only client.
		return true
	},
}

// Message is an inbound event-stream frame.
type Message struct {
	Type string `json:"type"`
}

// Handler manages event stream connections and fans events out to them.
type Handler struct {
	logger *logging.Logger

	mu    sync.Mutex
	conns map[*websocket.Conn]*sync.Mutex

	welcome string

	onConnect    func()
	onDisconnect func()
}

// NewHandler creates an event stream handler. welcome is the product name
// echoed in the connection greeting.
func NewHandler(logger *logging.Logger, welcome string) *Handler {
	return &Handler{
		logger:  logger,
		conns:   make(map[*websocket.Conn]*sync.Mutex),
		welcome: welcome,
	}
}

// OnConnect registers a hook fired when a client attaches.
func (h *Handler) OnConnect(fn func()) { h.onConnect = fn }

// OnDisconnect registers a hook fired when a client detaches.
func (h *Handler) OnDisconnect(fn func()) { h.onDisconnect = fn }

// HandleConnection handles WebSocket upgrade and inbound messages.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Event stream upgrade failed", zap.Error(err))
		return
	}

	h.attach(conn)
	defer h.detach(conn)

	h.sendTo(conn, map[string]interface{}{
		"type":    "system",
		"message": "Connected to " + h.welcome,
	})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Type {
		case "ping":
			h.sendTo(conn, map[string]interface{}{"type": "pong"})
		default:
			h.sendTo(conn, map[string]interface{}{
				"type":    "error",
				"message": "unknown message type",
			})
		}
	}
}

// Broadcast sends an event to every connected client. Slow or dead clients
// are dropped rather than blocking the broadcaster.
func (h *Handler) Broadcast(event interface{}) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := h.sendTo(conn, event); err != nil {
			conn.Close()
			h.detach(conn)
		}
	}
}

// BroadcastEvent is a convenience wrapper adding type and timestamp fields.
func (h *Handler) BroadcastEvent(eventType string, payload map[string]interface{}) {
	event := map[string]interface{}{
		"type":      eventType,
		"timestamp": time.Now().Unix(),
	}
	for k, v := range payload {
		event[k] = v
	}
	h.Broadcast(event)
}

// Clients returns the number of attached clients.
func (h *Handler) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Handler) attach(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = &sync.Mutex{}
	h.mu.Unlock()
	if h.onConnect != nil {
		h.onConnect()
	}
}

func (h *Handler) detach(conn *websocket.Conn) {
	h.mu.Lock()
	_, present := h.conns[conn]
	delete(h.conns, conn)
	h.mu.Unlock()
	if present && h.onDisconnect != nil {
		h.onDisconnect()
	}
}

func (h *Handler) sendTo(conn *websocket.Conn, data interface{}) error {
	h.mu.Lock()
	wlock, ok := h.conns[conn]
	h.mu.Unlock()
	if !ok {
		return websocket.ErrCloseSent
	}

	wlock.Lock()
	defer wlock.Unlock()
	return conn.WriteJSON(data)
}
