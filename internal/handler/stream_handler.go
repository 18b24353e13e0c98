package handler

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/trade-journal/internal/middleware"
	"github.com/trade-journal/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// journalEvent is the wire format pushed to stream clients
type journalEvent struct {
	Event string               `json:"event"`
	Entry *models.JournalEntry `json:"entry"`
}

// StreamHandler pushes journal change events to websocket clients so list
// views refresh live. Implements service.EventPublisher.
type StreamHandler struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]uint
}

// NewStreamHandler creates a new StreamHandler
func NewStreamHandler() *StreamHandler {
	return &StreamHandler{
		clients: make(map[*websocket.Conn]uint),
	}
}

// PublishJournalEvent broadcasts an event to the owning user's clients
func (h *StreamHandler) PublishJournalEvent(userID uint, event string, entry *models.JournalEntry) {
	message, err := json.Marshal(journalEvent{Event: event, Entry: entry})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, owner := range h.clients {
		if owner != userID {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Serve upgrades the connection and registers the client
// GET /ws
func (h *StreamHandler) Serve(c *gin.Context) {
	userID := middleware.GetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	h.mu.Lock()
	h.clients[conn] = userID
	h.mu.Unlock()

	// Reader loop exists only to detect disconnects
	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// RegisterRoutes registers the stream route
func (h *StreamHandler) RegisterRoutes(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	r.GET("/ws", authMiddleware, h.Serve)
}
