package api

import (
	"net/http"
	"sync"

	"NavPulse/internal/domain/models"
	applogger "NavPulse/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// ProgressHub fans per-fund evaluation progress out to WebSocket clients.
// Slow clients are dropped rather than allowed to stall a running batch.
type ProgressHub struct {
	upgrader websocket.Upgrader
	logger   *applogger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]chan models.ProgressEvent
}

// NewProgressHub creates a hub.
func NewProgressHub(logger *applogger.Logger) *ProgressHub {
	if logger == nil {
		logger = applogger.Nop()
	}
	return &ProgressHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:  logger,
		clients: map[*websocket.Conn]chan models.ProgressEvent{},
	}
}

// Broadcast pushes an event to every connected client, dropping any whose
// send buffer is full.
func (h *ProgressHub) Broadcast(e models.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		select {
		case ch <- e:
		default:
			h.logger.Warn("progress client too slow, dropping")
			close(ch)
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// Serve upgrades the request and streams progress events until the client
// disconnects.
func (h *ProgressHub) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	ch := make(chan models.ProgressEvent, 64)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	// drain incoming frames so pings and close handshakes are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.remove(conn)
				return
			}
		}
	}()

	for e := range ch {
		if err := conn.WriteJSON(e); err != nil {
			h.remove(conn)
			return nil
		}
	}
	return nil
}

func (h *ProgressHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if ch, ok := h.clients[conn]; ok {
		close(ch)
		delete(h.clients, conn)
	}
	h.mu.Unlock()
	_ = conn.Close()
}

// Close disconnects all clients.
func (h *ProgressHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, ch := range h.clients {
		close(ch)
		delete(h.clients, conn)
		_ = conn.Close()
	}
}
