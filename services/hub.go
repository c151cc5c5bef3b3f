// services/hub.go - Live notification fan-out to websocket connections
package services

import (
	"log/slog"
	"sync"
)

// Sender is a connection that accepts JSON messages.
type Sender interface {
	WriteJSON(v any) error
}

type client struct {
	conn Sender
	mu   sync.Mutex // serializes writes
}

// Hub tracks the open connections of every user.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{clients: make(map[string]map[*client]struct{}), logger: logger}
}

// Register adds a connection for username. The returned function removes
// it again.
func (h *Hub) Register(username string, conn Sender) (unregister func()) {
	c := &client{conn: conn}

	h.mu.Lock()
	if h.clients[username] == nil {
		h.clients[username] = make(map[*client]struct{})
	}
	h.clients[username][c] = struct{}{}
	h.mu.Unlock()

	return func() { h.remove(username, c) }
}

// Send writes v to every connection of username. Connections that fail
// are dropped. It returns the number of successful writes.
func (h *Hub) Send(username string, v any) int {
	h.mu.RLock()
	targets := make([]*client, 0, len(h.clients[username]))
	for c := range h.clients[username] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		c.mu.Lock()
		err := c.conn.WriteJSON(v)
		c.mu.Unlock()
		if err != nil {
			h.logger.Debug("dropping websocket connection", slog.String("user", username), slog.Any("error", err))
			h.remove(username, c)
			continue
		}
		sent++
	}
	return sent
}

// Connections returns the number of open connections of username.
func (h *Hub) Connections(username string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[username])
}

func (h *Hub) remove(username string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.clients[username]
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.clients, username)
	}
}
