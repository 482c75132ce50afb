// Package feed streams transcript events to browsers and other listeners
// over websockets and keeps a short history for late joiners.
package feed

import (
	"encoding/json"
	"log/slog"
	"sync"

	"voice-assistant/internal/domain"
)

const clientBuffer = 32

type client struct {
	send chan []byte
}

// Hub fans events out to connected clients. Clients that fall behind are
// disconnected rather than slowing down Publish.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	history []domain.Event
	limit   int
	logger  *slog.Logger
}

func NewHub(historyLimit int, logger *slog.Logger) *Hub {
	if historyLimit <= 0 {
		historyLimit = 100
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		limit:   historyLimit,
		logger:  logger,
	}
}

func (h *Hub) Publish(event domain.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("encoding feed event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.history = append(h.history, event)
	if over := len(h.history) - h.limit; over > 0 {
		h.history = append(h.history[:0], h.history[over:]...)
	}

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("feed client too slow, disconnecting")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

// History returns the retained events, oldest first.
func (h *Hub) History() []domain.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]domain.Event(nil), h.history...)
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// subscribe registers a client and returns it with the history it should
// replay first. Both happen under one lock so no event is missed or doubled.
func (h *Hub) subscribe() (*client, []domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := &client{send: make(chan []byte, clientBuffer)}
	h.clients[c] = struct{}{}
	return c, append([]domain.Event(nil), h.history...)
}

func (h *Hub) unsubscribe(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
