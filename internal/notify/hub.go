// Package notify broadcasts ephemeral notifications to connected clients
// over WebSocket: toast messages for the session and entity-sync events so
// open tabs refresh. Delivery is fire-and-forget.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Toast severity levels, mirrored by the client's toast component.
const (
	LevelSuccess = "success"
	LevelError   = "error"
	LevelInfo    = "info"
	LevelWarning = "warning"
)

// Message is one notification. Toasts carry Level and Text; entity-sync
// events carry Entity, Action and ID.
type Message struct {
	Type   string         `json:"type"`
	Entity string         `json:"entity,omitempty"`
	Action string         `json:"action,omitempty"`
	ID     string         `json:"id,omitempty"`
	Level  string         `json:"level,omitempty"`
	Text   string         `json:"text,omitempty"`
	Extra  map[string]any `json:"extra,omitempty"`
}

// Event creates an entity-sync message with the Type derived from entity and
// action.
func Event(entity, action, id string) Message {
	return Message{
		Type:   fmt.Sprintf("%s_%s", entity, action),
		Entity: entity,
		Action: action,
		ID:     id,
	}
}

// Toast creates a transient toast message.
func Toast(level, text string) Message {
	return Message{Type: "toast", Level: level, Text: text}
}

// Hub maintains the set of connected clients and broadcasts messages.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client from the hub and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all connected clients.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			// Client buffer full — drop message to avoid blocking
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
