package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Identity events published to the tabs of a browser session
const (
	EventLogin   = "login"
	EventLogout  = "logout"
	EventRefresh = "refresh"
)

// Message represents a message sent over WebSocket
type Message struct {
	// Type is always "identity" for now
	Type string `json:"type"`

	// Event is one of login, logout, refresh
	Event string `json:"event"`

	// UserID of the new identity, nil when signed out
	UserID *int64 `json:"userId,omitempty"`

	// Timestamp when the change happened
	Timestamp time.Time `json:"timestamp"`

	// SessionID the message is scoped to. Never sent to the browser.
	SessionID string `json:"-"`
}

// Hub fans identity changes out to every open tab of the same browser session
type Hub struct {
	// Registered clients organized by session ID
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	listenersMu      sync.RWMutex
	messageListeners []chan *Message

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		broadcast:        make(chan *Message, 64),
		register:         make(chan *Client),
		unregister:       make(chan *Client),
		done:             make(chan struct{}),
		clients:          make(map[string]map[*Client]bool),
		messageListeners: []chan *Message{},
		logger:           logger.With().Str("component", "ws-hub").Logger(),
	}
}

// Run handles registrations and broadcasts until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.sessionID]; !ok {
		h.clients[client.sessionID] = make(map[*Client]bool)
	}
	h.clients[client.sessionID][client] = true

	h.logger.Debug().
		Str("sessionID", client.sessionID).
		Str("addr", client.remoteAddr()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}

	h.logger.Debug().
		Str("sessionID", client.sessionID).
		Str("addr", client.remoteAddr()).
		Msg("Client unregistered")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// broadcastMessage sends a message to all tabs of its session
func (h *Hub) broadcastMessage(message *Message) {
	h.notifyMessageListeners(message)

	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("sessionID", message.SessionID).Msg("Failed to marshal message for broadcast")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[message.SessionID]
	if !ok {
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// slow or gone
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("sessionID", message.SessionID).
		Str("event", message.Event).
		Int("clientCount", len(clients)).
		Msg("Identity change broadcasted")
}

func (h *Hub) notifyMessageListeners(message *Message) {
	h.listenersMu.RLock()
	defer h.listenersMu.RUnlock()

	for _, listener := range h.messageListeners {
		select {
		case listener <- message:
		default:
			h.logger.Warn().Msg("Skipped slow message listener")
		}
	}
}

func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish queues an identity change for every tab of sessionID
func (h *Hub) Publish(sessionID, event string, userID *int64) {
	msg := &Message{
		Type:      "identity",
		Event:     event,
		UserID:    userID,
		Timestamp: time.Now(),
		SessionID: sessionID,
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn().Str("sessionID", sessionID).Msg("Broadcast queue full, dropping identity change")
	}
}

// GetClientsCount returns the number of connected tabs of a session
func (h *Hub) GetClientsCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

// AddMessageListener registers a channel to receive all messages
func (h *Hub) AddMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()
	h.messageListeners = append(h.messageListeners, listener)
}

// RemoveMessageListener removes a listener from the hub
func (h *Hub) RemoveMessageListener(listener chan *Message) {
	h.listenersMu.Lock()
	defer h.listenersMu.Unlock()

	for i, l := range h.messageListeners {
		if l == listener {
			h.messageListeners[i] = h.messageListeners[len(h.messageListeners)-1]
			h.messageListeners = h.messageListeners[:len(h.messageListeners)-1]
			break
		}
	}
}
