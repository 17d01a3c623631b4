package websocket

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// SessionIDFunc extracts the browser session id resolved by the session middleware
type SessionIDFunc func(c *gin.Context) (string, bool)

// Handler for WebSocket connections
type Handler struct {
	hub       *Hub
	sessionID SessionIDFunc
	upgrader  websocket.Upgrader
	logger    zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, sessionID SessionIDFunc, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:       hub,
		sessionID: sessionID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     sameOrigin,
		},
		logger: logger,
	}
}

// sameOrigin accepts requests without an Origin header and those whose origin host matches
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// HandleConnection godoc
// @Summary Subscribe to identity changes of the current browser session
// @Description Upgrades to a WebSocket that receives a message whenever the session signs in, out or refreshes its identity
// @Tags session, websocket
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} dto.ErrorResponse "No browser session"
// @Router /ws/session [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok || sessionID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No browser session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("sessionID", sessionID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		send:      make(chan []byte, 16),
		sessionID: sessionID,
		logger:    h.logger,
	}
	if !h.hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
