package websocket

import (
	"context"

	"github.com/rs/zerolog"
)

// AuditListener logs every identity change passing through the hub
type AuditListener struct {
	hub    *Hub
	logger zerolog.Logger
	events chan *Message
}

// NewAuditListener creates a new AuditListener
func NewAuditListener(hub *Hub, logger zerolog.Logger) *AuditListener {
	return &AuditListener{
		hub:    hub,
		logger: logger.With().Str("component", "identity-audit").Logger(),
		events: make(chan *Message, 64),
	}
}

// Start consumes hub messages until ctx is done
func (a *AuditListener) Start(ctx context.Context) {
	a.hub.AddMessageListener(a.events)
	go func() {
		defer a.hub.RemoveMessageListener(a.events)
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-a.events:
				a.record(msg)
			}
		}
	}()
}

func (a *AuditListener) record(msg *Message) {
	ev := a.logger.Info().
		Str("sessionID", msg.SessionID).
		Str("event", msg.Event).
		Int("tabs", a.hub.GetClientsCount(msg.SessionID)).
		Time("at", msg.Timestamp)
	if msg.UserID != nil {
		ev = ev.Int64("userID", *msg.UserID)
	}
	ev.Msg("Identity changed")
}
