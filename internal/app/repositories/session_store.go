package repositories

import (
	"context"
	"time"

	"github.com/yigit/visitportal/internal/app/models"
)

// FlashLevel is the severity of a pending notification
type FlashLevel string

// Flash levels
const (
	FlashSuccess FlashLevel = "success"
	FlashError   FlashLevel = "error"
	FlashInfo    FlashLevel = "info"
)

// Flash is a one-shot notification shown on the next page render
type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}

// SessionRecord is everything the portal remembers about one browser session
type SessionRecord struct {
	ID            string            `json:"id"`
	Identity      *models.User      `json:"identity,omitempty"`
	APICookies    map[string]string `json:"api_cookies,omitempty"`
	Flashes       []Flash           `json:"flashes,omitempty"`
	SetupPrompted bool              `json:"setup_prompted"`
	ConfirmedAt   *time.Time        `json:"confirmed_at,omitempty"`
	// Generation changes on every sign-in and sign-out; writes based on an
	// older read compare against it
	Generation int64     `json:"generation"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Clone returns a deep copy so callers never share maps or slices with the store
func (r *SessionRecord) Clone() *SessionRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Identity != nil {
		u := *r.Identity
		if r.Identity.RoomNumber != nil {
			room := *r.Identity.RoomNumber
			u.RoomNumber = &room
		}
		out.Identity = &u
	}
	if r.APICookies != nil {
		out.APICookies = make(map[string]string, len(r.APICookies))
		for k, v := range r.APICookies {
			out.APICookies[k] = v
		}
	}
	if r.Flashes != nil {
		out.Flashes = append([]Flash(nil), r.Flashes...)
	}
	if r.ConfirmedAt != nil {
		t := *r.ConfirmedAt
		out.ConfirmedAt = &t
	}
	return &out
}

// SessionStore persists browser session records. Get returns
// apperrors.ErrSessionNotFound for unknown ids. Writes are last-writer-wins.
type SessionStore interface {
	Get(ctx context.Context, id string) (*SessionRecord, error)
	Set(ctx context.Context, record *SessionRecord) error
	Clear(ctx context.Context, id string) error
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
