package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/yigit/visitportal/internal/app/models"
)

// CreateTimeSlotRequest is the payload of POST /timeslots/
type CreateTimeSlotRequest struct {
	CandidateSection int64      `json:"candidate_section"`
	StartTime        time.Time  `json:"start_time"`
	EndTime          *time.Time `json:"end_time,omitempty"`
	MaxAttendees     int        `json:"max_attendees"`
	Location         string     `json:"location,omitempty"`
	Description      string     `json:"description,omitempty"`
	IsVisible        bool       `json:"is_visible"`
}

// Seasons lists all seasons
func (s *Conn) Seasons(ctx context.Context) (*Response[[]models.Season], error) {
	return call[[]models.Season](ctx, s, http.MethodGet, "/seasons/", nil, nil)
}

// Season fetches one season
func (s *Conn) Season(ctx context.Context, id int64) (*Response[models.Season], error) {
	return call[models.Season](ctx, s, http.MethodGet, fmt.Sprintf("/seasons/%d/", id), nil, nil)
}

// CandidateSections lists the sections of a season. seasonID 0 lists every
// section the caller may see.
func (s *Conn) CandidateSections(ctx context.Context, seasonID int64) (*Response[[]models.CandidateSection], error) {
	var query map[string]string
	if seasonID > 0 {
		query = map[string]string{"session": strconv.FormatInt(seasonID, 10)}
	}
	return call[[]models.CandidateSection](ctx, s, http.MethodGet, "/candidate-sections/", query, nil)
}

// CandidateSection fetches one section with its time slots
func (s *Conn) CandidateSection(ctx context.Context, id int64) (*Response[models.CandidateSection], error) {
	return call[models.CandidateSection](ctx, s, http.MethodGet, fmt.Sprintf("/candidate-sections/%d/", id), nil, nil)
}

// CreateTimeSlot adds a meeting slot to a section
func (s *Conn) CreateTimeSlot(ctx context.Context, req CreateTimeSlotRequest) (*Response[models.TimeSlot], error) {
	return call[models.TimeSlot](ctx, s, http.MethodPost, "/timeslots/", nil, req)
}

// RegisterForSlot registers the session user for a time slot
func (s *Conn) RegisterForSlot(ctx context.Context, slotID int64) (*Response[models.Attendee], error) {
	return call[models.Attendee](ctx, s, http.MethodPost, fmt.Sprintf("/timeslots/%d/register/", slotID), nil, struct{}{})
}

// UnregisterFromSlot removes the session user from a time slot
func (s *Conn) UnregisterFromSlot(ctx context.Context, slotID int64) error {
	_, err := call[struct{}](ctx, s, http.MethodPost, fmt.Sprintf("/timeslots/%d/unregister/", slotID), nil, struct{}{})
	return err
}

// MyRegistrations lists the attendee records of the session user
func (s *Conn) MyRegistrations(ctx context.Context) (*Response[[]models.Attendee], error) {
	return call[[]models.Attendee](ctx, s, http.MethodGet, "/attendees/my_registrations/", nil, nil)
}
