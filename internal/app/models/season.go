package models

import "time"

// Season is a recruiting season, e.g. "Spring 2025 Recruitment"
type Season struct {
	ID          int64  `json:"id" example:"3"`
	Title       string `json:"title" example:"Spring 2025 Recruitment"`
	Description string `json:"description,omitempty"`
	StartDate   Date   `json:"start_date"`
	EndDate     Date   `json:"end_date"`
}

// CandidateSection connects one candidate to a season and holds the candidate's time slots
type CandidateSection struct {
	ID                      int64      `json:"id" example:"12"`
	Title                   string     `json:"title,omitempty"`
	Season                  int64      `json:"session,omitempty"`
	Candidate               User       `json:"candidate"`
	ArrivalDate             Date       `json:"arrival_date"`
	LeavingDate             Date       `json:"leaving_date"`
	NeedsTransportation     bool       `json:"needs_transportation"`
	Description             string     `json:"description,omitempty"`
	Location                string     `json:"location,omitempty"`
	TimeSlots               []TimeSlot `json:"time_slots"`
	ImportedAvailabilityIDs []int64    `json:"imported_availability_ids,omitempty"`
}

// HasVisitWindow reports whether both visit dates are known
func (s *CandidateSection) HasVisitWindow() bool {
	return !s.ArrivalDate.IsZero() && !s.LeavingDate.IsZero()
}

// TimeSlot is a meeting slot inside a candidate section
type TimeSlot struct {
	ID             int64      `json:"id" example:"101"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        *time.Time `json:"end_time,omitempty"`
	Location       string     `json:"location,omitempty"`
	Description    string     `json:"description,omitempty"`
	MaxAttendees   int        `json:"max_attendees" example:"1"`
	Attendees      []Attendee `json:"attendees"`
	IsVisible      *bool      `json:"is_visible,omitempty"`
	IsFull         *bool      `json:"is_full,omitempty"`         // advisory, see Full
	AvailableSlots *int       `json:"available_slots,omitempty"` // advisory
}

// Visible applies the default-visible policy: only an explicit false hides a slot
func (t *TimeSlot) Visible() bool {
	return t.IsVisible == nil || *t.IsVisible
}

// Full is recomputed from the attendee list and ignores the server-provided is_full
func (t *TimeSlot) Full() bool {
	return len(t.Attendees) >= t.MaxAttendees
}

// HasAttendee reports whether userID is among the attendees
func (t *TimeSlot) HasAttendee(userID int64) bool {
	for _, a := range t.Attendees {
		if a.User.ID == userID {
			return true
		}
	}
	return false
}

// Attendee is a user registered for a time slot
type Attendee struct {
	ID           int64      `json:"id"`
	User         User       `json:"user"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
}
