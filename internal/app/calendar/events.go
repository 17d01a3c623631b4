// Package calendar projects candidate sections into flat calendar events and
// manages the register/unregister confirmation step.
package calendar

import (
	"time"

	"github.com/yigit/visitportal/internal/app/models"
)

// Colors used by the calendar engine
const (
	ColorAvailableFill    = "#28a745"
	ColorAvailableBorder  = "#1e7e34"
	ColorFullFill         = "#dc3545"
	ColorFullBorder       = "#c82333"
	ColorRegisteredBorder = "#ffc107"
)

// Style holds the presentation attributes of an event
type Style struct {
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	TextColor       string `json:"textColor"`
	ClassName       string `json:"className"`
}

// StyleFor maps the (full, registered) pair to a style. Fullness picks the fill,
// registration overrides the border.
func StyleFor(isFull, isRegistered bool) Style {
	s := Style{
		BackgroundColor: ColorAvailableFill,
		BorderColor:     ColorAvailableBorder,
		TextColor:       "#ffffff",
		ClassName:       "slot-available",
	}
	if isFull {
		s.BackgroundColor = ColorFullFill
		s.BorderColor = ColorFullBorder
		s.ClassName = "slot-full"
	}
	if isRegistered {
		s.BorderColor = ColorRegisteredBorder
		s.ClassName += " slot-registered"
	}
	return s
}

// Event is one renderable calendar entry derived from a time slot
type Event struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Start         time.Time  `json:"start"`
	End           *time.Time `json:"end,omitempty"`
	SectionID     int64      `json:"sectionId"`
	CandidateName string     `json:"candidateName"`
	Location      string     `json:"location,omitempty"`
	Description   string     `json:"description,omitempty"`
	Attendees     int        `json:"attendees"`
	MaxAttendees  int        `json:"maxAttendees"`
	AttendeeNames []string   `json:"attendeeNames,omitempty"`
	IsFull        bool       `json:"isFull"`
	IsRegistered  bool       `json:"isRegistered"`
	Style
}

// Action returns what clicking this event stages
func (e Event) Action() ActionKind {
	switch {
	case e.IsRegistered:
		return ActionUnregister
	case !e.IsFull:
		return ActionRegister
	default:
		return ActionNone
	}
}

// Derive flattens the visible slots of every section, in order, into events for currentUserID
func Derive(sections []models.CandidateSection, currentUserID int64) []Event {
	events := make([]Event, 0)
	for i := range sections {
		section := &sections[i]
		for j := range section.TimeSlots {
			slot := &section.TimeSlots[j]
			if !slot.Visible() {
				continue
			}
			events = append(events, eventFor(section, slot, currentUserID))
		}
	}
	return events
}

func eventFor(section *models.CandidateSection, slot *models.TimeSlot, currentUserID int64) Event {
	isFull := slot.Full()
	isRegistered := currentUserID != 0 && slot.HasAttendee(currentUserID)

	candidate := section.Candidate.FullName()
	title := candidate
	if slot.Description != "" {
		title = candidate + ": " + slot.Description
	}

	names := make([]string, 0, len(slot.Attendees))
	for _, a := range slot.Attendees {
		names = append(names, a.User.FullName())
	}

	return Event{
		ID:            slot.ID,
		Title:         title,
		Start:         slot.StartTime,
		End:           slot.EndTime,
		SectionID:     section.ID,
		CandidateName: candidate,
		Location:      slot.Location,
		Description:   slot.Description,
		Attendees:     len(slot.Attendees),
		MaxAttendees:  slot.MaxAttendees,
		AttendeeNames: names,
		IsFull:        isFull,
		IsRegistered:  isRegistered,
		Style:         StyleFor(isFull, isRegistered),
	}
}

// Find returns the event for a slot id
func Find(events []Event, slotID int64) (Event, bool) {
	for _, e := range events {
		if e.ID == slotID {
			return e, true
		}
	}
	return Event{}, false
}
