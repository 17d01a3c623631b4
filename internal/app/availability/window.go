// Package availability validates faculty availability time ranges against a
// candidate's visit window.
package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/yigit/visitportal/internal/app/models"
)

// Field names used in violations
const (
	FieldStart = "start_time"
	FieldEnd   = "end_time"
)

// DefaultStartHour and DefaultLength describe the slot proposed when adding a row
const (
	DefaultStartHour = 9
	DefaultLength    = time.Hour
)

// ErrInvalidSlots is returned by Validate when at least one slot violates the window
var ErrInvalidSlots = errors.New("one or more time slots fall outside the visit window")

// Slot is a staged availability range. End may be nil.
type Slot struct {
	Start *time.Time
	End   *time.Time
}

// Violation is a single rule breach for the slot at Index
type Violation struct {
	Index   int    `json:"index"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Window is the candidate's arrival/leaving interval. A zero date leaves that side unbounded.
type Window struct {
	Arrival models.Date
	Leaving models.Date
	Loc     *time.Location
}

// WindowFor builds the window of a candidate section
func WindowFor(section models.CandidateSection, loc *time.Location) Window {
	return Window{Arrival: section.ArrivalDate, Leaving: section.LeavingDate, Loc: loc}
}

func (w Window) location() *time.Location {
	if w.Loc == nil {
		return time.Local
	}
	return w.Loc
}

// Floor is the first valid instant, or the zero time when unbounded
func (w Window) Floor() time.Time {
	if w.Arrival.IsZero() {
		return time.Time{}
	}
	return w.Arrival.Floor(w.location())
}

// Ceil is the last valid instant, or the zero time when unbounded
func (w Window) Ceil() time.Time {
	if w.Leaving.IsZero() {
		return time.Time{}
	}
	return w.Leaving.Ceil(w.location())
}

// Check returns the violations of a single slot. It is used both for
// non-blocking per-field warnings and by Validate.
func (w Window) Check(index int, s Slot) []Violation {
	var out []Violation
	floor, ceil := w.Floor(), w.Ceil()
	layout := "Jan 2, 2006"

	if s.Start == nil {
		return append(out, Violation{Index: index, Field: FieldStart, Message: "start time is required"})
	}
	if !floor.IsZero() && s.Start.Before(floor) {
		out = append(out, Violation{
			Index:   index,
			Field:   FieldStart,
			Message: fmt.Sprintf("start time is before the candidate's arrival on %s", floor.Format(layout)),
		})
	}

	last := *s.Start
	field := FieldStart
	if s.End != nil {
		last = *s.End
		field = FieldEnd
		if s.End.Before(*s.Start) {
			out = append(out, Violation{Index: index, Field: FieldEnd, Message: "end time is before start time"})
		}
	}
	if !ceil.IsZero() && last.After(ceil) {
		out = append(out, Violation{
			Index:   index,
			Field:   field,
			Message: fmt.Sprintf("time is after the candidate's departure on %s", ceil.Format(layout)),
		})
	}
	return out
}

// CheckAll returns the violations of every slot in order
func (w Window) CheckAll(slots []Slot) []Violation {
	var out []Violation
	for i, s := range slots {
		out = append(out, w.Check(i, s)...)
	}
	return out
}

// Validate blocks submission when any slot violates the window
func (w Window) Validate(slots []Slot) ([]Violation, error) {
	v := w.CheckAll(slots)
	if len(v) > 0 {
		return v, ErrInvalidSlots
	}
	return nil, nil
}

// Clamp moves t into the window
func (w Window) Clamp(t time.Time) time.Time {
	if floor := w.Floor(); !floor.IsZero() && t.Before(floor) {
		return floor
	}
	if ceil := w.Ceil(); !ceil.IsZero() && t.After(ceil) {
		return ceil
	}
	return t
}

// DefaultSlot proposes a new slot: the next whole day at DefaultStartHour, clamped into the window.
// The end is clamped too, so the proposal never violates the window.
func (w Window) DefaultSlot(now time.Time) Slot {
	loc := w.location()
	now = now.In(loc)
	start := time.Date(now.Year(), now.Month(), now.Day(), DefaultStartHour, 0, 0, 0, loc)
	if !start.After(now) {
		start = start.AddDate(0, 0, 1)
	}
	if floor := w.Floor(); !floor.IsZero() && start.Before(floor) {
		start = floor.Add(DefaultStartHour * time.Hour)
	}
	if ceil := w.Ceil(); !ceil.IsZero() && start.After(ceil) {
		start = w.Leaving.Floor(loc).Add(DefaultStartHour * time.Hour)
	}
	start = w.Clamp(start)
	end := w.Clamp(start.Add(DefaultLength))
	return Slot{Start: &start, End: &end}
}

// ToModel converts staged slots into the payload shape of the API
func ToModel(slots []Slot) []models.AvailabilitySlot {
	out := make([]models.AvailabilitySlot, 0, len(slots))
	for _, s := range slots {
		if s.Start == nil {
			continue
		}
		out = append(out, models.AvailabilitySlot{StartTime: *s.Start, EndTime: s.End})
	}
	return out
}
