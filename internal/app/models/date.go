package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of DateField values
const DateLayout = "2006-01-02"

// Date is a calendar day without time zone, as sent for start_date, arrival_date, etc.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from a time value, using the value's own location
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string. Full RFC3339 timestamps are accepted and truncated.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return NewDate(t), nil
}

// IsZero reports whether the date is unset
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

// String formats the date as YYYY-MM-DD
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Floor returns the first instant of the day in loc
func (d Date) Floor(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Ceil returns the last instant of the day in loc
func (d Date) Ceil(loc *time.Location) time.Time {
	return d.Floor(loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Format renders the date with a time layout
func (d Date) Format(layout string) string {
	if d.IsZero() {
		return ""
	}
	return d.Floor(time.UTC).Format(layout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD", or null when unset
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD", an RFC3339 timestamp, "" or null
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
