package models

import "time"

// AvailabilitySlot is one (start, end) window a faculty member can meet in
type AvailabilitySlot struct {
	ID        int64      `json:"id,omitempty"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
}

// FacultyAvailability is a faculty submission of availability for a candidate section
type FacultyAvailability struct {
	ID               int64              `json:"id"`
	Faculty          int64              `json:"faculty"`
	CandidateSection int64              `json:"candidate_section"`
	Notes            string             `json:"notes,omitempty"`
	TimeSlots        []AvailabilitySlot `json:"time_slots"`
	FacultyName      string             `json:"faculty_name,omitempty"`
	FacultyEmail     string             `json:"faculty_email,omitempty"`
	FacultyRoom      *string            `json:"faculty_room,omitempty"`
	SubmittedAt      *time.Time         `json:"submitted_at,omitempty"`
}

// ImportResult is returned when an admin imports availability as time slots
type ImportResult struct {
	Message                 string  `json:"message"`
	CreatedTimeSlots        []int64 `json:"created_time_slots"`
	ImportedAvailabilityIDs []int64 `json:"imported_availability_ids"`
}

// AvailabilityInvitation asks a faculty member for availability for one section
type AvailabilityInvitation struct {
	ID                    int64  `json:"id"`
	Faculty               int64  `json:"faculty"`
	CandidateSection      int64  `json:"candidate_section"`
	EmailSent             bool   `json:"email_sent"`
	FacultyName           string `json:"faculty_name,omitempty"`
	CandidateName         string `json:"candidate_name,omitempty"`
	CandidateSectionTitle string `json:"candidate_section_title,omitempty"`
}

// InviteResult summarizes a bulk invitation
type InviteResult struct {
	Message          string `json:"message"`
	FacultyCount     int    `json:"faculty_count"`
	CandidateCount   int    `json:"candidate_count"`
	TotalInvitations int    `json:"total_invitations"`
}
