package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/yigit/visitportal/internal/app/models"
)

// SubmitAvailabilityRequest is the payload of POST /faculty-availability/
type SubmitAvailabilityRequest struct {
	CandidateSection int64                     `json:"candidate_section"`
	Notes            string                    `json:"notes"`
	TimeSlots        []models.AvailabilitySlot `json:"time_slots"`
}

// Availability lists the availability submissions of a section
func (s *Conn) Availability(ctx context.Context, sectionID int64) (*Response[[]models.FacultyAvailability], error) {
	query := map[string]string{"candidate_section": strconv.FormatInt(sectionID, 10)}
	return call[[]models.FacultyAvailability](ctx, s, http.MethodGet, "/faculty-availability/", query, nil)
}

// SubmitAvailability sends the session user's availability for a section
func (s *Conn) SubmitAvailability(ctx context.Context, req SubmitAvailabilityRequest) (*Response[models.FacultyAvailability], error) {
	return call[models.FacultyAvailability](ctx, s, http.MethodPost, "/faculty-availability/", nil, req)
}

// DeleteAvailability removes a submission
func (s *Conn) DeleteAvailability(ctx context.Context, id int64) error {
	_, err := call[struct{}](ctx, s, http.MethodDelete, fmt.Sprintf("/faculty-availability/%d/", id), nil, nil)
	return err
}

// ImportAvailability turns a submission into time slots of its section
func (s *Conn) ImportAvailability(ctx context.Context, id int64) (*Response[models.ImportResult], error) {
	return call[models.ImportResult](ctx, s, http.MethodPost, fmt.Sprintf("/faculty-availability/%d/import_slots/", id), nil, struct{}{})
}

// InviteFacultyRequest is the payload of POST /availability-invitations/invite_faculty/
type InviteFacultyRequest struct {
	FacultyIDs          []int64 `json:"faculty_ids"`
	CandidateSectionIDs []int64 `json:"candidate_section_ids"`
	SendEmail           bool    `json:"send_email"`
}

// Invitations lists availability invitations; faculty only see their own
func (s *Conn) Invitations(ctx context.Context) (*Response[[]models.AvailabilityInvitation], error) {
	return call[[]models.AvailabilityInvitation](ctx, s, http.MethodGet, "/availability-invitations/", nil, nil)
}

// InviteFaculty asks every listed faculty member for availability for every listed section
func (s *Conn) InviteFaculty(ctx context.Context, req InviteFacultyRequest) (*Response[models.InviteResult], error) {
	return call[models.InviteResult](ctx, s, http.MethodPost, "/availability-invitations/invite_faculty/", nil, req)
}
