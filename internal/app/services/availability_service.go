package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/availability"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

// AvailabilityService checks and submits faculty availability for a candidate section
type AvailabilityService struct {
	sessions *SessionService
	schedule *ScheduleService
	loc      *time.Location
	now      func() time.Time
	logger   zerolog.Logger
}

// NewAvailabilityService creates a new availability service. Visit windows are evaluated in loc.
func NewAvailabilityService(sessions *SessionService, schedule *ScheduleService, loc *time.Location, logger zerolog.Logger) *AvailabilityService {
	return &AvailabilityService{
		sessions: sessions,
		schedule: schedule,
		loc:      loc,
		now:      time.Now,
		logger:   logger.With().Str("component", "availability").Logger(),
	}
}

// Window loads a section and returns its visit window
func (s *AvailabilityService) Window(ctx context.Context, sid string, sectionID int64) (*models.CandidateSection, availability.Window, error) {
	section, err := s.schedule.Section(ctx, sid, sectionID)
	if err != nil {
		return nil, availability.Window{}, err
	}
	return section, availability.WindowFor(*section, s.loc), nil
}

// DefaultSlot proposes a new staged slot inside the window
func (s *AvailabilityService) DefaultSlot(w availability.Window) availability.Slot {
	return w.DefaultSlot(s.now())
}

// Check returns non-blocking warnings for staged slots
func (s *AvailabilityService) Check(ctx context.Context, sid string, sectionID int64, slots []availability.Slot) ([]availability.Violation, error) {
	_, w, err := s.Window(ctx, sid, sectionID)
	if err != nil {
		return nil, err
	}
	return w.CheckAll(slots), nil
}

// List returns the availability submissions of a section
func (s *AvailabilityService) List(ctx context.Context, sid string, sectionID int64) ([]models.FacultyAvailability, error) {
	var list []models.FacultyAvailability
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Availability(ctx, sectionID)
		if err != nil {
			return err
		}
		list = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load availability")
	}
	return list, nil
}

// Submit validates the staged slots against the visit window and forwards
// them to the API. Violations block the call and are returned alongside
// availability.ErrInvalidSlots.
func (s *AvailabilityService) Submit(ctx context.Context, sid string, sectionID int64, notes string, slots []availability.Slot) (*models.FacultyAvailability, []availability.Violation, error) {
	_, w, err := s.Window(ctx, sid, sectionID)
	if err != nil {
		return nil, nil, err
	}
	if len(slots) == 0 {
		return nil, nil, apperrors.NewValidationError("at least one time slot is required", map[string]interface{}{"time_slots": "required"})
	}
	if violations, err := w.Validate(slots); err != nil {
		return nil, violations, err
	}

	var created models.FacultyAvailability
	err = s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.SubmitAvailability(ctx, apiclient.SubmitAvailabilityRequest{
			CandidateSection: sectionID,
			Notes:            notes,
			TimeSlots:        availability.ToModel(slots),
		})
		if err != nil {
			return err
		}
		created = resp.Data
		return nil
	})
	if err != nil {
		return nil, nil, apperrors.NewMutationError(err, "failed to submit availability")
	}
	s.logger.Info().Int64("sectionID", sectionID).Int("slots", len(slots)).Msg("Availability submitted")
	return &created, nil, nil
}

// Delete removes an availability submission
func (s *AvailabilityService) Delete(ctx context.Context, sid string, id int64) error {
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		return conn.DeleteAvailability(ctx, id)
	})
	if err != nil {
		return apperrors.NewMutationError(err, "failed to delete availability")
	}
	return nil
}

// Import turns a submission into time slots of its section
func (s *AvailabilityService) Import(ctx context.Context, sid string, id int64) (*models.ImportResult, error) {
	var result models.ImportResult
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.ImportAvailability(ctx, id)
		if err != nil {
			return err
		}
		result = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewMutationError(err, "failed to import availability")
	}
	s.logger.Info().Int64("availabilityID", id).Int("created", len(result.CreatedTimeSlots)).Msg("Availability imported as time slots")
	return &result, nil
}

// Invitations lists the open availability requests of staff. Faculty only
// receive their own from the API.
func (s *AvailabilityService) Invitations(ctx context.Context, sid string, user *models.User) ([]models.AvailabilityInvitation, error) {
	if err := auth.RequireStaff(user); err != nil {
		return nil, err
	}
	var invitations []models.AvailabilityInvitation
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Invitations(ctx)
		if err != nil {
			return err
		}
		invitations = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load invitations")
	}
	return invitations, nil
}
