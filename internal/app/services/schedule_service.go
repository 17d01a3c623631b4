package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/app/calendar"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

// ScheduleService reads seasons and candidate sections and registers the
// session user for time slots
type ScheduleService struct {
	sessions *SessionService
	logger   zerolog.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(sessions *SessionService, logger zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		sessions: sessions,
		logger:   logger.With().Str("component", "schedule").Logger(),
	}
}

// Seasons lists all seasons
func (s *ScheduleService) Seasons(ctx context.Context, sid string) ([]models.Season, error) {
	var seasons []models.Season
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Seasons(ctx)
		if err != nil {
			return err
		}
		seasons = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load seasons")
	}
	return seasons, nil
}

// Season fetches one season
func (s *ScheduleService) Season(ctx context.Context, sid string, id int64) (*models.Season, error) {
	var season models.Season
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Season(ctx, id)
		if err != nil {
			return err
		}
		season = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load season")
	}
	return &season, nil
}

// Sections lists the candidate sections of a season; seasonID 0 lists all visible sections
func (s *ScheduleService) Sections(ctx context.Context, sid string, seasonID int64) ([]models.CandidateSection, error) {
	var sections []models.CandidateSection
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.CandidateSections(ctx, seasonID)
		if err != nil {
			return err
		}
		sections = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load candidate sections")
	}
	return sections, nil
}

// Section fetches one candidate section with its time slots
func (s *ScheduleService) Section(ctx context.Context, sid string, id int64) (*models.CandidateSection, error) {
	var section models.CandidateSection
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.CandidateSection(ctx, id)
		if err != nil {
			return err
		}
		section = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load candidate section")
	}
	return &section, nil
}

// MySections lists the sections that belong to the given candidate across all seasons
func (s *ScheduleService) MySections(ctx context.Context, sid string, candidateID int64) ([]models.CandidateSection, error) {
	all, err := s.Sections(ctx, sid, 0)
	if err != nil {
		return nil, err
	}
	mine := make([]models.CandidateSection, 0, len(all))
	for _, section := range all {
		if section.Candidate.ID == candidateID {
			mine = append(mine, section)
		}
	}
	return mine, nil
}

// Events derives the calendar events of a season for the given user
func (s *ScheduleService) Events(ctx context.Context, sid string, seasonID, userID int64) ([]calendar.Event, error) {
	sections, err := s.Sections(ctx, sid, seasonID)
	if err != nil {
		return nil, err
	}
	return calendar.Derive(sections, userID), nil
}

// Register registers the session user for a time slot
func (s *ScheduleService) Register(ctx context.Context, sid string, slotID int64) error {
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		_, err := conn.RegisterForSlot(ctx, slotID)
		return err
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("slotID", slotID).Msg("Slot registration rejected")
		return apperrors.NewMutationError(err, "failed to register for time slot")
	}
	s.logger.Info().Int64("slotID", slotID).Msg("Registered for time slot")
	return nil
}

// Unregister removes the session user from a time slot
func (s *ScheduleService) Unregister(ctx context.Context, sid string, slotID int64) error {
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		return conn.UnregisterFromSlot(ctx, slotID)
	})
	if err != nil {
		s.logger.Warn().Err(err).Int64("slotID", slotID).Msg("Slot unregistration rejected")
		return apperrors.NewMutationError(err, "failed to unregister from time slot")
	}
	s.logger.Info().Int64("slotID", slotID).Msg("Unregistered from time slot")
	return nil
}

// Dialog returns a confirmation dialog whose actions act on behalf of sid
func (s *ScheduleService) Dialog(sid string) *calendar.Dialog {
	return calendar.NewDialog(
		func(ctx context.Context, slotID int64) error { return s.Register(ctx, sid, slotID) },
		func(ctx context.Context, slotID int64) error { return s.Unregister(ctx, sid, slotID) },
	)
}

// MyRegistrations lists the attendee records of the session user
func (s *ScheduleService) MyRegistrations(ctx context.Context, sid string) ([]models.Attendee, error) {
	var regs []models.Attendee
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.MyRegistrations(ctx)
		if err != nil {
			return err
		}
		regs = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load registrations")
	}
	return regs, nil
}

// MeetableFaculty lists faculty who accept meeting requests from candidates
func (s *ScheduleService) MeetableFaculty(ctx context.Context, sid string) ([]models.User, error) {
	var users []models.User
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Users(ctx)
		if err != nil {
			return err
		}
		users = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load faculty")
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.IsFaculty() && u.AvailableForMeetings {
			out = append(out, u)
		}
	}
	return out, nil
}
