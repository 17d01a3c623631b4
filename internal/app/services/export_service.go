package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/pkg/apperrors"
	"github.com/yigit/visitportal/internal/pkg/email"
	"github.com/yigit/visitportal/internal/pkg/export"
)

// ExportService builds candidate itineraries and ships them as a download,
// a Google Doc or an e-mail
type ExportService struct {
	schedule *ScheduleService
	docs     *export.GoogleDocsExporter
	mailer   email.EmailService
	loc      *time.Location
	logger   zerolog.Logger
}

// NewExportService creates a new export service
func NewExportService(schedule *ScheduleService, docs *export.GoogleDocsExporter, mailer email.EmailService, loc *time.Location, logger zerolog.Logger) *ExportService {
	return &ExportService{
		schedule: schedule,
		docs:     docs,
		mailer:   mailer,
		loc:      loc,
		logger:   logger.With().Str("component", "export").Logger(),
	}
}

// Itinerary loads a section together with its season and builds the itinerary
func (s *ExportService) Itinerary(ctx context.Context, sid string, sectionID int64) (*export.Itinerary, error) {
	section, err := s.schedule.Section(ctx, sid, sectionID)
	if err != nil {
		return nil, err
	}
	season, err := s.schedule.Season(ctx, sid, section.Season)
	if err != nil {
		return nil, err
	}
	return export.NewItinerary(*season, *section, s.loc), nil
}

// GoogleDocsEnabled reports whether Google Docs export is configured
func (s *ExportService) GoogleDocsEnabled() bool {
	return s.docs != nil && s.docs.Enabled()
}

// EmailEnabled reports whether itinerary mail is configured
func (s *ExportService) EmailEnabled() bool {
	return s.mailer != nil && s.mailer.Enabled()
}

// GoogleDoc exports the itinerary of a section and returns the document URL
func (s *ExportService) GoogleDoc(ctx context.Context, sid string, sectionID int64) (string, error) {
	if !s.GoogleDocsEnabled() {
		return "", apperrors.NewMutationError(export.ErrGoogleNotConfigured, "Google Docs export is not configured")
	}
	it, err := s.Itinerary(ctx, sid, sectionID)
	if err != nil {
		return "", err
	}
	url, err := s.docs.Export(ctx, it)
	if err != nil {
		s.logger.Error().Err(err).Int64("sectionID", sectionID).Msg("Google Docs export failed")
		return "", apperrors.NewMutationError(err, "failed to export itinerary to Google Docs")
	}
	return url, nil
}

// Email sends the itinerary of a section to its candidate and returns the recipient
func (s *ExportService) Email(ctx context.Context, sid string, sectionID int64) (string, error) {
	if !s.EmailEnabled() {
		return "", apperrors.NewMutationError(email.ErrNotConfigured, "itinerary e-mail is not configured")
	}
	section, err := s.schedule.Section(ctx, sid, sectionID)
	if err != nil {
		return "", err
	}
	season, err := s.schedule.Season(ctx, sid, section.Season)
	if err != nil {
		return "", err
	}
	it := export.NewItinerary(*season, *section, s.loc)
	to := section.Candidate.Email
	if err := s.mailer.SendItinerary(ctx, to, section.Candidate.FullName(), it); err != nil {
		return "", apperrors.NewMutationError(err, "failed to e-mail itinerary")
	}
	return to, nil
}
