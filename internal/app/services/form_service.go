package services

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

// AssignedForm pairs a form with the caller's latest submission, if any
type AssignedForm struct {
	Form       models.Form
	Submission *models.FormSubmission
}

// Completed reports whether the form was submitted as complete
func (a AssignedForm) Completed() bool {
	return a.Submission != nil && a.Submission.IsCompleted
}

// FormService loads and submits the questionnaires assigned to a user
type FormService struct {
	sessions *SessionService
	logger   zerolog.Logger
}

// NewFormService creates a new form service
func NewFormService(sessions *SessionService, logger zerolog.Logger) *FormService {
	return &FormService{
		sessions: sessions,
		logger:   logger.With().Str("component", "forms").Logger(),
	}
}

// Assigned lists the active forms of the session user with their submissions
func (s *FormService) Assigned(ctx context.Context, sid string) ([]AssignedForm, error) {
	var (
		forms       []models.Form
		submissions []models.FormSubmission
	)
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Forms(ctx)
		if err != nil {
			return err
		}
		forms = resp.Data
		subs, err := conn.FormSubmissions(ctx, 0)
		if err != nil {
			return err
		}
		submissions = subs.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load forms")
	}

	latest := latestSubmissions(submissions)
	out := make([]AssignedForm, 0, len(forms))
	for _, f := range forms {
		if !f.IsActive {
			continue
		}
		out = append(out, AssignedForm{Form: f, Submission: latest[f.ID]})
	}
	return out, nil
}

// Form loads one form, its fields in display order, and the caller's latest submission
func (s *FormService) Form(ctx context.Context, sid string, id int64) (*AssignedForm, error) {
	var (
		form        models.Form
		submissions []models.FormSubmission
	)
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Form(ctx, id)
		if err != nil {
			return err
		}
		form = resp.Data
		subs, err := conn.FormSubmissions(ctx, id)
		if err != nil {
			return err
		}
		submissions = subs.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load form")
	}
	sort.SliceStable(form.FormFields, func(i, j int) bool {
		return form.FormFields[i].Order < form.FormFields[j].Order
	})
	return &AssignedForm{Form: form, Submission: latestSubmissions(submissions)[id]}, nil
}

// Submit validates the answers against the form and sends them as a completed submission
func (s *FormService) Submit(ctx context.Context, sid string, form *models.Form, answers map[string]interface{}) (*models.FormSubmission, error) {
	if problems := form.ValidateAnswers(answers); len(problems) > 0 {
		details := make(map[string]interface{}, len(problems))
		for k, v := range problems {
			details[k] = v
		}
		return nil, apperrors.NewValidationError("some answers are missing or invalid", details)
	}

	var submission models.FormSubmission
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.SubmitForm(ctx, apiclient.SubmitFormRequest{
			Form:        form.ID,
			Answers:     answers,
			IsCompleted: true,
		})
		if err != nil {
			return err
		}
		submission = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewMutationError(err, "failed to submit form")
	}
	s.logger.Info().Int64("formID", form.ID).Int64("submissionID", submission.ID).Msg("Form submitted")
	return &submission, nil
}

// latestSubmissions keeps the most recent submission per form
func latestSubmissions(subs []models.FormSubmission) map[int64]*models.FormSubmission {
	out := make(map[int64]*models.FormSubmission, len(subs))
	for i := range subs {
		sub := &subs[i]
		prev, ok := out[sub.Form]
		if !ok || newer(sub, prev) {
			out[sub.Form] = sub
		}
	}
	return out
}

func newer(a, b *models.FormSubmission) bool {
	switch {
	case a.SubmittedAt != nil && b.SubmittedAt != nil:
		return a.SubmittedAt.After(*b.SubmittedAt)
	case a.SubmittedAt != nil:
		return true
	case b.SubmittedAt != nil:
		return false
	}
	return a.ID > b.ID
}
