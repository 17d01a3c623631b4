package services

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
)

// AdminService handles admin-only operations
type AdminService struct {
	sessions *SessionService
	logger   zerolog.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(sessions *SessionService, logger zerolog.Logger) *AdminService {
	return &AdminService{
		sessions: sessions,
		logger:   logger.With().Str("component", "admin").Logger(),
	}
}

// CreateTimeSlot adds a meeting slot to a candidate section
func (s *AdminService) CreateTimeSlot(ctx context.Context, sid string, req apiclient.CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if req.EndTime != nil && req.EndTime.Before(req.StartTime) {
		return nil, apperrors.NewValidationError("end time must not be before start time", map[string]interface{}{"end_time": "before start"})
	}
	var slot models.TimeSlot
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.CreateTimeSlot(ctx, req)
		if err != nil {
			return err
		}
		slot = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewMutationError(err, "failed to create time slot")
	}
	s.logger.Info().Int64("sectionID", req.CandidateSection).Int64("slotID", slot.ID).Msg("Time slot created")
	return &slot, nil
}

// TestS3 runs the storage self-test of the API
func (s *AdminService) TestS3(ctx context.Context, sid string) (map[string]interface{}, error) {
	var report map[string]interface{}
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.TestS3(ctx)
		if err != nil {
			return err
		}
		report = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewMutationError(err, "S3 self-test failed")
	}
	return report, nil
}

// Users lists the accounts actor may see
func (s *AdminService) Users(ctx context.Context, sid string, actor *models.User) ([]models.User, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
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
		return nil, apperrors.NewFetchError(err, "failed to load users")
	}
	return auth.VisibleUsers(actor, users), nil
}

// Faculty lists the faculty accounts, for invitation pickers
func (s *AdminService) Faculty(ctx context.Context, sid string, actor *models.User) ([]models.User, error) {
	users, err := s.Users(ctx, sid, actor)
	if err != nil {
		return nil, err
	}
	out := users[:0]
	for _, u := range users {
		if u.IsFaculty() {
			out = append(out, u)
		}
	}
	return out, nil
}

// findUser returns the user with id and the number of superadmins in users
func findUser(users []models.User, id int64) (*models.User, int) {
	var (
		target      *models.User
		superadmins int
	)
	for i := range users {
		if users[i].IsSuperAdmin() {
			superadmins++
		}
		if users[i].ID == id {
			target = &users[i]
		}
	}
	return target, superadmins
}

// UpdateRole changes the user type of targetID. Changing one's own role
// refreshes the cached identity right away.
func (s *AdminService) UpdateRole(ctx context.Context, sid string, actor *models.User, targetID int64, role string) (*models.User, error) {
	var updated models.User
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Users(ctx)
		if err != nil {
			return err
		}
		target, superadmins := findUser(resp.Data, targetID)
		if target == nil {
			return apperrors.NewResourceNotFoundError("user not found")
		}
		to, err := auth.CanChangeRole(actor, target, role, superadmins)
		if err != nil {
			return err
		}
		changed, err := conn.UpdateRole(ctx, targetID, to)
		if err != nil {
			return err
		}
		updated = changed.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewMutationError(err, "failed to change role")
	}
	s.logger.Info().Int64("actorID", actor.ID).Int64("userID", targetID).Str("role", string(updated.UserType)).Msg("User role changed")

	if actor.ID == targetID {
		if _, err := s.sessions.refreshWith(ctx, sid, func(*apiclient.Conn) error { return nil }); err != nil {
			s.logger.Warn().Err(err).Str("sessionID", sid).Msg("Failed to refresh identity after own role change")
		}
	}
	return &updated, nil
}

// DeleteUser removes the account targetID
func (s *AdminService) DeleteUser(ctx context.Context, sid string, actor *models.User, targetID int64) error {
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Users(ctx)
		if err != nil {
			return err
		}
		target, _ := findUser(resp.Data, targetID)
		if target == nil {
			return apperrors.NewResourceNotFoundError("user not found")
		}
		if err := auth.CanDeleteUser(actor, target); err != nil {
			return err
		}
		return conn.DeleteUser(ctx, targetID)
	})
	if err != nil {
		return apperrors.NewMutationError(err, "failed to delete user")
	}
	s.logger.Info().Int64("actorID", actor.ID).Int64("userID", targetID).Msg("User deleted")
	return nil
}

// Forms lists every form, for the send-link picker
func (s *AdminService) Forms(ctx context.Context, sid string) ([]models.Form, error) {
	var forms []models.Form
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.Forms(ctx)
		if err != nil {
			return err
		}
		forms = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewFetchError(err, "failed to load forms")
	}
	return forms, nil
}

// SendFormLink emails a candidate the sign-in link of a form
func (s *AdminService) SendFormLink(ctx context.Context, sid string, actor *models.User, req apiclient.SendFormLinkRequest) error {
	if err := auth.RequireAdmin(actor); err != nil {
		return apperrors.NewMutationError(err, "failed to send form link")
	}
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		_, err := conn.SendFormLink(ctx, req)
		return err
	})
	if err != nil {
		return apperrors.NewMutationError(err, "failed to send form link")
	}
	s.logger.Info().Int64("formID", req.FormID).Msg("Form link sent")
	return nil
}

// InviteFaculty asks faculty members for their availability for candidate sections
func (s *AdminService) InviteFaculty(ctx context.Context, sid string, actor *models.User, req apiclient.InviteFacultyRequest) (*models.InviteResult, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, apperrors.NewMutationError(err, "failed to send invitations")
	}
	if len(req.FacultyIDs) == 0 || len(req.CandidateSectionIDs) == 0 {
		return nil, apperrors.NewValidationError("pick at least one faculty member and one candidate", map[string]interface{}{
			"faculty_ids":           len(req.FacultyIDs),
			"candidate_section_ids": len(req.CandidateSectionIDs),
		})
	}
	var result models.InviteResult
	err := s.sessions.Do(ctx, sid, func(conn *apiclient.Conn) error {
		resp, err := conn.InviteFaculty(ctx, req)
		if err != nil {
			return err
		}
		result = resp.Data
		return nil
	})
	if err != nil {
		return nil, apperrors.NewMutationError(err, "failed to send invitations")
	}
	s.logger.Info().Int("invitations", result.TotalInvitations).Bool("email", req.SendEmail).Msg("Faculty invited")
	return &result, nil
}
