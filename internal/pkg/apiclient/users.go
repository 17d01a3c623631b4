package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/yigit/visitportal/internal/app/models"
)

// RegisterUserRequest is the payload of POST /users/register/
type RegisterUserRequest struct {
	Email             string      `json:"email"`
	Username          string      `json:"username"`
	FirstName         string      `json:"first_name"`
	LastName          string      `json:"last_name"`
	UserType          models.Role `json:"user_type"`
	RoomNumber        string      `json:"room_number,omitempty"`
	HasCompletedSetup bool        `json:"has_completed_setup"`
	Password          string      `json:"password"`
}

// CandidateSetupResponse is the answer of POST /users/complete_candidate_setup/
type CandidateSetupResponse struct {
	Message string                  `json:"message"`
	Profile models.CandidateProfile `json:"profile"`
}

// HeadshotResponse is the answer of POST /users/upload_headshot/
type HeadshotResponse struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// SendFormLinkRequest is the payload of POST /users/send-form-link/
type SendFormLinkRequest struct {
	CandidateEmail string `json:"candidate_email"`
	FormID         int64  `json:"form_id"`
	Message        string `json:"message,omitempty"`
}

// MessageResponse is the {"message": ...} answer of action endpoints
type MessageResponse struct {
	Message string `json:"message"`
}

// Me returns the identity bound to the session's upstream cookies
func (s *Conn) Me(ctx context.Context) (*Response[models.User], error) {
	return call[models.User](ctx, s, http.MethodGet, "/users/me/", nil, nil)
}

// GoogleLogin exchanges an OAuth ID token credential for an upstream session
func (s *Conn) GoogleLogin(ctx context.Context, credential string) (*Response[models.User], error) {
	body := map[string]string{"credential": credential}
	return call[models.User](ctx, s, http.MethodPost, "/users/google_login/", nil, body)
}

// Logout ends the upstream session
func (s *Conn) Logout(ctx context.Context) error {
	_, err := call[struct{}](ctx, s, http.MethodPost, "/users/logout/", nil, struct{}{})
	return err
}

// Register creates a user. Only admins may call it.
func (s *Conn) Register(ctx context.Context, req RegisterUserRequest) (*Response[models.User], error) {
	if req.Username == "" {
		req.Username = req.Email
	}
	return call[models.User](ctx, s, http.MethodPost, "/users/register/", nil, req)
}

// CompleteRoomSetup stores the room number of a staff user
func (s *Conn) CompleteRoomSetup(ctx context.Context, roomNumber string) (*Response[models.User], error) {
	body := map[string]string{"room_number": roomNumber}
	return call[models.User](ctx, s, http.MethodPost, "/users/complete_room_setup/", nil, body)
}

// CompleteCandidateSetup saves the candidate profile and marks setup as done
func (s *Conn) CompleteCandidateSetup(ctx context.Context, profile models.CandidateProfile) (*Response[CandidateSetupResponse], error) {
	return call[CandidateSetupResponse](ctx, s, http.MethodPost, "/users/complete_candidate_setup/", nil, profile)
}

// UploadHeadshot stores the candidate's photo
func (s *Conn) UploadHeadshot(ctx context.Context, file File) (*Response[HeadshotResponse], error) {
	return upload[HeadshotResponse](ctx, s, "/users/upload_headshot/", "headshot", file)
}

// Users lists the users visible to the caller
func (s *Conn) Users(ctx context.Context) (*Response[[]models.User], error) {
	return call[[]models.User](ctx, s, http.MethodGet, "/users/", nil, nil)
}

// UpdateRole changes the user type of a user. Only superadmins may call it.
func (s *Conn) UpdateRole(ctx context.Context, userID int64, role models.Role) (*Response[models.User], error) {
	body := map[string]models.Role{"user_type": role}
	return call[models.User](ctx, s, http.MethodPatch, fmt.Sprintf("/users/%d/update_role/", userID), nil, body)
}

// DeleteUser removes a user account. Only superadmins may call it.
func (s *Conn) DeleteUser(ctx context.Context, userID int64) error {
	_, err := call[struct{}](ctx, s, http.MethodDelete, fmt.Sprintf("/users/%d/", userID), nil, nil)
	return err
}

// SendFormLink e-mails a candidate a sign-in link that opens a form
func (s *Conn) SendFormLink(ctx context.Context, req SendFormLinkRequest) (*Response[MessageResponse], error) {
	return call[MessageResponse](ctx, s, http.MethodPost, "/users/send-form-link/", nil, req)
}

// TestS3 runs the storage self-test and returns its raw report
func (s *Conn) TestS3(ctx context.Context) (*Response[map[string]interface{}], error) {
	return call[map[string]interface{}](ctx, s, http.MethodPost, "/users/test_s3/", nil, struct{}{})
}
