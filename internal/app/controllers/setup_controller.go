package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/app/models/dto"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

// SetupController serves the first-login setup forms
type SetupController struct {
	sessions *services.SessionService
	schedule *services.ScheduleService
	renderer *Renderer
}

// NewSetupController creates a new SetupController
func NewSetupController(sessions *services.SessionService, schedule *services.ScheduleService, renderer *Renderer) *SetupController {
	return &SetupController{
		sessions: sessions,
		schedule: schedule,
		renderer: renderer,
	}
}

// RoomPage asks staff for their office
func (c *SetupController) RoomPage(ctx *gin.Context) {
	user := middleware.State(ctx).User
	c.renderer.Page(ctx, http.StatusOK, "setup_room.html", gin.H{
		"Title": "Room setup",
		"Form":  dto.RoomSetupForm{RoomNumber: user.Room()},
	})
}

// Room stores the office and refreshes the identity
func (c *SetupController) Room(ctx *gin.Context) {
	var form dto.RoomSetupForm
	if verrs := middleware.BindForm(ctx, &form); verrs != nil {
		c.renderer.Page(ctx, http.StatusBadRequest, "setup_room.html", gin.H{
			"Title":  "Room setup",
			"Form":   form,
			"Errors": verrs.Fields(),
		})
		return
	}

	if _, err := c.sessions.CompleteRoomSetup(ctx.Request.Context(), sessionID(ctx), form.RoomNumber); err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeySetupFailed, map[string]any{"Reason": Reason(err)})
		c.renderer.Page(ctx, FailureStatus(err), "setup_room.html", gin.H{"Title": "Room setup", "Form": form})
		return
	}
	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeySetupRoomSaved, nil)
	ctx.Redirect(http.StatusFound, auth.DashboardPath)
}

// CandidatePage asks a candidate for their visit profile
func (c *SetupController) CandidatePage(ctx *gin.Context) {
	c.renderCandidate(ctx, http.StatusOK, dto.CandidateSetupForm{}, nil)
}

func (c *SetupController) renderCandidate(ctx *gin.Context, status int, form dto.CandidateSetupForm, errs map[string]string) {
	data := gin.H{
		"Title":             "Welcome",
		"Form":              form,
		"Errors":            errs,
		"TravelChoices":     models.TravelAssistanceChoices,
		"GenderChoices":     models.GenderChoices,
		"PermissionChoices": models.PermissionChoices,
		"TourChoices":       models.TourChoices,
	}
	faculty, err := c.schedule.MeetableFaculty(ctx.Request.Context(), sessionID(ctx))
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeyFacultyLoadFailed, err)
	}
	data["Faculty"] = faculty
	c.renderer.Page(ctx, status, "setup_candidate.html", data)
}

// headshot reads the optional photo of the setup form
func headshot(ctx *gin.Context) (*apiclient.File, error) {
	fh, err := ctx.FormFile("headshot")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	return &apiclient.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}, nil
}

// Candidate saves the candidate profile and headshot, then refreshes the identity
func (c *SetupController) Candidate(ctx *gin.Context) {
	var form dto.CandidateSetupForm
	if verrs := middleware.BindForm(ctx, &form); verrs != nil {
		c.renderCandidate(ctx, http.StatusBadRequest, form, verrs.Fields())
		return
	}
	profile, verrs := form.ToProfile()
	if verrs != nil {
		c.renderCandidate(ctx, http.StatusBadRequest, form, verrs.Fields())
		return
	}
	photo, err := headshot(ctx)
	if err != nil {
		c.renderCandidate(ctx, http.StatusBadRequest, form, map[string]string{"Headshot": "the headshot could not be read"})
		return
	}
	if photo != nil {
		if closer, ok := photo.Reader.(io.Closer); ok {
			defer closer.Close()
		}
	}

	if _, err := c.sessions.CompleteCandidateSetup(ctx.Request.Context(), sessionID(ctx), profile, photo); err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		if apperrors.CategoryOf(err) == apperrors.CategoryValidation {
			c.renderCandidate(ctx, http.StatusBadRequest, form, map[string]string{"Headshot": Reason(err)})
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeySetupFailed, map[string]any{"Reason": Reason(err)})
		c.renderCandidate(ctx, FailureStatus(err), form, nil)
		return
	}
	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeySetupCandidateSaved, nil)
	ctx.Redirect(http.StatusFound, auth.FormsPath)
}
