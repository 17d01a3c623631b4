package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/helpers"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

// Setup page paths
const (
	RoomSetupPath      = "/setup/room"
	CandidateSetupPath = "/setup/candidate"
)

// DashboardController serves the landing pages: staff dashboard, candidate
// forms, and the season overview
type DashboardController struct {
	sessions     *services.SessionService
	schedule     *services.ScheduleService
	availability *services.AvailabilityService
	forms        *services.FormService
	exports      *services.ExportService
	renderer     *Renderer
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(sessions *services.SessionService, schedule *services.ScheduleService, availability *services.AvailabilityService, forms *services.FormService, exports *services.ExportService, renderer *Renderer) *DashboardController {
	return &DashboardController{
		sessions:     sessions,
		schedule:     schedule,
		availability: availability,
		forms:        forms,
		exports:      exports,
		renderer:     renderer,
	}
}

// promptSetup redirects once per session into the setup flow
func (c *DashboardController) promptSetup(ctx *gin.Context, needed bool, path string) bool {
	state := middleware.State(ctx)
	if !needed || state.SetupPrompted {
		return false
	}
	if err := c.sessions.MarkSetupPrompted(ctx.Request.Context(), state.SessionID); err != nil {
		_ = ctx.Error(err)
		return false
	}
	ctx.Redirect(http.StatusFound, path)
	return true
}

// Dashboard lists the seasons for staff with their open availability
// requests, meeting registrations and assigned forms
func (c *DashboardController) Dashboard(ctx *gin.Context) {
	state := middleware.State(ctx)
	if c.promptSetup(ctx, state.NeedsRoomSetup(), RoomSetupPath) {
		return
	}
	reqCtx := ctx.Request.Context()

	data := gin.H{"Title": "Dashboard"}
	seasons, err := c.schedule.Seasons(reqCtx, state.SessionID)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeySeasonsLoadFailed, err)
	}
	data["Seasons"] = seasons

	// The first failure owns the banner
	secondary := []struct {
		key  string
		name string
		load func() (interface{}, error)
	}{
		{i18n.KeyInvitationsLoadFailed, "Invitations", func() (interface{}, error) {
			if !state.User.IsFaculty() && !state.User.IsAdmin() {
				return nil, nil
			}
			return c.availability.Invitations(reqCtx, state.SessionID, state.User)
		}},
		{i18n.KeyRegistrationsLoadFailed, "Registrations", func() (interface{}, error) {
			return c.schedule.MyRegistrations(reqCtx, state.SessionID)
		}},
		{i18n.KeyFormsLoadFailed, "Forms", func() (interface{}, error) {
			return c.forms.Assigned(reqCtx, state.SessionID)
		}},
	}
	for _, panel := range secondary {
		v, err := panel.load()
		if err != nil {
			if c.renderer.AuthFailed(ctx, err) {
				return
			}
			if _, set := data["Banner"]; !set {
				data["Banner"] = c.renderer.Banner(ctx, panel.key, err)
			}
			continue
		}
		data[panel.name] = v
	}
	c.renderer.Page(ctx, http.StatusOK, "dashboard.html", data)
}

// Forms is the candidate landing page with their visit and assigned forms
func (c *DashboardController) Forms(ctx *gin.Context) {
	state := middleware.State(ctx)
	if c.promptSetup(ctx, state.NeedsCandidateSetup(), CandidateSetupPath) {
		return
	}

	data := gin.H{
		"Title":        "My visit",
		"EmailEnabled": c.exports.EmailEnabled(),
		"DocsEnabled":  c.exports.GoogleDocsEnabled(),
	}
	sections, err := c.schedule.MySections(ctx.Request.Context(), state.SessionID, state.User.ID)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeySectionsLoadFailed, err)
	}
	data["Sections"] = sections

	assigned, err := c.forms.Assigned(ctx.Request.Context(), state.SessionID)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		if _, set := data["Banner"]; !set {
			data["Banner"] = c.renderer.Banner(ctx, i18n.KeyFormsLoadFailed, err)
		}
	}
	data["Forms"] = assigned
	c.renderer.Page(ctx, http.StatusOK, "forms.html", data)
}

// Season shows the candidate sections of a season
func (c *DashboardController) Season(ctx *gin.Context) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		c.renderer.Page(ctx, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
		return
	}
	sid := sessionID(ctx)

	data := gin.H{
		"Title":        "Season",
		"EmailEnabled": c.exports.EmailEnabled(),
		"DocsEnabled":  c.exports.GoogleDocsEnabled(),
	}
	season, err := c.schedule.Season(ctx.Request.Context(), sid, id)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeySeasonsLoadFailed, err)
		c.renderer.Page(ctx, http.StatusOK, "season.html", data)
		return
	}
	data["Season"] = season
	data["Title"] = season.Title

	var sections []models.CandidateSection
	sections, err = c.schedule.Sections(ctx.Request.Context(), sid, id)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeySectionsLoadFailed, err)
	}
	data["Sections"] = sections
	c.renderer.Page(ctx, http.StatusOK, "season.html", data)
}

// Unauthorized is shown when the role requirement of a page is not met
func (c *DashboardController) Unauthorized(ctx *gin.Context) {
	c.renderer.Page(ctx, http.StatusForbidden, "unauthorized.html", gin.H{"Title": "Unauthorized"})
}

// Home sends the browser to its landing page
func (c *DashboardController) Home(ctx *gin.Context) {
	state := middleware.State(ctx)
	switch {
	case !state.Authenticated():
		ctx.Redirect(http.StatusFound, auth.LoginPath)
	case state.User.IsCandidate():
		ctx.Redirect(http.StatusFound, auth.FormsPath)
	default:
		ctx.Redirect(http.StatusFound, auth.DashboardPath)
	}
}

// NotFound renders the catch-all page
func (c *DashboardController) NotFound(ctx *gin.Context) {
	c.renderer.Page(ctx, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
}
