package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/app/models/dto"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

// Admin pages
const (
	UsersPath        = "/admin/users"
	SendFormLinkPath = "/admin/forms/send-link"
	InvitePath       = "/admin/invitations"
)

// AdminController serves user management, invitations, time slot creation
// and the storage self-test
type AdminController struct {
	admin    *services.AdminService
	schedule *services.ScheduleService
	renderer *Renderer
	loc      *time.Location
}

// NewAdminController creates a new AdminController
func NewAdminController(admin *services.AdminService, schedule *services.ScheduleService, renderer *Renderer, loc *time.Location) *AdminController {
	return &AdminController{
		admin:    admin,
		schedule: schedule,
		renderer: renderer,
		loc:      loc,
	}
}

func (c *AdminController) renderTimeSlot(ctx *gin.Context, status int, form dto.TimeSlotForm, errs map[string]string) {
	data := gin.H{
		"Title":  "Create time slot",
		"Form":   form,
		"Errors": errs,
	}
	sections, err := c.schedule.Sections(ctx.Request.Context(), sessionID(ctx), 0)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeySectionsLoadFailed, err)
	}
	data["Sections"] = sections
	c.renderer.Page(ctx, status, "timeslot.html", data)
}

// TimeSlotPage renders the time slot form, preselecting ?section=
func (c *AdminController) TimeSlotPage(ctx *gin.Context) {
	form := dto.TimeSlotForm{MaxAttendees: 1, IsVisible: true}
	if id, err := strconv.ParseInt(ctx.Query("section"), 10, 64); err == nil {
		form.CandidateSection = id
	}
	c.renderTimeSlot(ctx, http.StatusOK, form, nil)
}

// CreateTimeSlot adds a time slot to a candidate section
func (c *AdminController) CreateTimeSlot(ctx *gin.Context) {
	var form dto.TimeSlotForm
	if verrs := middleware.BindForm(ctx, &form); verrs != nil {
		c.renderTimeSlot(ctx, http.StatusBadRequest, form, verrs.Fields())
		return
	}
	req, verrs := form.ToRequest(c.loc)
	if verrs != nil {
		c.renderTimeSlot(ctx, http.StatusBadRequest, form, verrs.Fields())
		return
	}

	if _, err := c.admin.CreateTimeSlot(ctx.Request.Context(), sessionID(ctx), req); err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyTimeSlotCreateFailed, map[string]any{"Reason": Reason(err)})
		c.renderTimeSlot(ctx, FailureStatus(err), form, nil)
		return
	}
	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyTimeSlotCreated, nil)
	ctx.Redirect(http.StatusFound, "/admin/timeslots/new?section="+strconv.FormatInt(form.CandidateSection, 10))
}

// S3Page renders the storage self-test page
func (c *AdminController) S3Page(ctx *gin.Context) {
	c.renderer.Page(ctx, http.StatusOK, "s3.html", gin.H{"Title": "Storage test"})
}

// TestS3 runs the storage self-test and shows its report
func (c *AdminController) TestS3(ctx *gin.Context) {
	report, err := c.admin.TestS3(ctx.Request.Context(), sessionID(ctx))
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyS3Failed, map[string]any{"Reason": Reason(err)})
		c.renderer.Page(ctx, FailureStatus(err), "s3.html", gin.H{"Title": "Storage test"})
		return
	}
	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyS3OK, nil)
	c.renderer.Page(ctx, http.StatusOK, "s3.html", gin.H{"Title": "Storage test", "Report": report})
}

// UsersPage lists the accounts the signed-in admin may manage
func (c *AdminController) UsersPage(ctx *gin.Context) {
	data := gin.H{"Title": "Users", "Roles": models.Roles}
	users, err := c.admin.Users(ctx.Request.Context(), sessionID(ctx), middleware.State(ctx).User)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeyUsersLoadFailed, err)
	}
	data["Users"] = users
	c.renderer.Page(ctx, http.StatusOK, "users.html", data)
}

func userID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.Redirect(http.StatusFound, UsersPath)
		return 0, false
	}
	return id, true
}

// UpdateRole changes the user type of a user
func (c *AdminController) UpdateRole(ctx *gin.Context) {
	id, ok := userID(ctx)
	if !ok {
		return
	}
	var form dto.RoleForm
	if verrs := middleware.BindForm(ctx, &form); verrs != nil {
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyRoleChangeFailed, map[string]any{"Reason": auth.ErrInvalidRole.Error()})
		ctx.Redirect(http.StatusFound, UsersPath)
		return
	}

	updated, err := c.admin.UpdateRole(ctx.Request.Context(), sessionID(ctx), middleware.State(ctx).User, id, form.UserType)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyRoleChangeFailed, map[string]any{"Reason": Reason(err)})
		ctx.Redirect(http.StatusFound, UsersPath)
		return
	}
	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyRoleChanged, map[string]any{
		"Name": updated.FullName(),
		"Role": updated.UserType.Label(),
	})
	ctx.Redirect(http.StatusFound, UsersPath)
}

// DeleteUser removes an account
func (c *AdminController) DeleteUser(ctx *gin.Context) {
	id, ok := userID(ctx)
	if !ok {
		return
	}
	if err := c.admin.DeleteUser(ctx.Request.Context(), sessionID(ctx), middleware.State(ctx).User, id); err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyUserDeleteFailed, map[string]any{"Reason": Reason(err)})
		ctx.Redirect(http.StatusFound, UsersPath)
		return
	}
	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyUserDeleted, nil)
	ctx.Redirect(http.StatusFound, UsersPath)
}

func (c *AdminController) renderSendFormLink(ctx *gin.Context, status int, form dto.SendFormLinkForm, errs map[string]string) {
	data := gin.H{
		"Title":  "Send form link",
		"Form":   form,
		"Errors": errs,
	}
	forms, err := c.admin.Forms(ctx.Request.Context(), sessionID(ctx))
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeyFormsLoadFailed, err)
	}
	data["Forms"] = forms
	c.renderer.Page(ctx, status, "send_form_link.html", data)
}

// SendFormLinkPage renders the send-link form, preselecting ?form=
func (c *AdminController) SendFormLinkPage(ctx *gin.Context) {
	var form dto.SendFormLinkForm
	if id, err := strconv.ParseInt(ctx.Query("form"), 10, 64); err == nil {
		form.FormID = id
	}
	c.renderSendFormLink(ctx, http.StatusOK, form, nil)
}

// SendFormLink e-mails a candidate the link to a form
func (c *AdminController) SendFormLink(ctx *gin.Context) {
	var form dto.SendFormLinkForm
	if verrs := middleware.BindForm(ctx, &form); verrs != nil {
		c.renderSendFormLink(ctx, http.StatusBadRequest, form, verrs.Fields())
		return
	}
	req := apiclient.SendFormLinkRequest{
		CandidateEmail: form.CandidateEmail,
		FormID:         form.FormID,
		Message:        form.Message,
	}
	if err := c.admin.SendFormLink(ctx.Request.Context(), sessionID(ctx), middleware.State(ctx).User, req); err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyFormLinkFailed, map[string]any{"Reason": Reason(err)})
		c.renderSendFormLink(ctx, FailureStatus(err), form, nil)
		return
	}
	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyFormLinkSent, map[string]any{"Email": form.CandidateEmail})
	ctx.Redirect(http.StatusFound, SendFormLinkPath)
}

func (c *AdminController) renderInvite(ctx *gin.Context, status int, form dto.InviteForm, errs map[string]string) {
	data := gin.H{
		"Title":  "Invite faculty",
		"Form":   form,
		"Errors": errs,
	}
	reqCtx, sid := ctx.Request.Context(), sessionID(ctx)
	faculty, err := c.admin.Faculty(reqCtx, sid, middleware.State(ctx).User)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeyUsersLoadFailed, err)
	}
	sections, err := c.schedule.Sections(reqCtx, sid, 0)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		if _, set := data["Banner"]; !set {
			data["Banner"] = c.renderer.Banner(ctx, i18n.KeySectionsLoadFailed, err)
		}
	}
	data["Faculty"] = faculty
	data["Sections"] = sections
	c.renderer.Page(ctx, status, "invite.html", data)
}

// InvitePage renders the faculty invitation form, preselecting ?section=
func (c *AdminController) InvitePage(ctx *gin.Context) {
	form := dto.InviteForm{SendEmail: true}
	if id, err := strconv.ParseInt(ctx.Query("section"), 10, 64); err == nil {
		form.SectionIDs = []int64{id}
	}
	c.renderInvite(ctx, http.StatusOK, form, nil)
}

// Invite asks the picked faculty for availability for the picked candidates
func (c *AdminController) Invite(ctx *gin.Context) {
	var form dto.InviteForm
	if verrs := middleware.BindForm(ctx, &form); verrs != nil {
		c.renderInvite(ctx, http.StatusBadRequest, form, verrs.Fields())
		return
	}
	req := apiclient.InviteFacultyRequest{
		FacultyIDs:          form.FacultyIDs,
		CandidateSectionIDs: form.SectionIDs,
		SendEmail:           form.SendEmail,
	}
	result, err := c.admin.InviteFaculty(ctx.Request.Context(), sessionID(ctx), middleware.State(ctx).User, req)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyInviteFailed, map[string]any{"Reason": Reason(err)})
		c.renderInvite(ctx, FailureStatus(err), form, nil)
		return
	}
	c.renderer.FlashCount(ctx, repositories.FlashSuccess, i18n.KeyFacultyInvited, result.TotalInvitations)
	ctx.Redirect(http.StatusFound, InvitePath)
}
