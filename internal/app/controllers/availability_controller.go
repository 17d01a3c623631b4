package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/availability"
	"github.com/yigit/visitportal/internal/app/models/dto"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/helpers"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

// AvailabilityController serves the faculty availability form of a candidate section
type AvailabilityController struct {
	availability *services.AvailabilityService
	renderer     *Renderer
	loc          *time.Location
}

// NewAvailabilityController creates a new AvailabilityController
func NewAvailabilityController(availability *services.AvailabilityService, renderer *Renderer, loc *time.Location) *AvailabilityController {
	return &AvailabilityController{
		availability: availability,
		renderer:     renderer,
		loc:          loc,
	}
}

func availabilityPath(sectionID int64) string {
	return fmt.Sprintf("/sections/%d/availability", sectionID)
}

// row is a staged slot as shown in the form
type row struct {
	Start string
	End   string
}

func (c *AvailabilityController) rows(slots []availability.Slot) []row {
	out := make([]row, 0, len(slots))
	for _, s := range slots {
		out = append(out, row{
			Start: dto.FormatDateTimeLocal(s.Start, c.loc),
			End:   dto.FormatDateTimeLocal(s.End, c.loc),
		})
	}
	return out
}

// render loads the section, its window and the existing submissions, then
// renders the form with the given staged slots
func (c *AvailabilityController) render(ctx *gin.Context, status int, sectionID int64, staged []availability.Slot, notes string, extra gin.H) {
	sid := sessionID(ctx)
	data := gin.H{
		"Title":     "Availability",
		"SectionID": sectionID,
		"Notes":     notes,
		"CheckURL":  availabilityPath(sectionID) + "/check",
		"Floor":     "",
		"Ceil":      "",
	}
	for k, v := range extra {
		data[k] = v
	}

	section, window, err := c.availability.Window(ctx.Request.Context(), sid, sectionID)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeySectionsLoadFailed, err)
		c.renderer.Page(ctx, status, "availability.html", data)
		return
	}
	data["Section"] = section
	data["Title"] = "Availability for " + section.Candidate.FullName()
	if floor := window.Floor(); !floor.IsZero() {
		data["Floor"] = dto.FormatDateTimeLocal(&floor, c.loc)
	}
	if ceil := window.Ceil(); !ceil.IsZero() {
		data["Ceil"] = dto.FormatDateTimeLocal(&ceil, c.loc)
	}

	if len(staged) == 0 {
		staged = []availability.Slot{c.availability.DefaultSlot(window)}
	}
	data["Rows"] = c.rows(staged)
	data["DefaultRow"] = c.rows([]availability.Slot{c.availability.DefaultSlot(window)})[0]

	submissions, err := c.availability.List(ctx.Request.Context(), sid, sectionID)
	if err != nil {
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeyAvailabilityLoadFailed, err)
	}
	data["Submissions"] = submissions
	c.renderer.Page(ctx, status, "availability.html", data)
}

// Page renders the availability form with one default slot
func (c *AvailabilityController) Page(ctx *gin.Context) {
	sectionID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		c.renderer.Page(ctx, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
		return
	}
	c.render(ctx, http.StatusOK, sectionID, nil, "", nil)
}

// Check returns non-blocking warnings for the staged slots
// @Summary Check staged availability slots
// @Description Validates each staged slot against the candidate's visit window without submitting anything
// @Tags availability
// @Accept json
// @Produce json
// @Param id path int true "Candidate section ID"
// @Param request body dto.AvailabilityCheckRequest true "Staged slots"
// @Success 200 {object} dto.APIResponse{data=dto.AvailabilityCheckResponse} "Warnings"
// @Failure 400 {object} dto.ErrorResponse "Malformed slots"
// @Failure 401 {object} dto.ErrorResponse "No signed-in user"
// @Router /sections/{id}/availability/check [post]
func (c *AvailabilityController) Check(ctx *gin.Context) {
	sectionID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	var req dto.AvailabilityCheckRequest
	if !middleware.ValidateJSON(ctx, &req) {
		return
	}
	slots, verrs := dto.ParseSlots(req.Slots, c.loc)
	if verrs != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid time slots").WithDetails(verrs.Errors)
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	violations, err := c.availability.Check(ctx.Request.Context(), sessionID(ctx), sectionID, slots)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if violations == nil {
		violations = []availability.Violation{}
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(dto.AvailabilityCheckResponse{
		Valid:      len(violations) == 0,
		Violations: violations,
	}, ""))
}

// Submit validates the staged slots and forwards them. Any violation blocks
// the submission and re-renders the form with the errors.
func (c *AvailabilityController) Submit(ctx *gin.Context) {
	sectionID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		c.renderer.Page(ctx, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
		return
	}

	var form dto.AvailabilityForm
	if verrs := middleware.BindForm(ctx, &form); verrs != nil {
		c.render(ctx, http.StatusBadRequest, sectionID, nil, form.Notes, gin.H{"Errors": verrs.Errors})
		return
	}
	slots, verrs := form.Slots(c.loc)
	if verrs != nil {
		c.render(ctx, http.StatusBadRequest, sectionID, slots, form.Notes, gin.H{"Errors": verrs.Errors})
		return
	}

	_, violations, err := c.availability.Submit(ctx.Request.Context(), sessionID(ctx), sectionID, form.Notes, slots)
	switch {
	case errors.Is(err, availability.ErrInvalidSlots):
		c.renderer.FlashCount(ctx, repositories.FlashError, i18n.KeyAvailabilityInvalid, countRows(violations))
		c.render(ctx, http.StatusUnprocessableEntity, sectionID, slots, form.Notes, gin.H{"Violations": violations})
		return
	case err != nil:
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyAvailabilitySubmitFailed, map[string]any{"Reason": Reason(err)})
		c.render(ctx, FailureStatus(err), sectionID, slots, form.Notes, nil)
		return
	}

	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyAvailabilitySubmitted, nil)
	ctx.Redirect(http.StatusFound, availabilityPath(sectionID))
}

func countRows(violations []availability.Violation) int {
	seen := make(map[int]struct{}, len(violations))
	for _, v := range violations {
		seen[v.Index] = struct{}{}
	}
	return len(seen)
}

func (c *AvailabilityController) sectionFromForm(ctx *gin.Context) string {
	if id, err := strconv.ParseInt(ctx.PostForm("section_id"), 10, 64); err == nil && id > 0 {
		return availabilityPath(id)
	}
	return "/dashboard"
}

// Delete removes a submission and returns to the form
func (c *AvailabilityController) Delete(ctx *gin.Context) {
	back := c.sectionFromForm(ctx)
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		ctx.Redirect(http.StatusFound, back)
		return
	}

	if err := c.availability.Delete(ctx.Request.Context(), sessionID(ctx), id); err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyAvailabilityDeleteFailed, map[string]any{"Reason": Reason(err)})
	} else {
		c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyAvailabilityDeleted, nil)
	}
	ctx.Redirect(http.StatusFound, back)
}

// Import turns a submission into time slots of its section (admins only)
func (c *AvailabilityController) Import(ctx *gin.Context) {
	back := c.sectionFromForm(ctx)
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		ctx.Redirect(http.StatusFound, back)
		return
	}

	result, err := c.availability.Import(ctx.Request.Context(), sessionID(ctx), id)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyAvailabilityImportFailed, map[string]any{"Reason": Reason(err)})
		ctx.Redirect(http.StatusFound, back)
		return
	}
	c.renderer.FlashCount(ctx, repositories.FlashSuccess, i18n.KeyAvailabilityImported, len(result.CreatedTimeSlots))
	ctx.Redirect(http.StatusFound, back)
}
