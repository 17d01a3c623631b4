package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/calendar"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/helpers"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

// CalendarController serves the season calendar and the registration dialog
type CalendarController struct {
	schedule *services.ScheduleService
	renderer *Renderer
}

// NewCalendarController creates a new CalendarController
func NewCalendarController(schedule *services.ScheduleService, renderer *Renderer) *CalendarController {
	return &CalendarController{
		schedule: schedule,
		renderer: renderer,
	}
}

func calendarPath(seasonID int64) string {
	return fmt.Sprintf("/seasons/%d/calendar", seasonID)
}

// Page renders the calendar of a season
func (c *CalendarController) Page(ctx *gin.Context) {
	seasonID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		c.renderer.Page(ctx, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
		return
	}
	state := middleware.State(ctx)

	data := gin.H{
		"Title":     "Calendar",
		"SeasonID":  seasonID,
		"EventsURL": fmt.Sprintf("/api/seasons/%d/events", seasonID),
	}
	if season, err := c.schedule.Season(ctx.Request.Context(), state.SessionID, seasonID); err == nil {
		data["Season"] = season
		data["Title"] = season.Title
	}
	events, err := c.schedule.Events(ctx.Request.Context(), state.SessionID, seasonID, state.User.ID)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Banner"] = c.renderer.Banner(ctx, i18n.KeySectionsLoadFailed, err)
	}
	data["Events"] = events
	c.renderer.Page(ctx, http.StatusOK, "calendar.html", data)
}

// Events returns the calendar events of a season
// @Summary Calendar events of a season
// @Description Visible time slots of every candidate section, styled by fullness and the caller's registration
// @Tags calendar
// @Produce json
// @Param id path int true "Season ID"
// @Success 200 {array} calendar.Event "Events"
// @Failure 401 {object} dto.ErrorResponse "No signed-in user"
// @Failure 502 {object} dto.ErrorResponse "Scheduling API failure"
// @Router /api/seasons/{id}/events [get]
func (c *CalendarController) Events(ctx *gin.Context) {
	seasonID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	state := middleware.State(ctx)

	events, err := c.schedule.Events(ctx.Request.Context(), state.SessionID, seasonID, state.User.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, events)
}

// lookup refetches the season's events and finds the clicked slot
func (c *CalendarController) lookup(ctx *gin.Context) (int64, calendar.Event, bool) {
	seasonID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		c.renderer.Page(ctx, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
		return 0, calendar.Event{}, false
	}
	slotID, err := helpers.ParseIDParam(ctx, "slotId")
	if err != nil {
		ctx.Redirect(http.StatusFound, calendarPath(seasonID))
		return 0, calendar.Event{}, false
	}
	state := middleware.State(ctx)

	events, err := c.schedule.Events(ctx.Request.Context(), state.SessionID, seasonID, state.User.ID)
	if err != nil {
		if !c.renderer.AuthFailed(ctx, err) {
			c.renderer.Flash(ctx, repositories.FlashError, i18n.KeySectionsLoadFailed, map[string]any{"Reason": Reason(err)})
			ctx.Redirect(http.StatusFound, calendarPath(seasonID))
		}
		return 0, calendar.Event{}, false
	}
	event, ok := calendar.Find(events, slotID)
	if !ok {
		c.renderer.Page(ctx, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
		return 0, calendar.Event{}, false
	}
	return seasonID, event, true
}

// Slot opens the confirmation dialog for a clicked event. A full slot the
// user is not registered for opens nothing.
func (c *CalendarController) Slot(ctx *gin.Context) {
	seasonID, event, ok := c.lookup(ctx)
	if !ok {
		return
	}

	dialog := c.schedule.Dialog(sessionID(ctx))
	pending, staged := dialog.Click(event)
	if !staged {
		c.renderer.Flash(ctx, repositories.FlashInfo, i18n.KeySlotNoAction, nil)
		ctx.Redirect(http.StatusFound, calendarPath(seasonID))
		return
	}

	c.renderer.Page(ctx, http.StatusOK, "slot_confirm.html", gin.H{
		"Title":    event.Title,
		"SeasonID": seasonID,
		"Pending":  pending,
		"Action":   pending.Kind.String(),
		"Back":     calendarPath(seasonID),
	})
}

// Confirm carries out the staged action. The event is rebuilt from fresh
// data; if it no longer stages the posted action nothing is sent.
func (c *CalendarController) Confirm(ctx *gin.Context) {
	seasonID, event, ok := c.lookup(ctx)
	if !ok {
		return
	}
	back := calendarPath(seasonID)

	dialog := c.schedule.Dialog(sessionID(ctx))
	pending, staged := dialog.Click(event)
	if !staged || pending.Kind != calendar.ParseAction(ctx.PostForm("action")) {
		dialog.Cancel()
		c.renderer.Flash(ctx, repositories.FlashInfo, i18n.KeySlotNoAction, nil)
		ctx.Redirect(http.StatusFound, back)
		return
	}

	done, err := dialog.Confirm(ctx.Request.Context())
	data := map[string]any{"Title": event.Title}
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		data["Reason"] = Reason(err)
		key := i18n.KeySlotRegisterFailed
		if done.Kind == calendar.ActionUnregister {
			key = i18n.KeySlotUnregisterFailed
		}
		c.renderer.Flash(ctx, repositories.FlashError, key, data)
		ctx.Redirect(http.StatusFound, back)
		return
	}

	key := i18n.KeySlotRegistered
	if done.Kind == calendar.ActionUnregister {
		key = i18n.KeySlotUnregistered
	}
	c.renderer.Flash(ctx, repositories.FlashSuccess, key, data)
	ctx.Redirect(http.StatusFound, back)
}

// Cancel closes the dialog without any call
func (c *CalendarController) Cancel(ctx *gin.Context) {
	seasonID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		ctx.Redirect(http.StatusFound, "/dashboard")
		return
	}
	ctx.Redirect(http.StatusFound, calendarPath(seasonID))
}
