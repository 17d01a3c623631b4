package controllers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/pkg/helpers"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

// ExportController ships candidate itineraries
type ExportController struct {
	exports  *services.ExportService
	renderer *Renderer
}

// NewExportController creates a new ExportController
func NewExportController(exports *services.ExportService, renderer *Renderer) *ExportController {
	return &ExportController{
		exports:  exports,
		renderer: renderer,
	}
}

func backTo(ctx *gin.Context) string {
	return helpers.SafeRedirectTarget(ctx.PostForm("next"), auth.DashboardPath)
}

// Download sends the itinerary as an HTML attachment
func (c *ExportController) Download(ctx *gin.Context) {
	sectionID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		c.renderer.Page(ctx, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
		return
	}

	it, err := c.exports.Itinerary(ctx.Request.Context(), sessionID(ctx), sectionID)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeySectionsLoadFailed, map[string]any{"Reason": Reason(err)})
		ctx.Redirect(http.StatusFound, helpers.SafeRedirectTarget(ctx.GetHeader("Referer"), auth.DashboardPath))
		return
	}

	var buf bytes.Buffer
	if err := it.Render(&buf); err != nil {
		_ = ctx.Error(err)
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.Header("Content-Disposition", `attachment; filename="`+it.Filename()+`"`)
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// GoogleDoc exports the itinerary to Google Docs and opens the document
func (c *ExportController) GoogleDoc(ctx *gin.Context) {
	back := backTo(ctx)
	sectionID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		ctx.Redirect(http.StatusFound, back)
		return
	}

	url, err := c.exports.GoogleDoc(ctx.Request.Context(), sessionID(ctx), sectionID)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyExportGDocFailed, map[string]any{"Reason": Reason(err)})
		ctx.Redirect(http.StatusFound, back)
		return
	}
	ctx.Redirect(http.StatusSeeOther, url)
}

// Email mails the itinerary to the candidate
func (c *ExportController) Email(ctx *gin.Context) {
	back := backTo(ctx)
	sectionID, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		ctx.Redirect(http.StatusFound, back)
		return
	}

	to, err := c.exports.Email(ctx.Request.Context(), sessionID(ctx), sectionID)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyExportEmailFailed, map[string]any{"Reason": Reason(err)})
	} else {
		c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyExportEmailed, map[string]any{"Email": to})
	}
	ctx.Redirect(http.StatusFound, back)
}
