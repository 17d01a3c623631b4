package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/models/dto"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
	"github.com/yigit/visitportal/internal/pkg/helpers"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

// FormController shows and submits the questionnaires assigned to a user
type FormController struct {
	forms    *services.FormService
	renderer *Renderer
}

// NewFormController creates a new FormController
func NewFormController(forms *services.FormService, renderer *Renderer) *FormController {
	return &FormController{
		forms:    forms,
		renderer: renderer,
	}
}

func (c *FormController) render(ctx *gin.Context, status int, af *services.AssignedForm, answers map[string]interface{}, errs map[string]string) {
	if answers == nil && af.Submission != nil {
		answers = af.Submission.Answers
	}
	c.renderer.Page(ctx, status, "form.html", gin.H{
		"Title":     af.Form.Title,
		"Form":      af.Form,
		"Fields":    dto.FieldViews(&af.Form, answers, errs),
		"Completed": af.Completed(),
	})
}

// load fetches the form of the :id parameter, rendering the failure itself
func (c *FormController) load(ctx *gin.Context) (*services.AssignedForm, bool) {
	id, err := helpers.ParseIDParam(ctx, "id")
	if err != nil {
		c.renderer.Page(ctx, http.StatusNotFound, "not_found.html", gin.H{"Title": "Not found"})
		return nil, false
	}
	af, err := c.forms.Form(ctx.Request.Context(), sessionID(ctx), id)
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return nil, false
		}
		c.renderer.Page(ctx, FailureStatus(err), "not_found.html", gin.H{
			"Title":  "Not found",
			"Banner": c.renderer.Banner(ctx, i18n.KeyFormsLoadFailed, err),
		})
		return nil, false
	}
	return af, true
}

// Page renders a form, prefilled with the latest submission
func (c *FormController) Page(ctx *gin.Context) {
	af, ok := c.load(ctx)
	if !ok {
		return
	}
	c.render(ctx, http.StatusOK, af, nil, nil)
}

// Submit validates and sends the answers of a form
func (c *FormController) Submit(ctx *gin.Context) {
	af, ok := c.load(ctx)
	if !ok {
		return
	}
	if err := ctx.Request.ParseForm(); err != nil {
		c.render(ctx, http.StatusBadRequest, af, nil, nil)
		return
	}
	answers := dto.FormAnswers(&af.Form, ctx.Request.PostForm)

	if _, err := c.forms.Submit(ctx.Request.Context(), sessionID(ctx), &af.Form, answers); err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		var ce *apperrors.CustomError
		if apperrors.CategoryOf(err) == apperrors.CategoryValidation && errors.As(err, &ce) {
			errs := make(map[string]string, len(ce.Details))
			for k, v := range ce.Details {
				errs[k], _ = v.(string)
			}
			c.renderer.FlashCount(ctx, repositories.FlashError, i18n.KeyFormInvalid, len(errs))
			c.render(ctx, http.StatusBadRequest, af, answers, errs)
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyFormSubmitFailed, map[string]any{"Reason": Reason(err)})
		c.render(ctx, FailureStatus(err), af, answers, nil)
		return
	}
	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyFormSubmitted, nil)
	ctx.Redirect(http.StatusFound, "/")
}
