package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/models"
	"github.com/yigit/visitportal/internal/app/models/dto"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/helpers"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

// AuthController handles sign-in, sign-out and user registration
type AuthController struct {
	sessions       *services.SessionService
	renderer       *Renderer
	googleClientID string
}

// NewAuthController creates a new AuthController
func NewAuthController(sessions *services.SessionService, renderer *Renderer, googleClientID string) *AuthController {
	return &AuthController{
		sessions:       sessions,
		renderer:       renderer,
		googleClientID: googleClientID,
	}
}

// LoginPage renders the sign-in page
func (c *AuthController) LoginPage(ctx *gin.Context) {
	c.renderer.Page(ctx, http.StatusOK, "login.html", gin.H{
		"Title":          "Sign in",
		"GoogleClientID": c.googleClientID,
		"Next":           helpers.SafeRedirectTarget(ctx.Query("next"), ""),
	})
}

// Login exchanges the posted OAuth credential for a session
func (c *AuthController) Login(ctx *gin.Context) {
	var form dto.LoginForm
	if verrs := middleware.BindForm(ctx, &form); verrs != nil {
		c.renderer.Page(ctx, http.StatusBadRequest, "login.html", gin.H{
			"Title":          "Sign in",
			"GoogleClientID": c.googleClientID,
			"Next":           helpers.SafeRedirectTarget(form.Next, ""),
			"Errors":         verrs.Fields(),
		})
		return
	}

	user, err := c.sessions.Login(ctx.Request.Context(), sessionID(ctx), form.Credential)
	if err != nil {
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyLoginFailed, map[string]any{"Reason": Reason(err)})
		ctx.Redirect(http.StatusFound, auth.LoginPath)
		return
	}

	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeySignedIn, map[string]any{"Name": user.FullName()})
	fallback := auth.DashboardPath
	if user.IsCandidate() {
		fallback = auth.FormsPath
	}
	ctx.Redirect(http.StatusFound, helpers.SafeRedirectTarget(form.Next, fallback))
}

// Logout ends the session. The local identity is cleared even if the API refuses.
func (c *AuthController) Logout(ctx *gin.Context) {
	if err := c.sessions.Logout(ctx.Request.Context(), sessionID(ctx)); err != nil {
		_ = ctx.Error(err)
	}
	c.renderer.Flash(ctx, repositories.FlashInfo, i18n.KeySignedOut, nil)
	ctx.Redirect(http.StatusFound, auth.LoginPath)
}

// RegisterPage renders the admin user registration form
func (c *AuthController) RegisterPage(ctx *gin.Context) {
	c.renderer.Page(ctx, http.StatusOK, "register.html", gin.H{
		"Title": "Register user",
		"Roles": models.Roles,
		"Form":  dto.RegisterForm{UserType: string(models.RoleFaculty)},
	})
}

// Register creates a user. Validation, including the password confirmation,
// runs before anything is sent to the API.
func (c *AuthController) Register(ctx *gin.Context) {
	var form dto.RegisterForm
	if verrs := middleware.BindForm(ctx, &form); verrs != nil {
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyValidationFailed, nil)
		c.renderRegister(ctx, http.StatusBadRequest, form, verrs.Fields())
		return
	}

	created, err := c.sessions.Register(ctx.Request.Context(), sessionID(ctx), form.ToRequest())
	if err != nil {
		if c.renderer.AuthFailed(ctx, err) {
			return
		}
		c.renderer.Flash(ctx, repositories.FlashError, i18n.KeyUserRegisterFailed, map[string]any{"Reason": Reason(err)})
		c.renderRegister(ctx, FailureStatus(err), form, nil)
		return
	}

	c.renderer.Flash(ctx, repositories.FlashSuccess, i18n.KeyUserRegistered, map[string]any{"Email": created.Email})
	ctx.Redirect(http.StatusFound, UsersPath)
}

func (c *AuthController) renderRegister(ctx *gin.Context, status int, form dto.RegisterForm, errs map[string]string) {
	form.Password, form.PasswordConfirm = "", ""
	c.renderer.Page(ctx, status, "register.html", gin.H{
		"Title":  "Register user",
		"Roles":  models.Roles,
		"Form":   form,
		"Errors": errs,
	})
}
