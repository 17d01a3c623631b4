package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/repositories"
	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/middleware"
	"github.com/yigit/visitportal/internal/pkg/apiclient"
	"github.com/yigit/visitportal/internal/pkg/apperrors"
	"github.com/yigit/visitportal/internal/pkg/i18n"
)

// Renderer renders pages with the session's identity, flashes and banner,
// and queues translated notifications
type Renderer struct {
	sessions   *services.SessionService
	translator *i18n.Translator
	logger     zerolog.Logger
}

// NewRenderer creates a new Renderer
func NewRenderer(sessions *services.SessionService, translator *i18n.Translator, logger zerolog.Logger) *Renderer {
	return &Renderer{
		sessions:   sessions,
		translator: translator,
		logger:     logger,
	}
}

// Page renders a template. The layout reads .State, .User, .Flashes and .Path.
func (r *Renderer) Page(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	state := middleware.State(ctx)
	data["State"] = state
	data["User"] = state.User
	data["Path"] = ctx.Request.URL.Path
	data["RequestID"] = middleware.RequestID(ctx)
	if state.SessionID != "" {
		data["Flashes"] = r.sessions.TakeFlashes(ctx.Request.Context(), state.SessionID)
	}
	ctx.HTML(status, name, data)
}

// T translates key in the request's locale
func (r *Renderer) T(ctx *gin.Context, key string, data map[string]any) string {
	return r.translator.T(middleware.Locale(ctx), key, data)
}

// Flash queues a translated notification for the next page
func (r *Renderer) Flash(ctx *gin.Context, level repositories.FlashLevel, key string, data map[string]any) {
	sid, ok := middleware.SessionID(ctx)
	if !ok {
		return
	}
	r.sessions.AddFlash(ctx.Request.Context(), sid, level, r.T(ctx, key, data))
}

// FlashCount queues a pluralized notification
func (r *Renderer) FlashCount(ctx *gin.Context, level repositories.FlashLevel, key string, count int) {
	sid, ok := middleware.SessionID(ctx)
	if !ok {
		return
	}
	msg := r.translator.N(middleware.Locale(ctx), key, count, nil)
	r.sessions.AddFlash(ctx.Request.Context(), sid, level, msg)
}

// Banner turns a fetch failure into the text of a dismissible banner
func (r *Renderer) Banner(ctx *gin.Context, key string, err error) string {
	return r.T(ctx, key, map[string]any{"Reason": Reason(err)})
}

// AuthFailed sends the browser to the sign-in page when err is an
// authentication failure. It reports whether it did.
func (r *Renderer) AuthFailed(ctx *gin.Context, err error) bool {
	if apperrors.CategoryOf(err) != apperrors.CategoryAuth && !errors.Is(err, apperrors.ErrUnauthenticated) {
		return false
	}
	r.Flash(ctx, repositories.FlashInfo, i18n.KeySessionExpired, nil)
	ctx.Redirect(http.StatusFound, auth.LoginPath)
	ctx.Abort()
	return true
}

// FailureStatus is the status of a page re-rendered after a rejected action:
// the API's own 4xx, 502 when the API itself failed, 403 for a local
// permission check and 422 otherwise
func FailureStatus(err error) int {
	if errors.Is(err, auth.ErrNotAdmin) || errors.Is(err, auth.ErrNotStaff) || errors.Is(err, auth.ErrPermissionDenied) {
		return http.StatusForbidden
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Status >= 500, apiErr.Kind == apiclient.KindNetwork, apiErr.Kind == apiclient.KindDecode:
			return http.StatusBadGateway
		case apiErr.Status >= 400:
			return apiErr.Status
		}
	}
	return http.StatusUnprocessableEntity
}

// Reason extracts the message shown to the user from an error
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.Message(); msg != "" {
			return msg
		}
	}
	var ce *apperrors.CustomError
	if errors.As(err, &ce) && ce.Err != nil && ce.Category != apperrors.CategoryUnknown {
		return ce.Err.Error()
	}
	return err.Error()
}

func sessionID(ctx *gin.Context) string {
	sid, _ := middleware.SessionID(ctx)
	return sid
}
