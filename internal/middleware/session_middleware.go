package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/visitportal/internal/app/services"
	"github.com/yigit/visitportal/internal/pkg/auth"
)

// SessionCookieConfig describes the browser session cookie
type SessionCookieConfig struct {
	Name   string
	Secure bool
}

// SessionMiddleware binds every request to a browser session and resolves its identity
type SessionMiddleware struct {
	jwtService *auth.JWTService
	sessions   *services.SessionService
	cookie     SessionCookieConfig
	logger     zerolog.Logger
}

// NewSessionMiddleware creates a new SessionMiddleware
func NewSessionMiddleware(jwtService *auth.JWTService, sessions *services.SessionService, cookie SessionCookieConfig, logger zerolog.Logger) *SessionMiddleware {
	if cookie.Name == "" {
		cookie.Name = "portal_session"
	}
	return &SessionMiddleware{
		jwtService: jwtService,
		sessions:   sessions,
		cookie:     cookie,
		logger:     logger,
	}
}

// Session reads the signed session cookie or starts a new session. The token
// is re-issued when less than half of its lifetime is left.
func (m *SessionMiddleware) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := ""
		renew := true

		if raw, err := c.Cookie(m.cookie.Name); err == nil && raw != "" {
			claims, err := m.jwtService.ValidateToken(raw)
			if err != nil {
				m.logger.Debug().Err(err).Msg("Discarding invalid session cookie")
			} else {
				sid = claims.SessionID()
				renew = m.jwtService.ShouldRenew(claims)
			}
		}
		if sid == "" {
			sid = auth.NewSessionID()
		}

		if renew {
			token, expiry, err := m.jwtService.IssueSessionToken(sid)
			if err != nil {
				m.logger.Error().Err(err).Msg("Failed to issue session token")
			} else {
				c.SetSameSite(http.SameSiteLaxMode)
				maxAge := int(time.Until(expiry).Seconds())
				c.SetCookie(m.cookie.Name, token, maxAge, "/", "", m.cookie.Secure, true)
			}
		}

		c.Set(ContextSessionID, sid)
		c.Next()
	}
}

// Identity resolves the cached identity of the session. A failure of the
// store is logged and served as an unauthenticated state, never as a 5xx.
func (m *SessionMiddleware) Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, ok := SessionID(c)
		if !ok {
			c.Set(ContextState, services.SessionState{})
			c.Next()
			return
		}

		state, err := m.sessions.Resolve(c.Request.Context(), sid)
		if err != nil {
			m.logger.Warn().Err(err).Str("sessionID", sid).Msg("Failed to resolve session identity")
		}
		c.Set(ContextState, state)
		c.Next()
	}
}
