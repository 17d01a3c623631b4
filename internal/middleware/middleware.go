package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/services"
)

// Context keys set by the middleware chain
const (
	ContextSessionID = "sessionID"
	ContextState     = "sessionState"
	ContextRequestID = "requestID"
	ContextLocale    = "locale"
)

// SessionID returns the browser session id of the request
func SessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return "", false
	}
	sid, ok := v.(string)
	return sid, ok && sid != ""
}

// State returns the resolved identity of the request, or an unauthenticated state
func State(c *gin.Context) services.SessionState {
	if v, ok := c.Get(ContextState); ok {
		if st, ok := v.(services.SessionState); ok {
			return st
		}
	}
	sid, _ := SessionID(c)
	return services.SessionState{SessionID: sid}
}

// RequestID returns the id assigned by RequestLogger
func RequestID(c *gin.Context) string {
	return c.GetString(ContextRequestID)
}

// Locale returns the negotiated message locale
func Locale(c *gin.Context) string {
	return c.GetString(ContextLocale)
}
