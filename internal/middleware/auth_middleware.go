package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/visitportal/internal/app/auth"
	"github.com/yigit/visitportal/internal/app/models/dto"
)

// LoadingTemplate is rendered while the identity is still being confirmed
const LoadingTemplate = "loading.html"

// loadingRefreshSeconds is how often the loading page reloads itself
const loadingRefreshSeconds = 1

// RequireRoute applies a route guard to HTML pages: a loading page while the
// identity is unconfirmed, a 302 for redirects, the handler otherwise.
func RequireRoute(guard auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Evaluate(State(c).Guard(), c.Request.URL.Path)
		switch decision.Kind {
		case auth.DecisionLoading:
			c.Header("Cache-Control", "no-store")
			c.HTML(http.StatusOK, LoadingTemplate, gin.H{
				"Title":   "Loading",
				"Refresh": loadingRefreshSeconds,
				"Target":  c.Request.URL.RequestURI(),
			})
			c.Abort()
		case auth.DecisionRedirect:
			c.Redirect(http.StatusFound, decision.Location)
			c.Abort()
		default:
			c.Next()
		}
	}
}

// RequireAPI applies a route guard to JSON endpoints. Loading answers 503
// with Retry-After; redirects become 401 or 403.
func RequireAPI(guard auth.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := guard.Evaluate(State(c).Guard(), c.Request.URL.Path)
		switch decision.Kind {
		case auth.DecisionLoading:
			c.Header("Retry-After", "1")
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "Session is still loading").
				WithSeverity(dto.ErrorSeverityInfo)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponse(errorDetail))
		case auth.DecisionRedirect:
			if decision.Location == auth.LoginPath {
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
				return
			}
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeForbidden, "Access denied").
				WithDetails("You don't have sufficient permissions for this operation")
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponse(errorDetail))
		default:
			c.Next()
		}
	}
}

// RedirectAuthenticated sends signed-in users away from pages like /login
func RedirectAuthenticated(location string) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := State(c)
		if !st.Loading && st.Authenticated() {
			c.Redirect(http.StatusFound, location)
			c.Abort()
			return
		}
		c.Next()
	}
}
