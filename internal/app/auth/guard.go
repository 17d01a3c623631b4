package auth

import (
	"github.com/yigit/visitportal/internal/app/models"
)

// Paths the guards redirect to
const (
	LoginPath        = "/login"
	DashboardPath    = "/dashboard"
	FormsPath        = "/forms"
	UnauthorizedPath = "/unauthorized"
)

// DecisionKind tells the middleware what to do with a guarded request
type DecisionKind int

const (
	// DecisionLoading renders a loading indicator; neither content nor redirect
	DecisionLoading DecisionKind = iota
	// DecisionRedirect sends the browser to Decision.Location
	DecisionRedirect
	// DecisionRender lets the nested route run
	DecisionRender
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionLoading:
		return "loading"
	case DecisionRedirect:
		return "redirect"
	case DecisionRender:
		return "render"
	}
	return "unknown"
}

// Decision is the outcome of evaluating a guard
type Decision struct {
	Kind     DecisionKind
	Location string
}

// Loading builds a loading decision
func Loading() Decision { return Decision{Kind: DecisionLoading} }

// Render builds a render decision
func Render() Decision { return Decision{Kind: DecisionRender} }

// RedirectTo builds a redirect decision
func RedirectTo(location string) Decision {
	return Decision{Kind: DecisionRedirect, Location: location}
}

// GuardState is what a guard needs to know about the current browser session
type GuardState struct {
	Loading bool
	User    *models.User
	Roles   RoleSet
}

// GuardKind selects one of the three guard variants
type GuardKind int

const (
	GuardProtected GuardKind = iota
	GuardAdmin
	GuardPrivate
)

// Guard decides whether a route may render for a given session state
type Guard struct {
	Kind         GuardKind
	RequiredRole models.Role // only used by protected guards; empty means any authenticated user
}

// ProtectedRoute guards a route with an optional required role
func ProtectedRoute(required models.Role) Guard {
	return Guard{Kind: GuardProtected, RequiredRole: required}
}

// AdminRoute guards an admin-only route
func AdminRoute() Guard {
	return Guard{Kind: GuardAdmin, RequiredRole: models.RoleAdmin}
}

// PrivateRoute guards a route open to any authenticated user
func PrivateRoute() Guard {
	return Guard{Kind: GuardPrivate}
}

// Evaluate runs the guard state machine. It depends only on its arguments.
func (g Guard) Evaluate(state GuardState, path string) Decision {
	if state.Loading {
		return Loading()
	}
	if state.User == nil {
		return RedirectTo(LoginPath)
	}

	switch g.Kind {
	case GuardAdmin:
		if !Satisfies(state.Roles, models.RoleAdmin) {
			return RedirectTo(DashboardPath)
		}
		return Render()
	case GuardPrivate:
		return Render()
	default:
		// Candidates land on their forms instead of the staff dashboard
		if state.User.IsCandidate() && path == DashboardPath {
			return RedirectTo(FormsPath)
		}
		if g.RequiredRole != "" && !Satisfies(state.Roles, g.RequiredRole) {
			return RedirectTo(UnauthorizedPath)
		}
		return Render()
	}
}
