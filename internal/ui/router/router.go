// Package router decides which view the TUI shows. The decision is made
// fresh on every navigation from the live authentication state.
package router

type Route string

const (
	RouteLogin     Route = "login"
	RouteDashboard Route = "dashboard"
)

// AuthChecker is satisfied by the session usecase.
type AuthChecker interface {
	IsAuthenticated() bool
}

// Gate guards the protected routes.
type Gate struct {
	auth AuthChecker
}

func NewGate(auth AuthChecker) Gate {
	return Gate{auth: auth}
}

// Resolve returns the route to actually show for a navigation to route.
// Protected routes resolve to RouteLogin without a session. Unknown routes
// are treated as protected.
func (g Gate) Resolve(route Route) Route {
	if !Protected(route) {
		return route
	}
	if g.auth == nil || !g.auth.IsAuthenticated() {
		return RouteLogin
	}
	return RouteDashboard
}

// Protected reports whether route needs a session.
func Protected(route Route) bool {
	return route != RouteLogin
}
