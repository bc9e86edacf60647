package server

import (
	"context"
	"net/http"

	"github.com/smartsales365/admin-console/auth"
)

// Decision is what the route guard does with a request.
type Decision int

const (
	// DecisionLoading shows the loading page while the startup check runs.
	DecisionLoading Decision = iota
	// DecisionAllow serves the protected screen.
	DecisionAllow
	// DecisionLogin replaces the navigation with the login page.
	DecisionLogin
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionAllow:
		return "allow"
	case DecisionLogin:
		return "login"
	default:
		return "unknown"
	}
}

// RouteDecision decides from the auth state alone. Loading wins over
// everything else, so nothing protected is shown before the startup check
// has finished.
func RouteDecision(state auth.State) Decision {
	switch {
	case state.Loading:
		return DecisionLoading
	case state.IsAuthenticated:
		return DecisionAllow
	default:
		return DecisionLogin
	}
}

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyAuthState stores the auth state the guard let through
const ContextKeyAuthState ContextKey = "auth_state"

// authState returns the state stored by RequireSession.
func authState(ctx context.Context) auth.State {
	state, _ := ctx.Value(ContextKeyAuthState).(auth.State)
	return state
}

// RequireSession is the route guard for console screens. Unauthenticated
// requests are sent to the login page with a See Other redirect, so the
// protected URL does not stay in the history.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			state := s.auth.State()

			switch RouteDecision(state) {
			case DecisionLoading:
				s.renderLoading(w, r)
			case DecisionLogin:
				redirectSuccess(w, r, RouteLogin)
			case DecisionAllow:
				ctx := context.WithValue(r.Context(), ContextKeyAuthState, state)
				next(w, r.WithContext(ctx))
			}
		}
	}
}
