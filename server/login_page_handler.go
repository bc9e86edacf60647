package server

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/smartsales365/admin-console/auth"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName string
	Error   string
	Email   string // Preserve email on error
}

// LoginPageHandler displays the login page (GET /login). An operator who is
// already logged in goes straight to the dashboard.
func (s *Server) LoginPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch RouteDecision(s.auth.State()) {
		case DecisionLoading:
			s.renderLoading(w, r)
			return
		case DecisionAllow:
			redirectSuccess(w, r, RouteDashboard)
			return
		}

		s.render(w, http.StatusOK, pageLogin, LoginPageData{
			AppName: s.appName,
			Error:   r.URL.Query().Get(paramError),
			Email:   r.URL.Query().Get("email"),
		})
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Only a settled, logged out console takes credentials.
		switch RouteDecision(s.auth.State()) {
		case DecisionLoading:
			s.renderLoading(w, r)
			return
		case DecisionAllow:
			redirectSuccess(w, r, RouteDashboard)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		creds := auth.Credentials{
			Email:    strings.TrimSpace(r.FormValue("email")),
			Password: r.FormValue("password"),
		}
		if creds.Email == "" || creds.Password == "" {
			s.redirectLoginError(w, r, "El email y la contraseña son requeridos", creds.Email)
			return
		}

		result := s.auth.Login(r.Context(), creds)
		if !result.Success {
			s.redirectLoginError(w, r, result.Error, creds.Email)
			return
		}
		redirectSuccess(w, r, RouteDashboard)
	}
}

// redirectLoginError redirects to login page with an error message
func (s *Server) redirectLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string) {
	path := RouteLogin
	if email != "" {
		path = withParam(path, "email", email)
	}
	redirectWithError(w, r, path, errorMsg)
}

// LogoutHandler ends the session. The backend is told on a best effort
// basis; the local session is always cleared.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.auth.Logout(r.Context())
		redirectSuccess(w, r, RouteLogin)
	}
}

// RefreshTokenHandler renews the access token from the dashboard.
func (s *Server) RefreshTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.RefreshToken(r.Context()); err != nil {
			if apperrors.Is(err, apperrors.ErrUnauthorized) {
				redirectSuccess(w, r, RouteLogin)
				return
			}
			log.Warn().Err(err).Msg("token refresh failed")
			redirectWithError(w, r, RouteDashboard, "No se pudo renovar el token")
			return
		}
		redirectWithMessage(w, r, RouteDashboard, "Token renovado")
	}
}
