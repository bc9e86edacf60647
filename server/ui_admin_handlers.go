package server

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
	"github.com/smartsales365/admin-console/internal/utils"
	"github.com/smartsales365/admin-console/users"
)

type layoutData struct {
	AppName    string
	PageTitle  string
	ActivePage string
	UserName   string
	UserEmail  string
	Message    string
	Error      string
	Content    template.HTML
}

// renderAdminPage renders contentTemplate inside the console layout
func (s *Server) renderAdminPage(w http.ResponseWriter, r *http.Request, status int, activePage, pageTitle, contentTemplate string, data any) {
	var content bytes.Buffer
	if err := s.pages[contentTemplate].Execute(&content, data); err != nil {
		log.Error().Err(err).Str("template", contentTemplate).Msg("failed to render content")
		http.Error(w, "Failed to render content", http.StatusInternalServerError)
		return
	}

	user := utils.Value(authState(r.Context()).User)
	s.render(w, status, pageLayout, layoutData{
		AppName:    s.appName,
		PageTitle:  pageTitle,
		ActivePage: activePage,
		UserName:   user.DisplayName(),
		UserEmail:  user.Email,
		Message:    r.URL.Query().Get(paramMessage),
		Error:      r.URL.Query().Get(paramError),
		Content:    template.HTML(content.String()),
	})
}

// renderLoading shows a page that reloads the requested URL until the
// startup check is over. A form post is not replayed; the page moves on to
// the dashboard instead, whose guard picks the right screen.
func (s *Server) renderLoading(w http.ResponseWriter, r *http.Request) {
	target := r.URL.RequestURI()
	if r.Method != http.MethodGet {
		target = RouteDashboard
	}
	w.Header().Set("Retry-After", "1")
	s.render(w, http.StatusOK, pageLoading, map[string]any{
		"AppName": s.appName,
		"Target":  target,
	})
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderAdminPage(w, r, http.StatusNotFound, "", "No encontrado", pageNotFound, map[string]any{
		"Path": r.URL.Path,
	})
}

// renderBackendError is the read-side counterpart of handleBackendError: a
// screen that cannot load its data shows the error instead of redirecting.
func (s *Server) renderBackendError(w http.ResponseWriter, r *http.Request, err error, activePage, msg string) {
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		redirectSuccess(w, r, RouteLogin)
		return
	case apperrors.Is(err, apperrors.ErrNotFound):
		s.renderNotFound(w, r)
		return
	}

	log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	s.renderAdminPage(w, r, http.StatusBadGateway, activePage, "Error", pageError, map[string]any{
		"Message": msg,
		"Detail":  apperrors.Detail(err),
	})
}

// RootRedirectHandler sends / to the dashboard; the guard there decides
// whether login comes first.
func (s *Server) RootRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirectSuccess(w, r, RouteDashboard)
	}
}

type dashboardData struct {
	User        users.UserProfile
	TokenExpiry string
	Expired     bool
}

// DashboardHandler renders the landing screen with the logged in profile.
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := dashboardData{User: utils.Value(authState(r.Context()).User)}
		if exp, ok := s.auth.AccessTokenExpiry(); ok {
			data.TokenExpiry = exp.Local().Format("02/01/2006 15:04")
			data.Expired = exp.Before(time.Now())
		}
		s.renderAdminPage(w, r, http.StatusOK, "dashboard", "Dashboard", pageDashboard, data)
	}
}

// PlaceholderHandler renders a screen that is still in development.
func (s *Server) PlaceholderHandler(activePage, title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderAdminPage(w, r, http.StatusOK, activePage, title, pagePlaceholder, map[string]any{
			"Title": title,
		})
	}
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderNotFound(w, r)
	}
}
