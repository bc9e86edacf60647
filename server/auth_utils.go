package server

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	apperrors "github.com/smartsales365/admin-console/internal/errors"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"

	// query parameters carrying the result of a redirected form post
	paramError   = "error"
	paramMessage = "ok"
)

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withParam(path, paramError, errorMsg))
}

// redirectWithMessage reports a completed action on the next page.
func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, msg string) {
	redirectSuccess(w, r, withParam(path, paramMessage, msg))
}

func withParam(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// handleBackendError turns a failed backend call into a response. A 401
// has already cleared the session, so the operator goes back to login.
func (s *Server) handleBackendError(w http.ResponseWriter, r *http.Request, err error, fallbackPath, msg string) {
	switch {
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		redirectSuccess(w, r, RouteLogin)
	case apperrors.Is(err, apperrors.ErrNotFound):
		s.renderNotFound(w, r)
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
		if detail := apperrors.Detail(err); detail != "" {
			msg = msg + ": " + detail
		}
		redirectWithError(w, r, fallbackPath, msg)
	}
}

// pathID reads the {id} wildcard.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
