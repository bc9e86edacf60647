package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Parse(string(content))
}

const (
	pageLayout      = "layout.html"
	pageLogin       = "login.html"
	pageLoading     = "loading.html"
	pageDashboard   = "dashboard.html"
	pageUsers       = "users_list.html"
	pageUserForm    = "user_form.html"
	pageProducts    = "products_list.html"
	pagePlaceholder = "placeholder.html"
	pageNotFound    = "not_found.html"
	pageError       = "error.html"
)

// parsePages parses every template once at start up.
func parsePages() (map[string]*template.Template, error) {
	names := []string{
		pageLayout, pageLogin, pageLoading, pageDashboard, pageUsers, pageUserForm,
		pageProducts, pagePlaceholder, pageNotFound, pageError,
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tmpl, err := ParseTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return pages, nil
}

// render executes a standalone page.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages[name].Execute(&buf, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("failed to render page")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
