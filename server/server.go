package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/smartsales365/admin-console/apiclient"
	"github.com/smartsales365/admin-console/auth"
	"github.com/smartsales365/admin-console/internal/config"
	"github.com/smartsales365/admin-console/products"
	"github.com/smartsales365/admin-console/users"
)

// Server serves the console screens. Every screen except login reads the
// provider state through RequireSession before it runs.
type Server struct {
	env            string // Environment (e.g., "DEV", "PROD")
	appName        string
	allowedOrigins config.AllowedOrigins
	mux            *http.ServeMux
	routes         []string
	auth           *auth.Provider
	users          *users.Service
	roles          *users.RoleService
	products       *products.Service
	catalog        *products.CatalogService
	pages          map[string]*template.Template
}

func New(cfg config.ServerConfig, provider *auth.Provider, api apiclient.API) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if provider == nil {
		return nil, errors.New("[Server New] auth provider is required")
	}
	if api == nil {
		return nil, errors.New("[Server New] api client is required")
	}

	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:            cfg.GetEnv(),
		appName:        cfg.GetAppName(),
		allowedOrigins: cfg.GetAllowedOrigins(),
		mux:            http.NewServeMux(),
		auth:           provider,
		users:          users.NewService(api),
		roles:          users.NewRoleService(api),
		products:       products.NewService(api),
		catalog:        products.NewCatalogService(api),
		pages:          pages,
	}
	if len(s.allowedOrigins) > 0 {
		log.Info().Str("origins", s.allowedOrigins.String()).Msg("cross-origin form posts allowed")
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

// Routes lists the registered patterns in registration order.
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Debug().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}
