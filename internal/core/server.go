// Package core provides the API chassis for the SaasterKit backend.
// It creates a chi router and enforces cross-cutting concerns -- security,
// logging, and error handling -- before requests reach domain-specific
// handlers.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"saasterkit/internal/config"
)

// Server encapsulates all dependencies for the HTTP API, allowing for easy
// injection during testing and distinct configuration for different
// environments.
type Server struct {
	Config        *config.Config
	Logger        *slog.Logger
	Validator     *Validator
	Authenticator Authenticator // Resolves session tokens; injected for testability.

	// APIRouteRegistrars are invoked under the /api route group when
	// MountRoutes runs. Populated by the application entry point; the
	// indirection avoids import cycles between core and handler packages.
	APIRouteRegistrars []func(chi.Router)

	// Internal router
	router *chi.Mux
}

// NewServer initializes dependencies, sets up the router, and prepares the
// server for route mounting.
//
// The caller is responsible for mounting routes (via MountRoutes) after
// construction. This separation allows tests to customize route
// registration.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger must not be nil")
	}

	s := &Server{
		Config:    cfg,
		Logger:    logger,
		Validator: NewValidator(logger),
		router:    chi.NewRouter(),
	}

	return s, nil
}

// Handler returns the http.Handler interface for the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router returns the underlying chi.Mux for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Shutdown performs a graceful termination of server resources.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("server shutdown initiated")
	s.Logger.Info("server shutdown complete")
	return nil
}
