package core

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"saasterkit/internal/types"
)

// rootBanner is served on GET / and GET /api as a liveness/identity page.
const rootBanner = `<h3>SaasterKit Go Backend</h3>`

// MountRoutes defines the top-level routing hierarchy.
// It registers the global middleware chain, the /api route group, and the
// top-level routes (root banner, health check, wildcard 404).
func (s *Server) MountRoutes() {
	// Global Middleware Registration (strict order matters).
	s.registerGlobalMiddleware()

	// API route group. Domain handler routes are registered via
	// APIRouteRegistrars, which are populated by the application entry
	// point (main.go).
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleBanner)
		for _, registrar := range s.APIRouteRegistrars {
			registrar(r)
		}
	})

	// Top-Level Routes (outside /api)
	s.router.Get("/", s.handleBanner)
	s.router.Get("/healthz", s.HandleHealth)

	// Wildcard: any unmatched route returns a JSON 404.
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		JSON(w, r, http.StatusNotFound, "404 Not Found")
	})
}

// registerGlobalMiddleware applies middleware in strict order.
//
// Ordering Rationale:
//  1. Recoverer       - Catches panics; outermost to catch all failures.
//  2. RequestID       - Generates/propagates correlation ID for tracing.
//  3. RequestLogger   - Structured logging (redacted headers).
//  4. Compression     - gzip responses for clients that accept it.
//
// Session authentication is NOT global: webhook routes are signed, not
// session-authenticated, so RequireSession is applied per route group by
// the handler registrars.
func (s *Server) registerGlobalMiddleware() {
	s.router.Use(s.Recoverer)
	s.router.Use(RequestIDMiddleware)
	s.router.Use(RequestLogger(s.Logger, defaultRedactedHeaders))
	s.router.Use(CompressionMiddleware)
}

// handleBanner serves the HTML identity banner.
func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rootBanner))
}

// HandleHealth reports process liveness.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	JSON(w, r, http.StatusOK, map[string]string{
		"status":     "ok",
		"request_id": types.GetRequestID(r.Context()),
	})
}
