// Package main is the entry point for the SaasterKit API server.
//
// Startup sequence:
//  1. Load and validate configuration from the environment (.env honored
//     as a development convenience).
//  2. Initialize the structured logger at the configured level.
//  3. Connect the PostgreSQL pool and construct repositories.
//  4. Wire the webhook verifiers, billing client, reconciler, and the
//     session authenticator.
//  5. Mount routes and serve until SIGINT/SIGTERM, then drain gracefully
//     within the configured shutdown timeout.
//
// Any failure before the listener is up exits non-zero; configuration
// problems surface on startup, not on first request.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"saasterkit/internal/api/handlers"
	"saasterkit/internal/billing"
	"saasterkit/internal/config"
	"saasterkit/internal/core"
	"saasterkit/internal/db"
	"saasterkit/internal/external"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing server: %w", err)
	}

	authenticator, err := core.NewClerkAuthenticator(cfg.Clerk.JWTPublicKey)
	if err != nil {
		return fmt.Errorf("initializing session authenticator: %w", err)
	}
	srv.Authenticator = authenticator

	users := db.NewUserRepo(pool, logger)
	todos := db.NewTodoRepo(pool, logger)
	events := db.NewWebhookEventRepo(pool, logger)
	plans := db.NewPlanRepo(pool, logger)
	subs := db.NewSubscriptionRepo(pool, logger)

	lsClient := external.NewLemonSqueezyClient(nil, external.LemonSqueezyClientConfig{
		APIKey:  cfg.LemonSqueezy.APIKey.Unmask(),
		BaseURL: cfg.LemonSqueezy.APIBaseURL,
		Logger:  logger,
	})
	reconciler := billing.NewReconciler(plans, subs, lsClient, logger)

	clerkWebhook := handlers.NewClerkWebhookHandler(
		external.NewClerkVerifier(),
		users,
		cfg.Clerk.WebhookSecret.Unmask(),
		logger,
	)
	lsWebhook := handlers.NewLemonSqueezyWebhookHandler(
		external.NewLemonSqueezyVerifier(),
		events,
		reconciler,
		cfg.LemonSqueezy.WebhookSecret.Unmask(),
		logger,
	)
	todoHandler := handlers.NewTodoHandler(todos, srv.Validator)

	srv.APIRouteRegistrars = append(srv.APIRouteRegistrars, func(r chi.Router) {
		r.Route("/user", clerkWebhook.RegisterRoutes)
		r.Route("/lemon-squeezy", lsWebhook.RegisterRoutes)
		r.Route("/todo", func(r chi.Router) {
			r.Use(srv.RequireSession)
			todoHandler.RegisterRoutes(r)
		})
	})
	srv.MountRoutes()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting API server",
			"environment", cfg.Environment,
			"addr", httpServer.Addr,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received, draining connections")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newLogger builds the process-wide structured logger. JSON output keeps
// log lines machine-parseable in every environment.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
