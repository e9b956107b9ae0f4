// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/reelmatch/internal/api"
	"github.com/tomtom215/reelmatch/internal/app"
	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/events"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/supervisor"
	"github.com/tomtom215/reelmatch/internal/supervisor/services"
	"github.com/tomtom215/reelmatch/internal/tracing"
)

// Idle auth failure buckets are swept on this interval.
const (
	failureSweepInterval = time.Minute
	failureMaxIdle       = 10 * time.Minute
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Caller:      cfg.Logging.Caller,
		Timestamp:   true,
		Service:     "reelmatch",
		Environment: cfg.Server.Environment,
	})

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("Server exited with error")
	}
	logging.Info().Msg("Server stopped")
}

//nolint:gocyclo // Sequential setup steps
func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.Logger()
	logger.Info().
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Strs("content_types", cfg.Recommend.ContentTypes).
		Msg("Starting Reelmatch")

	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing, cfg.Server.Environment, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("Failed to flush traces")
		}
	}()

	components, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := components.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing recommendation components")
		}
	}()

	bus, err := events.Open(&cfg.Events, logger)
	if err != nil {
		return fmt.Errorf("failed to open event bus: %w", err)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	components.Trainer.SetPublisher(bus)

	authMiddleware, err := newAuthMiddleware(cfg)
	if err != nil {
		return err
	}
	warnInsecureSettings(cfg)

	handler := api.NewHandler(&api.Dependencies{
		Trainer:      components.Trainer,
		Recommender:  components.Recommender,
		Registry:     components.Registry,
		Catalog:      components.Catalog,
		Store:        components.DB,
		ContentTypes: components.ContentTypes,
		Audit:        logging.NewSecurityLogger(),
		LookupTTL:    cfg.Recommend.LookupTTL,
		TrainTimeout: cfg.Recommend.TrainTimeout,
	})
	chiMiddleware := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	router := api.NewRouter(handler, authMiddleware, chiMiddleware)

	// Training runs on POST /train can exceed the read/write timeout; the
	// handler bounds them separately with TrainTimeout.
	server := &http.Server{
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + cfg.Recommend.TrainTimeout,
		IdleTimeout:       120 * time.Second,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	tree.AddPipelineService(services.NewTrainService(components.Trainer, services.TrainServiceConfig{
		ContentTypes:   components.ContentTypes,
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		TrainInterval:  cfg.Recommend.TrainInterval,
		TrainTimeout:   cfg.Recommend.TrainTimeout,
	}, logger))

	reload := services.NewReloadService(bus, components.Recommender, components.ContentTypes, cfg.Events.ReloadRate, logger)
	reload.OnReload(func(*recommend.Model) { handler.FlushLookups() })
	tree.AddPipelineService(reload)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	tree.AddAPIService(services.NewHTTPServerService(server, addr, 10*time.Second))
	tree.AddAPIService(services.NewCleanupService("auth-failure-sweep", failureSweepInterval, func() int {
		return authMiddleware.Failures().Cleanup(failureMaxIdle)
	}, logger))

	logger.Info().Str("addr", addr).Str("events", bus.Backend()).Msg("Supervisor tree starting")

	err = tree.Serve(ctx)
	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within the shutdown timeout")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", err)
	}
	return nil
}

func newAuthMiddleware(cfg *config.Config) (*auth.Middleware, error) {
	var jwtManager *auth.JWTManager
	if cfg.Security.AuthMode == auth.ModeJWT {
		var err error
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize JWT manager: %w", err)
		}
	}
	return auth.NewMiddleware(jwtManager, cfg.Security.AuthMode, logging.NewSecurityLogger()), nil
}

func warnInsecureSettings(cfg *config.Config) {
	if cfg.Security.AuthMode == auth.ModeNone {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  /train, /reload and /schema are callable by anyone.")
		logging.Warn().Msg("  Use AUTH_MODE=jwt outside local development.")
		logging.Warn().Msg("============================================================")
	}

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: CORS is configured with wildcard origin (CORS_ORIGINS=*)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  RECOMMENDED: Set specific origins in production:")
		logging.Warn().Msg("    CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com")
		logging.Warn().Msg("============================================================")
	}
}
