// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package app wires configuration into the recommendation components shared
// by the server and the command line tool.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/database"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

// App holds the opened components. Close releases them in reverse order.
type App struct {
	Config       *config.Config
	DB           *database.DB
	Catalog      *database.Catalog
	Registry     *database.Registry
	Store        *storage.Store
	Trainer      *recommend.Trainer
	Recommender  *recommend.Recommender
	ContentTypes []recommend.ContentType

	closers []func() error
}

// New opens the database, applies the registry schema, opens the artifact
// backend and builds the trainer and recommender.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*App, error) {
	rcfg, err := RecommendConfig(cfg)
	if err != nil {
		return nil, err
	}
	cts, err := ContentTypes(cfg)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, ContentTypes: cts}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, err
	}
	a.DB = db
	a.closers = append(a.closers, db.Close)

	if err := db.EnsureSchema(ctx); err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to apply registry schema: %w", err)
	}

	backend, err := OpenArtifactBackend(ctx, &cfg.Artifacts, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Store = storage.NewStore(backend, cfg.Artifacts.Prefix)
	a.closers = append(a.closers, a.Store.Close)

	a.Catalog = database.NewCatalog(db, cfg.Dataset, GCSConfig(&cfg.Artifacts))
	a.closers = append(a.closers, a.Catalog.Close)

	a.Registry = database.NewRegistry(db)
	a.Trainer = recommend.NewTrainer(rcfg, a.Catalog, a.Store, a.Registry, logger)
	a.Recommender = recommend.NewRecommender(rcfg, a.Store, a.Registry, logger)

	logger.Info().
		Str("db_path", cfg.Database.Path).
		Str("dataset", cfg.Dataset.Source).
		Str("artifacts", backend.Name()).
		Msg("recommendation components ready")
	return a, nil
}

// Close releases everything New opened.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// RecommendConfig maps the recommend section onto recommend.Config.
func RecommendConfig(cfg *config.Config) (recommend.Config, error) {
	rc := recommend.DefaultConfig()
	rc.Defaults = recommend.Params{NNeighbors: cfg.Recommend.NNeighbors, Metric: cfg.Recommend.Metric}
	rc.MaxBatch = cfg.Recommend.MaxBatch
	rc.EvalWorkers = cfg.Recommend.EvalWorkers
	rc.TrainTimeout = cfg.Recommend.TrainTimeout
	if err := rc.Validate(); err != nil {
		return recommend.Config{}, fmt.Errorf("invalid recommend configuration: %w", err)
	}
	return rc, nil
}

// ContentTypes parses the enabled content types.
func ContentTypes(cfg *config.Config) ([]recommend.ContentType, error) {
	out := make([]recommend.ContentType, 0, len(cfg.Recommend.ContentTypes))
	for _, s := range cfg.Recommend.ContentTypes {
		ct, err := recommend.ParseContentType(s)
		if err != nil {
			return nil, err
		}
		out = append(out, ct)
	}
	return out, nil
}
