// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

// GCSConfig extracts the Cloud Storage settings. They also serve gs://
// dataset paths.
func GCSConfig(cfg *config.ArtifactsConfig) storage.GCSConfig {
	return storage.GCSConfig{
		Bucket:          cfg.Bucket,
		EmulatorHost:    cfg.EmulatorHost,
		CredentialsFile: cfg.CredentialsFile,
	}
}

// OpenArtifactBackend opens the configured backend behind a circuit
// breaker.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func OpenArtifactBackend(ctx context.Context, cfg *config.ArtifactsConfig, logger zerolog.Logger) (*storage.BreakerBackend, error) {
	var (
		inner storage.Backend
		err   error
	)
	switch cfg.Backend {
	case "file":
		inner, err = storage.NewFileBackend(cfg.Dir)
	case "gcs":
		inner, err = storage.NewGCSBackend(ctx, GCSConfig(cfg))
	case "badger":
		inner, err = storage.OpenBadgerBackend(cfg.Dir)
	default:
		err = fmt.Errorf("unknown artifact backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact backend: %w", err)
	}

	return storage.NewBreakerBackend(inner, storage.BreakerConfig{
		FailureThreshold: cfg.BreakerFailures,
		Timeout:          cfg.BreakerTimeout,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("artifact store circuit breaker changed state")
		},
	}), nil
}
