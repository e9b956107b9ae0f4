// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateArtifacts(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateTracing()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

// identifierPattern matches plain and schema-qualified SQL identifiers.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be non-negative, got %d", c.Database.Threads)
	}
	if c.Database.RegistrySchema == "" || strings.Contains(c.Database.RegistrySchema, ".") || !identifierPattern.MatchString(c.Database.RegistrySchema) {
		return fmt.Errorf("REGISTRY_SCHEMA must be a plain identifier, got %q", c.Database.RegistrySchema)
	}
	return nil
}

func (c *Config) validateDataset() error {
	switch c.Dataset.Source {
	case "csv":
		if c.Dataset.Path == "" {
			return fmt.Errorf("DATASET_PATH is required when DATASET_SOURCE=csv")
		}
	case "table":
		if !identifierPattern.MatchString(c.Dataset.Table) {
			return fmt.Errorf("DATASET_TABLE must be a table name, got %q", c.Dataset.Table)
		}
	default:
		return fmt.Errorf("DATASET_SOURCE must be csv or table, got %q", c.Dataset.Source)
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	switch c.Artifacts.Backend {
	case "file":
		if c.Artifacts.Dir == "" {
			return fmt.Errorf("ARTIFACT_DIR is required when ARTIFACT_BACKEND=file")
		}
	case "gcs":
		if c.Artifacts.Bucket == "" {
			return fmt.Errorf("ARTIFACT_BUCKET is required when ARTIFACT_BACKEND=gcs")
		}
	case "badger":
		// empty dir runs badger in memory
	default:
		return fmt.Errorf("ARTIFACT_BACKEND must be file, gcs or badger, got %q", c.Artifacts.Backend)
	}
	if c.Artifacts.BreakerFailures == 0 {
		return fmt.Errorf("ARTIFACT_BREAKER_FAILURES must be at least 1")
	}
	if c.Artifacts.BreakerTimeout <= 0 {
		return fmt.Errorf("ARTIFACT_BREAKER_TIMEOUT must be positive, got %s", c.Artifacts.BreakerTimeout)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := &c.Recommend
	if r.NNeighbors < 1 {
		return fmt.Errorf("RECOMMEND_N_NEIGHBORS must be at least 1, got %d", r.NNeighbors)
	}
	switch strings.ToLower(r.Metric) {
	case "cosine", "euclidean", "manhattan":
	default:
		return fmt.Errorf("RECOMMEND_METRIC must be cosine, euclidean or manhattan, got %q", r.Metric)
	}
	if len(r.ContentTypes) == 0 {
		return fmt.Errorf("RECOMMEND_CONTENT_TYPES must list at least one content type")
	}
	for _, ct := range r.ContentTypes {
		if ct != "movies" && ct != "shows" {
			return fmt.Errorf("RECOMMEND_CONTENT_TYPES: unknown content type %q", ct)
		}
	}
	if r.TrainInterval < 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_INTERVAL must be non-negative, got %s", r.TrainInterval)
	}
	if r.TrainInterval > 0 && r.TrainInterval < time.Minute {
		return fmt.Errorf("RECOMMEND_TRAIN_INTERVAL must be at least 1m, got %s", r.TrainInterval)
	}
	if r.TrainTimeout <= 0 {
		return fmt.Errorf("RECOMMEND_TRAIN_TIMEOUT must be positive, got %s", r.TrainTimeout)
	}
	if r.MaxBatch < 0 || r.EvalWorkers < 0 {
		return fmt.Errorf("RECOMMEND_MAX_BATCH and RECOMMEND_EVAL_WORKERS must be non-negative")
	}
	return nil
}

func (c *Config) validateEvents() error {
	switch c.Events.Backend {
	case "memory":
	case "nats":
		if c.Events.NATSURL == "" && !c.Events.Embedded {
			return fmt.Errorf("NATS_URL is required when EVENTS_BACKEND=nats without NATS_EMBEDDED")
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be memory or nats, got %q", c.Events.Backend)
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required")
	}
	if c.Events.ReloadRate <= 0 {
		return fmt.Errorf("EVENTS_RELOAD_RATE must be positive, got %v", c.Events.ReloadRate)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	switch c.Security.AuthMode {
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	case "jwt":
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when AUTH_MODE=jwt")
		}
		if c.Security.TokenTTL <= 0 {
			return fmt.Errorf("JWT_TTL must be positive, got %s", c.Security.TokenTTL)
		}
	default:
		return fmt.Errorf("AUTH_MODE must be none or jwt, got %q", c.Security.AuthMode)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	return nil
}

func (c *Config) validateTracing() error {
	if !c.Tracing.Enabled {
		return nil
	}
	switch c.Tracing.Exporter {
	case "stdout":
	case "otlp":
		if c.Tracing.Endpoint == "" {
			return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_EXPORTER=otlp")
		}
	default:
		return fmt.Errorf("OTEL_EXPORTER must be stdout or otlp, got %q", c.Tracing.Exporter)
	}
	if c.Tracing.SamplerRatio < 0 || c.Tracing.SamplerRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLER_RATIO must be between 0 and 1, got %v", c.Tracing.SamplerRatio)
	}
	return nil
}

// ShouldWarnAboutCORS reports a wildcard CORS origin outside development.
func (c *Config) ShouldWarnAboutCORS() bool {
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return c.Server.Environment != "development"
		}
	}
	return false
}
