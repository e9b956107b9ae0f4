// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"time"
)

// Config holds all application configuration.
//
// Configuration is loaded by LoadWithKoanf from three layers: built-in
// defaults, an optional YAML file, and environment variables.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Database  DatabaseConfig  `koanf:"database"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Artifacts ArtifactsConfig `koanf:"artifacts"`
	Recommend RecommendConfig `koanf:"recommend"`
	Events    EventsConfig    `koanf:"events"`
	Security  SecurityConfig  `koanf:"security"`
	Tracing   TracingConfig   `koanf:"tracing"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Listen address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 8088)
//   - HTTP_TIMEOUT: Read/write timeout (default: 30s)
//   - ENVIRONMENT: development or production (default: development)
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// LoggingConfig holds logging settings for zerolog.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DatabaseConfig holds DuckDB settings. The database hosts the run
// registry and, for table datasets, the catalog.
type DatabaseConfig struct {
	// Path is the DuckDB file, or ":memory:".
	Path string `koanf:"path"`

	// MaxMemory is the DuckDB memory limit (e.g. "1GB").
	MaxMemory string `koanf:"max_memory"`

	// Threads is the DuckDB worker count. 0 = runtime.NumCPU().
	Threads int `koanf:"threads"`

	// PreserveInsertionOrder mirrors the DuckDB setting of the same name.
	PreserveInsertionOrder bool `koanf:"preserve_insertion_order"`

	// RegistrySchema is the schema holding the run registry tables.
	RegistrySchema string `koanf:"registry_schema"`
}

// DatasetConfig selects the training catalog.
//
// Environment Variables:
//   - DATASET_SOURCE: csv or table (default: csv)
//   - DATASET_PATH: local CSV path or gs://bucket/object (csv source)
//   - DATASET_TABLE: qualified table name (table source, default: stage.netflix_api)
type DatasetConfig struct {
	Source string `koanf:"source"`
	Path   string `koanf:"path"`
	Table  string `koanf:"table"`
}

// ArtifactsConfig selects where model artifacts are stored.
//
// Environment Variables:
//   - ARTIFACT_BACKEND: file, gcs or badger (default: file)
//   - ARTIFACT_DIR: base directory for file and badger backends
//   - ARTIFACT_BUCKET: GCS bucket (gcs backend)
//   - ARTIFACT_PREFIX: key prefix inside the backend (default: models)
//   - STORAGE_EMULATOR_HOST: fake-gcs-server endpoint for local runs
//   - GCS_CREDENTIALS_FILE: service account JSON
//   - ARTIFACT_BREAKER_FAILURES: consecutive failures before the breaker opens (default: 5)
//   - ARTIFACT_BREAKER_TIMEOUT: open-state duration (default: 30s)
type ArtifactsConfig struct {
	Backend         string        `koanf:"backend"`
	Dir             string        `koanf:"dir"`
	Bucket          string        `koanf:"bucket"`
	Prefix          string        `koanf:"prefix"`
	EmulatorHost    string        `koanf:"emulator_host"`
	CredentialsFile string        `koanf:"credentials_file"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// RecommendConfig holds training and serving settings.
type RecommendConfig struct {
	// NNeighbors is the default k for training runs.
	NNeighbors int `koanf:"n_neighbors"`

	// Metric is the default distance: cosine, euclidean or manhattan.
	Metric string `koanf:"metric"`

	// ContentTypes lists the pipelines served and trained by this process.
	ContentTypes []string `koanf:"content_types"`

	// TrainOnStartup trains every content type when the server starts.
	TrainOnStartup bool `koanf:"train_on_startup"`

	// TrainInterval retrains periodically. 0 disables scheduled training.
	TrainInterval time.Duration `koanf:"train_interval"`

	// TrainTimeout bounds one training run.
	TrainTimeout time.Duration `koanf:"train_timeout"`

	// MaxBatch caps the items in one recommendation request.
	MaxBatch int `koanf:"max_batch"`

	// EvalWorkers bounds evaluation parallelism. 0 = runtime.NumCPU().
	EvalWorkers int `koanf:"eval_workers"`

	// LookupTTL caches title to showType lookups for /predict.
	LookupTTL time.Duration `koanf:"lookup_ttl"`
}

// EventsConfig configures model event distribution.
//
// Environment Variables:
//   - EVENTS_BACKEND: memory or nats (default: memory)
//   - NATS_URL: NATS server URL (default: nats://127.0.0.1:4222)
//   - NATS_EMBEDDED: run an embedded NATS server (default: false)
//   - NATS_STORE_DIR: JetStream storage for the embedded server
//   - EVENTS_TOPIC: topic for model events (default: reelmatch.models)
//   - EVENTS_RELOAD_RATE: max reloads per second triggered by events (default: 1)
type EventsConfig struct {
	Backend    string  `koanf:"backend"`
	NATSURL    string  `koanf:"nats_url"`
	Embedded   bool    `koanf:"embedded"`
	StoreDir   string  `koanf:"store_dir"`
	Topic      string  `koanf:"topic"`
	ReloadRate float64 `koanf:"reload_rate"`
}

// SecurityConfig holds authentication and request limiting settings.
type SecurityConfig struct {
	// AuthMode is "none" or "jwt". With jwt, admin routes require an HS256
	// bearer token carrying the admin role. TokenTTL bounds tokens issued
	// by "reelmatch token".
	AuthMode          string        `koanf:"auth_mode"`
	JWTSecret         string        `koanf:"jwt_secret"`
	TokenTTL          time.Duration `koanf:"token_ttl"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Exporter     string  `koanf:"exporter"`
	Endpoint     string  `koanf:"endpoint"`
	SamplerRatio float64 `koanf:"sampler_ratio"`
	ServiceName  string  `koanf:"service_name"`
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
