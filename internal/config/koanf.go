// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/reelmatch/config.yaml",
	"/etc/reelmatch/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8088,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Database: DatabaseConfig{
			Path:                   "/data/reelmatch.duckdb",
			MaxMemory:              "1GB",
			Threads:                0, // 0 = use runtime.NumCPU()
			PreserveInsertionOrder: true,
			RegistrySchema:         "mlops",
		},
		Dataset: DatasetConfig{
			Source: "csv",
			Path:   "/data/netflix_titles.csv",
			Table:  "stage.netflix_api",
		},
		Artifacts: ArtifactsConfig{
			Backend:         "file",
			Dir:             "/data/artifacts",
			Prefix:          "models",
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Recommend: RecommendConfig{
			NNeighbors:     10,
			Metric:         "cosine",
			ContentTypes:   []string{"movies", "shows"},
			TrainOnStartup: false,
			TrainInterval:  0, // scheduled training disabled
			TrainTimeout:   30 * time.Minute,
			MaxBatch:       100,
			EvalWorkers:    0,
			LookupTTL:      10 * time.Minute,
		},
		Events: EventsConfig{
			Backend:    "memory",
			NATSURL:    "nats://127.0.0.1:4222",
			Embedded:   false,
			StoreDir:   "/data/nats",
			Topic:      "reelmatch.models",
			ReloadRate: 1,
		},
		Security: SecurityConfig{
			AuthMode:        "none",
			TokenTTL:        24 * time.Hour,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "stdout",
			SamplerRatio: 1.0,
			ServiceName:  "reelmatch",
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// RECOMMEND_N_NEIGHBORS -> recommend.n_neighbors
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"recommend.content_types",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"registry_schema":   "database.registry_schema",

	// Dataset mappings
	"dataset_source": "dataset.source",
	"dataset_path":   "dataset.path",
	"dataset_table":  "dataset.table",

	// Artifact store mappings
	"artifact_backend":          "artifacts.backend",
	"artifact_dir":              "artifacts.dir",
	"artifact_bucket":           "artifacts.bucket",
	"artifact_prefix":           "artifacts.prefix",
	"storage_emulator_host":     "artifacts.emulator_host",
	"gcs_credentials_file":      "artifacts.credentials_file",
	"artifact_breaker_failures": "artifacts.breaker_failures",
	"artifact_breaker_timeout":  "artifacts.breaker_timeout",

	// Recommendation mappings
	"recommend_n_neighbors":      "recommend.n_neighbors",
	"recommend_metric":           "recommend.metric",
	"recommend_content_types":    "recommend.content_types",
	"recommend_train_on_startup": "recommend.train_on_startup",
	"recommend_train_interval":   "recommend.train_interval",
	"recommend_train_timeout":    "recommend.train_timeout",
	"recommend_max_batch":        "recommend.max_batch",
	"recommend_eval_workers":     "recommend.eval_workers",
	"recommend_lookup_ttl":       "recommend.lookup_ttl",

	// Event mappings
	"events_backend":     "events.backend",
	"nats_url":           "events.nats_url",
	"nats_embedded":      "events.embedded",
	"nats_store_dir":     "events.store_dir",
	"events_topic":       "events.topic",
	"events_reload_rate": "events.reload_rate",

	// Security mappings
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_ttl":             "security.token_ttl",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Tracing mappings
	"otel_enabled":                "tracing.enabled",
	"otel_exporter":               "tracing.exporter",
	"otel_exporter_otlp_endpoint": "tracing.endpoint",
	"otel_sampler_ratio":          "tracing.sampler_ratio",
	"otel_service_name":           "tracing.service_name",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so unrelated environment
// does not leak into the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
