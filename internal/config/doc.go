// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package config provides centralized configuration management for Reelmatch.

# Configuration Sources

LoadWithKoanf merges three layers, later layers winning:
  - Built-in defaults (defaultConfig)
  - An optional YAML file: CONFIG_PATH, ./config.yaml or /etc/reelmatch/config.yaml
  - Environment variables, through an explicit name mapping

Environment variables that are not in the mapping are ignored.

# Configuration Structure

  - ServerConfig: HTTP listener
  - LoggingConfig: zerolog level, format and caller info
  - DatabaseConfig: DuckDB file, memory limit and registry schema
  - DatasetConfig: where the training catalog is read from
  - ArtifactsConfig: artifact backend (file, gcs, badger) and its circuit breaker
  - RecommendConfig: training defaults, schedule and serving limits
  - EventsConfig: model event transport (in-process or NATS)
  - SecurityConfig: admin authentication, CORS and rate limiting
  - TracingConfig: OpenTelemetry exporter

# Example

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatal(err)
	}
	fmt.Println(cfg.Recommend.NNeighbors)

Slice settings (CORS_ORIGINS, RECOMMEND_CONTENT_TYPES) accept comma-separated
values in the environment.
*/
package config
