// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package main is the entry point for the Reelmatch recommendation server.
//
// Reelmatch trains content-based nearest-neighbour models over a streaming
// catalog, one pipeline per content type (movies and shows), records every
// run in a DuckDB registry and serves recommendations from the best run.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml, environment (Koanf v2)
//  2. Logging and tracing: zerolog, optional OpenTelemetry exporter
//  3. Database: DuckDB with the run registry schema applied
//  4. Artifact store: file, GCS or BadgerDB behind a circuit breaker
//  5. Event bus: in-process channel, or NATS JetStream with -tags nats
//  6. Authentication: JWT-guarded admin routes, or AUTH_MODE=none
//  7. Supervisor tree: training, hot reload and the HTTP API
//
// # Build Tags
//
//	go build ./cmd/server                 # in-process events only
//	go build -tags "nats" ./cmd/server    # enable NATS JetStream events
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for up to 10s, then the event bus, artifact store and
// database are closed in that order.
//
// # Example Usage
//
// Development, training on startup from a local CSV:
//
//	export DATASET_PATH=./netflix_titles.csv
//	export DUCKDB_PATH=./data/reelmatch.duckdb
//	export ARTIFACT_DIR=./data/artifacts
//	export RECOMMEND_TRAIN_ON_STARTUP=true
//	./reelmatch-server
//
// Production with GCS artifacts and JWT:
//
//	export ENVIRONMENT=production
//	export AUTH_MODE=jwt
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ARTIFACT_BACKEND=gcs
//	export ARTIFACT_BUCKET=my-models
//	export RECOMMEND_TRAIN_INTERVAL=24h
//	./reelmatch-server
package main
