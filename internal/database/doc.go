// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package database provides the DuckDB data layer for Reelmatch.
//
// # Overview
//
// A single DuckDB database hosts two things:
//   - the run registry: per content type, the model_runs, job_metrics and
//     job_parameters tables in the registry schema (default "mlops")
//   - for table datasets, the catalog the trainer reads from
//
// CSV datasets are read with read_csv_auto, either from a local path or
// from a gs:// object downloaded to a temporary file first.
//
// # Architecture
//
//   - database.go: connection lifecycle (DSN, pool, ping, checkpoint on close)
//   - database_utils.go: query timeouts, metrics and close helpers
//   - database_schema.go: EnsureSchema, the registry DDL
//   - migrations.go: versioned, append-only migrations
//   - registry.go: Registry, the recommend.RunRegistry implementation, with
//     retries on DuckDB transaction conflicts
//   - catalog.go: Catalog, the recommend.CatalogSource implementation, and
//     title to showType lookup
//   - query/: WHERE clause builder
//
// # Model Selection
//
// Registry.LatestRun returns the run whose MAP@K metric row is the most
// recent, not the best scoring one:
//
//	SELECT r.job_id, ..., m.created_at
//	FROM mlops.movies_model_runs r
//	JOIN mlops.movies_job_metrics m ON r.job_id = m.job_id
//	WHERE m.metric_name = 'MAP@K'
//	ORDER BY m.created_at DESC, r.job_id DESC
//	LIMIT 1
//
// # Thread Safety
//
// DB, Registry and Catalog are safe for concurrent use. Run inserts
// retry on DuckDB transaction conflicts.
package database
