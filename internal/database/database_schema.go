// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 60*time.Second)
}

// Registry table kinds; the table name is "{contentType}_{kind}".
const (
	tableModelRuns     = "model_runs"
	tableJobMetrics    = "job_metrics"
	tableJobParameters = "job_parameters"
)

// table returns the quoted name of a registry table.
func (db *DB) table(ct recommend.ContentType, kind string) string {
	return quoteIdent(db.schema + "." + string(ct) + "_" + kind)
}

// EnsureSchema creates the registry schema and the run, metric and
// parameter tables of every content type, then applies pending
// migrations. It is idempotent.
func (db *DB) EnsureSchema(ctx context.Context) error {
	ctx, cancel := schemaContext(ctx)
	defer cancel()

	queries := []string{fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", quoteIdent(db.schema))}
	for _, ct := range recommend.ContentTypes {
		queries = append(queries, db.getTableCreationQueries(ct)...)
	}
	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	if err := db.runVersionedMigrations(ctx); err != nil {
		return err
	}

	logging.Info().Str("schema", db.schema).Msg("Registry schema ready")
	return nil
}

// getTableCreationQueries returns the table creation SQL statements
func (db *DB) getTableCreationQueries(ct recommend.ContentType) []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			job_id VARCHAR PRIMARY KEY,
			name VARCHAR,
			gcs_path VARCHAR,
			model_path VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, db.table(ct, tableModelRuns)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			job_id VARCHAR,
			metric_name VARCHAR,
			metric_value DOUBLE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, db.table(ct, tableJobMetrics)),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			job_id VARCHAR,
			parameter_name VARCHAR,
			parameter_value VARCHAR,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, db.table(ct, tableJobParameters)),
	}
}
