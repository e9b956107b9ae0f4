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

// Migration represents a versioned database migration.
type Migration struct {
	Version     int       // Unique version number (monotonically increasing)
	Name        string    // Human-readable migration name
	Description string    // Description of what this migration does
	Statements  []string  // SQL statements, executed in order
	AppliedAt   time.Time // When the migration was applied (populated on query)
}

func (db *DB) migrationsTable() string {
	return quoteIdent(db.schema + ".schema_migrations")
}

// getMigrations returns all versioned migrations in order.
//
// Migrations MUST be append-only - never modify or remove existing migrations
// once a registry holds data.
func (db *DB) getMigrations() []Migration {
	var artifactPaths []string
	for _, ct := range recommend.ContentTypes {
		runs := db.table(ct, tableModelRuns)
		artifactPaths = append(artifactPaths,
			fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS vectorizer_path VARCHAR", runs),
			fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS scaler_path VARCHAR", runs),
		)
	}
	return []Migration{
		{
			Version:     1,
			Name:        "add_artifact_paths",
			Description: "Record vectorizer and scaler locations next to the model path",
			Statements:  artifactPaths,
		},
	}
}

// getAppliedMigrations returns a map of version -> Migration for all applied migrations
func (db *DB) getAppliedMigrations(ctx context.Context) (map[int]Migration, error) {
	rows, err := db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT version, name, description, applied_at FROM %s ORDER BY version`, db.migrationsTable()))
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer closeWithLog(rows, "migration rows")

	applied := make(map[int]Migration)
	for rows.Next() {
		var m Migration
		if err := rows.Scan(&m.Version, &m.Name, &m.Description, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[m.Version] = m
	}
	return applied, rows.Err()
}

// runVersionedMigrations executes only new migrations that haven't been applied yet.
func (db *DB) runVersionedMigrations(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		version INTEGER PRIMARY KEY,
		name VARCHAR NOT NULL,
		description VARCHAR,
		applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, db.migrationsTable()))
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	newMigrations := 0
	for _, m := range db.getMigrations() {
		if _, exists := applied[m.Version]; exists {
			continue
		}
		for _, stmt := range m.Statements {
			if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to execute migration v%d (%s): %w", m.Version, m.Name, err)
			}
		}
		_, err := db.conn.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s (version, name, description) VALUES (?, ?, ?)`, db.migrationsTable()),
			m.Version, m.Name, m.Description)
		if err != nil {
			return fmt.Errorf("failed to record migration v%d: %w", m.Version, err)
		}
		newMigrations++
	}

	if newMigrations > 0 {
		logging.Info().Int("count", newMigrations).Msg("Applied database migrations")
	}
	return nil
}

// GetCurrentSchemaVersion returns the highest applied migration version
func (db *DB) GetCurrentSchemaVersion(ctx context.Context) (int, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var version int
	err := db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COALESCE(MAX(version), 0) FROM %s`, db.migrationsTable())).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}
