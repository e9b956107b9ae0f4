// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
)

// DB wraps the DuckDB connection that hosts the run registry and, for
// table datasets, the catalog.
type DB struct {
	conn   *sql.DB
	cfg    *config.DatabaseConfig
	schema string
}

// New opens the database. The registry schema is not created here; call
// EnsureSchema.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	if cfg.Path != ":memory:" {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	conn, err := sql.Open("duckdb", dsn(cfg, threads))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// The registry sees a handful of writes per training run; the pool
	// only has to cover concurrent reads from /predict and /models.
	conn.SetMaxOpenConns(threads)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	schema := cfg.RegistrySchema
	if schema == "" {
		schema = "mlops"
	}
	db := &DB{conn: conn, cfg: cfg, schema: schema}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logging.Debug().Str("path", cfg.Path).Int("threads", threads).Str("schema", schema).Msg("DuckDB opened")
	return db, nil
}

func dsn(cfg *config.DatabaseConfig, threads int) string {
	q := url.Values{}
	q.Set("access_mode", "read_write")
	q.Set("threads", strconv.Itoa(threads))
	q.Set("preserve_insertion_order", strconv.FormatBool(cfg.PreserveInsertionOrder))
	if cfg.MaxMemory != "" {
		q.Set("max_memory", cfg.MaxMemory)
	}
	return cfg.Path + "?" + q.Encode()
}

// Conn returns the underlying SQL database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Schema returns the registry schema name.
func (db *DB) Schema() string {
	return db.schema
}

// Close checkpoints the WAL and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()
	return db.conn.Close()
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return db.conn.PingContext(ctx)
}
