// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
)

// defaultQueryTimeout bounds queries whose context carries no deadline.
const defaultQueryTimeout = 30 * time.Second

// ensureContext applies defaultQueryTimeout when ctx has no deadline.
func (db *DB) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultQueryTimeout)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, defaultQueryTimeout)
	}
	return ctx, func() {}
}

// observe records the duration and outcome of a query.
func observe(operation, table string, start time.Time, err error) {
	metrics.RecordDBQuery(operation, table, time.Since(start), err)
}

// Checkpoint forces a WAL checkpoint
func (db *DB) Checkpoint(ctx context.Context) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// quoteLiteral renders s as a SQL string literal. Used where DuckDB does
// not accept a bound parameter, such as table function arguments.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// quoteIdent renders a possibly schema-qualified identifier.
func quoteIdent(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(parts, ".")
}

// closeWithLog closes c and logs a failure. Used for deferred closes of
// rows and readers whose errors cannot change the result.
func closeWithLog(c io.Closer, what string) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.Warn().Str("resource", what).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly is for error paths, where the original error is returned.
func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close() //nolint:errcheck // the caller already has an error to return
	}
}
