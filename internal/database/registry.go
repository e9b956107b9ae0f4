// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/reelmatch/internal/database/query"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/evaluation"
)

const (
	// maxRecordRetries bounds retries of a run insert after a DuckDB
	// transaction conflict.
	maxRecordRetries = 3

	defaultRunsLimit = 20
	maxRunsLimit     = 1000
)

// Registry is the DuckDB-backed run registry. It implements
// recommend.RunRegistry.
type Registry struct {
	db *DB
}

// NewRegistry returns a registry over db. EnsureSchema must have run.
func NewRegistry(db *DB) *Registry {
	return &Registry{db: db}
}

var _ recommend.RunRegistry = (*Registry)(nil)

// RecordRun appends a run with its metrics and parameters in a single
// transaction. Rows share the run's CreatedAt timestamp.
func (r *Registry) RecordRun(ctx context.Context, ct recommend.ContentType, rec recommend.RunRecord) error {
	ctx, cancel := r.db.ensureContext(ctx)
	defer cancel()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	var err error
	for attempt := 1; attempt <= maxRecordRetries; attempt++ {
		start := time.Now()
		err = r.recordRunTx(ctx, ct, &rec)
		observe("insert", string(ct)+"_"+tableModelRuns, start, err)
		if err == nil || !isTransactionConflict(err) {
			break
		}
		logging.Ctx(ctx).Warn().Int("attempt", attempt).Err(err).Msg("Run insert conflicted, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return err
}

func (r *Registry) recordRunTx(ctx context.Context, ct recommend.ContentType, rec *recommend.RunRecord) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // rollback after a failed statement
		}
	}()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s
		(job_id, name, gcs_path, model_path, vectorizer_path, scaler_path, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, r.db.table(ct, tableModelRuns)),
		rec.JobID, rec.Name, rec.GCSPath, rec.ModelPath,
		nullIfEmpty(rec.VectorizerPath), nullIfEmpty(rec.ScalerPath), rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert model run: %w", err)
	}

	metricStmt := fmt.Sprintf(`INSERT INTO %s (job_id, metric_name, metric_value, created_at) VALUES (?, ?, ?, ?)`,
		r.db.table(ct, tableJobMetrics))
	for _, name := range sortedKeys(rec.Metrics) {
		if _, err = tx.ExecContext(ctx, metricStmt, rec.JobID, name, rec.Metrics[name], rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert metric %s: %w", name, err)
		}
	}

	paramStmt := fmt.Sprintf(`INSERT INTO %s (job_id, parameter_name, parameter_value, created_at) VALUES (?, ?, ?, ?)`,
		r.db.table(ct, tableJobParameters))
	for _, name := range sortedKeys(rec.Parameters) {
		if _, err = tx.ExecContext(ctx, paramStmt, rec.JobID, name, rec.Parameters[name], rec.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert parameter %s: %w", name, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", rec.JobID, err)
	}
	return nil
}

// LatestRun returns the run whose MAP@K metric was recorded most
// recently. Ties on the timestamp go to the larger job id, which sorts
// chronologically.
func (r *Registry) LatestRun(ctx context.Context, ct recommend.ContentType) (*recommend.RunInfo, error) {
	ctx, cancel := r.db.ensureContext(ctx)
	defer cancel()

	q := fmt.Sprintf(`SELECT r.job_id, r.name, r.gcs_path, r.model_path,
			m.metric_name, m.metric_value, m.created_at
		FROM %s r
		JOIN %s m ON r.job_id = m.job_id
		WHERE m.metric_name = ?
		ORDER BY m.created_at DESC, r.job_id DESC
		LIMIT 1`, r.db.table(ct, tableModelRuns), r.db.table(ct, tableJobMetrics))

	start := time.Now()
	var info recommend.RunInfo
	var name, gcsPath, modelPath sql.NullString
	err := r.db.conn.QueryRowContext(ctx, q, evaluation.MetricMAPAtK).Scan(
		&info.JobID, &name, &gcsPath, &modelPath,
		&info.MetricName, &info.MetricValue, &info.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		observe("select", string(ct)+"_"+tableModelRuns, start, nil)
		return nil, &recommend.ArtifactNotFoundError{ContentType: ct}
	}
	observe("select", string(ct)+"_"+tableModelRuns, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest %s run: %w", ct, err)
	}
	info.Name, info.GCSPath, info.ModelPath = name.String, gcsPath.String, modelPath.String
	return &info, nil
}

// ListRuns returns up to limit runs, newest first, each with its metrics
// and parameters.
func (r *Registry) ListRuns(ctx context.Context, ct recommend.ContentType, limit int) ([]recommend.RunInfo, error) {
	ctx, cancel := r.db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = defaultRunsLimit
	}
	if limit > maxRunsLimit {
		limit = maxRunsLimit
	}

	start := time.Now()
	rows, err := r.db.conn.QueryContext(ctx, fmt.Sprintf(`SELECT job_id, name, gcs_path, model_path, created_at
		FROM %s ORDER BY created_at DESC, job_id DESC LIMIT ?`, r.db.table(ct, tableModelRuns)), limit)
	if err != nil {
		observe("select", string(ct)+"_"+tableModelRuns, start, err)
		return nil, fmt.Errorf("failed to list %s runs: %w", ct, err)
	}
	defer closeWithLog(rows, "run rows")

	var runs []recommend.RunInfo
	index := make(map[string]int)
	for rows.Next() {
		var info recommend.RunInfo
		var name, gcsPath, modelPath sql.NullString
		if err := rows.Scan(&info.JobID, &name, &gcsPath, &modelPath, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		info.Name, info.GCSPath, info.ModelPath = name.String, gcsPath.String, modelPath.String
		info.Metrics = map[string]float64{}
		info.Parameters = map[string]string{}
		index[info.JobID] = len(runs)
		runs = append(runs, info)
	}
	err = rows.Err()
	observe("select", string(ct)+"_"+tableModelRuns, start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}
	if len(runs) == 0 {
		return []recommend.RunInfo{}, nil
	}

	jobIDs := make([]string, len(runs))
	for i := range runs {
		jobIDs[i] = runs[i].JobID
	}
	if err := r.attachMetrics(ctx, ct, jobIDs, runs, index); err != nil {
		return nil, err
	}
	if err := r.attachParameters(ctx, ct, jobIDs, runs, index); err != nil {
		return nil, err
	}
	for i := range runs {
		if v, ok := runs[i].Metrics[evaluation.MetricMAPAtK]; ok {
			runs[i].MetricName = evaluation.MetricMAPAtK
			runs[i].MetricValue = v
		}
	}
	return runs, nil
}

func (r *Registry) attachMetrics(ctx context.Context, ct recommend.ContentType, jobIDs []string, runs []recommend.RunInfo, index map[string]int) error {
	where, args := query.NewWhereBuilder().AddIn("job_id", jobIDs).Build()
	rows, err := r.db.conn.QueryContext(ctx, fmt.Sprintf(`SELECT job_id, metric_name, metric_value FROM %s WHERE %s`,
		r.db.table(ct, tableJobMetrics), where), args...)
	if err != nil {
		return fmt.Errorf("failed to query metrics: %w", err)
	}
	defer closeWithLog(rows, "metric rows")

	for rows.Next() {
		var jobID, name string
		var value float64
		if err := rows.Scan(&jobID, &name, &value); err != nil {
			return fmt.Errorf("failed to scan metric row: %w", err)
		}
		if i, ok := index[jobID]; ok {
			runs[i].Metrics[name] = value
		}
	}
	return rows.Err()
}

func (r *Registry) attachParameters(ctx context.Context, ct recommend.ContentType, jobIDs []string, runs []recommend.RunInfo, index map[string]int) error {
	where, args := query.NewWhereBuilder().AddIn("job_id", jobIDs).Build()
	rows, err := r.db.conn.QueryContext(ctx, fmt.Sprintf(`SELECT job_id, parameter_name, parameter_value FROM %s WHERE %s`,
		r.db.table(ct, tableJobParameters), where), args...)
	if err != nil {
		return fmt.Errorf("failed to query parameters: %w", err)
	}
	defer closeWithLog(rows, "parameter rows")

	for rows.Next() {
		var jobID, name string
		var value sql.NullString
		if err := rows.Scan(&jobID, &name, &value); err != nil {
			return fmt.Errorf("failed to scan parameter row: %w", err)
		}
		if i, ok := index[jobID]; ok {
			runs[i].Parameters[name] = value.String
		}
	}
	return rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// conflictMarkers are the DuckDB messages for optimistic concurrency
// failures. These are safe to retry.
var conflictMarkers = []string{
	"Transaction conflict",
	"Conflict on update",
	"cannot update a table that has been altered",
}

func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range conflictMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
