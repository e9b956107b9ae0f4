// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8088/metrics

# Available Metrics

Training:
  - reelmatch_training_runs_total: Completed training runs (counter)
    Labels: content_type, status
  - reelmatch_training_duration_seconds: Training wall time (histogram)
    Labels: content_type
  - reelmatch_training_rows: Rows used by the last successful run (gauge)
    Labels: content_type
  - reelmatch_training_rows_dropped_total: Rows excluded from training (counter)
    Labels: content_type, reason
  - reelmatch_model_quality: Quality metrics of the last run (gauge)
    Labels: content_type, metric

Serving:
  - reelmatch_recommend_items_total: Query items served (counter)
    Labels: content_type, status
  - reelmatch_recommend_duration_seconds: Batch latency (histogram)
    Labels: content_type
  - reelmatch_model_reloads_total: Model loads and swaps (counter)
    Labels: content_type, status

Storage:
  - reelmatch_artifact_operations_total: Artifact store calls (counter)
    Labels: backend, operation, status
  - reelmatch_duckdb_query_duration_seconds: Registry/catalog query time (histogram)
    Labels: operation, table

HTTP:
  - reelmatch_api_requests_total, reelmatch_api_request_duration_seconds,
    reelmatch_api_active_requests

Events:
  - reelmatch_events_published_total, reelmatch_events_consumed_total
    Labels: topic, status

# Usage

	metrics.RecordTrainingRun("shows", "success", time.Since(start))
	metrics.SetModelQuality("shows", "MAP@K", 0.41)
*/
package metrics
