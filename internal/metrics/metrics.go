// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Training Metrics
	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_training_runs_total",
			Help: "Total number of training runs by outcome",
		},
		[]string{"content_type", "status"}, // "success", "empty", "storage_error", "error", "busy"
	)

	TrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_training_duration_seconds",
			Help:    "Duration of training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180, 600, 1800},
		},
		[]string{"content_type"},
	)

	TrainingRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmatch_training_rows",
			Help: "Number of rows in the last successful training set",
		},
		[]string{"content_type"},
	)

	TrainingRowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_training_rows_dropped_total",
			Help: "Total number of catalog rows excluded from training",
		},
		[]string{"content_type", "reason"}, // "missing_title", "invalid_numeric"
	)

	ModelQuality = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reelmatch_model_quality",
			Help: "Quality metrics of the most recent training run",
		},
		[]string{"content_type", "metric"},
	)

	// Serving Metrics
	RecommendItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_recommend_items_total",
			Help: "Total number of query items processed",
		},
		[]string{"content_type", "status"}, // "ok", "error"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_recommend_duration_seconds",
			Help:    "Duration of recommendation batches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"content_type"},
	)

	ModelReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_model_reloads_total",
			Help: "Total number of model loads",
		},
		[]string{"content_type", "status"},
	)

	// Storage Metrics
	ArtifactOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_artifact_operations_total",
			Help: "Total number of artifact store operations",
		},
		[]string{"backend", "operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reelmatch_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reelmatch_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_events_published_total",
			Help: "Total number of model events published",
		},
		[]string{"topic", "status"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reelmatch_events_consumed_total",
			Help: "Total number of model events consumed",
		},
		[]string{"topic", "status"},
	)
)

// RecordTrainingRun records the outcome and duration of a training run.
func RecordTrainingRun(contentType, status string, duration time.Duration) {
	TrainingRunsTotal.WithLabelValues(contentType, status).Inc()
	TrainingDuration.WithLabelValues(contentType).Observe(duration.Seconds())
}

// RecordTrainingRows sets the training set size and counts dropped rows.
func RecordTrainingRows(contentType string, rows int, dropped map[string]int) {
	TrainingRows.WithLabelValues(contentType).Set(float64(rows))
	for reason, n := range dropped {
		if n > 0 {
			TrainingRowsDropped.WithLabelValues(contentType, reason).Add(float64(n))
		}
	}
}

// SetModelQuality publishes one evaluation metric.
func SetModelQuality(contentType, metric string, value float64) {
	ModelQuality.WithLabelValues(contentType, metric).Set(value)
}

// RecordRecommendBatch records a served batch.
func RecordRecommendBatch(contentType string, ok, failed int, duration time.Duration) {
	RecommendItemsTotal.WithLabelValues(contentType, "ok").Add(float64(ok))
	if failed > 0 {
		RecommendItemsTotal.WithLabelValues(contentType, "error").Add(float64(failed))
	}
	RecommendDuration.WithLabelValues(contentType).Observe(duration.Seconds())
}

// RecordModelReload records a model load attempt.
func RecordModelReload(contentType string, err error) {
	ModelReloadsTotal.WithLabelValues(contentType, statusOf(err)).Inc()
}

// RecordArtifactOperation records one artifact store call.
func RecordArtifactOperation(backend, operation string, err error) {
	ArtifactOperationsTotal.WithLabelValues(backend, operation, statusOf(err)).Inc()
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordEventPublished records a publish attempt.
func RecordEventPublished(topic string, err error) {
	EventsPublished.WithLabelValues(topic, statusOf(err)).Inc()
}

// RecordEventConsumed records a handled event.
func RecordEventConsumed(topic string, err error) {
	EventsConsumed.WithLabelValues(topic, statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
