// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/reelmatch/internal/metrics"
)

func TestPrometheusMetrics_RoutePatternLabel(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Post("/api/v1/{contentType}/recommend", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodPost, "/api/v1/{contentType}/recommend", "400")
	before := testutil.ToFloat64(counter)

	for _, ct := range []string{"movies", "shows"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/"+ct+"/recommend", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("requests recorded under route pattern = %v, want 2", got)
	}
}

func TestPrometheusMetrics_UnmatchedRoute(t *testing.T) {
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "200")
	before := testutil.ToFloat64(counter)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/random/path", nil))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("unmatched requests recorded = %v, want 1", got)
	}
}

func TestMetricsResponseWriter_FirstStatusWins(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", rw.statusCode)
	}
	if rw.Unwrap() != rec {
		t.Error("Unwrap() did not return the underlying writer")
	}
}
