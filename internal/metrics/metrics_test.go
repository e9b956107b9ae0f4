// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("write gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestRecordTrainingRun(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      string
	}{
		{"successful movies run", "movies", "success"},
		{"empty shows run", "shows", "empty"},
		{"storage failure", "shows", "storage_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues(tt.contentType, tt.status))
			RecordTrainingRun(tt.contentType, tt.status, 2*time.Second)
			after := testutil.ToFloat64(TrainingRunsTotal.WithLabelValues(tt.contentType, tt.status))
			if after != before+1 {
				t.Errorf("counter = %v, want %v", after, before+1)
			}
		})
	}
}

func TestRecordTrainingRows(t *testing.T) {
	before := testutil.ToFloat64(TrainingRowsDropped.WithLabelValues("shows", "invalid_numeric"))
	RecordTrainingRows("shows", 120, map[string]int{"invalid_numeric": 3, "missing_title": 0})

	if got := gaugeValue(t, TrainingRows.WithLabelValues("shows")); got != 120 {
		t.Errorf("rows gauge = %v, want 120", got)
	}
	after := testutil.ToFloat64(TrainingRowsDropped.WithLabelValues("shows", "invalid_numeric"))
	if after != before+3 {
		t.Errorf("dropped = %v, want %v", after, before+3)
	}
}

func TestSetModelQuality(t *testing.T) {
	SetModelQuality("movies", "MAP@K", 0.42)
	if got := gaugeValue(t, ModelQuality.WithLabelValues("movies", "MAP@K")); got != 0.42 {
		t.Errorf("quality = %v, want 0.42", got)
	}
}

func TestRecordRecommendBatch(t *testing.T) {
	okBefore := testutil.ToFloat64(RecommendItemsTotal.WithLabelValues("movies", "ok"))
	errBefore := testutil.ToFloat64(RecommendItemsTotal.WithLabelValues("movies", "error"))
	RecordRecommendBatch("movies", 4, 1, 15*time.Millisecond)
	if got := testutil.ToFloat64(RecommendItemsTotal.WithLabelValues("movies", "ok")); got != okBefore+4 {
		t.Errorf("ok = %v, want %v", got, okBefore+4)
	}
	if got := testutil.ToFloat64(RecommendItemsTotal.WithLabelValues("movies", "error")); got != errBefore+1 {
		t.Errorf("error = %v, want %v", got, errBefore+1)
	}
}

func TestStatusLabels(t *testing.T) {
	before := testutil.ToFloat64(ModelReloadsTotal.WithLabelValues("shows", "error"))
	RecordModelReload("shows", errors.New("no model"))
	if got := testutil.ToFloat64(ModelReloadsTotal.WithLabelValues("shows", "error")); got != before+1 {
		t.Errorf("reload errors = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(ArtifactOperationsTotal.WithLabelValues("file", "put", "success"))
	RecordArtifactOperation("file", "put", nil)
	if got := testutil.ToFloat64(ArtifactOperationsTotal.WithLabelValues("file", "put", "success")); got != before+1 {
		t.Errorf("artifact ops = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := gaugeValue(t, APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := gaugeValue(t, APIActiveRequests); got != start+2 {
		t.Errorf("active = %v, want %v", got, start+2)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := gaugeValue(t, APIActiveRequests); got != start {
		t.Errorf("active = %v, want %v", got, start)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/{contentType}/recommend", "200"))
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			RecordAPIRequest("POST", "/api/v1/{contentType}/recommend", "200", time.Millisecond)
		}()
	}
	wg.Wait()
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("POST", "/api/v1/{contentType}/recommend", "200"))
	if after != before+50 {
		t.Errorf("requests = %v, want %v", after, before+50)
	}
}
