// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package index

import (
	"bytes"
	"context"
	"encoding/gob"
	"math"
	"testing"

	"github.com/tomtom215/reelmatch/internal/recommend/vector"
)

func rows(dense ...[]float64) []vector.Sparse {
	out := make([]vector.Sparse, len(dense))
	for i, d := range dense {
		out[i] = vector.FromDense(d)
	}
	return out
}

func TestParseMetric(t *testing.T) {
	tests := []struct {
		in      string
		want    Metric
		wantErr bool
	}{
		{"cosine", Cosine, false},
		{"Euclidean", Euclidean, false},
		{" manhattan ", Manhattan, false},
		{"jaccard", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMetric(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKNeighborsOrderingAndTies(t *testing.T) {
	ix, err := New(Euclidean, rows(
		[]float64{0, 0},
		[]float64{1, 0},
		[]float64{0, 1},
		[]float64{5, 5},
	))
	if err != nil {
		t.Fatal(err)
	}
	got, err := ix.KNeighbors(vector.FromDense([]float64{0, 0}), 3)
	if err != nil {
		t.Fatal(err)
	}
	wantIdx := []int{0, 1, 2}
	for i, w := range wantIdx {
		if got[i].Index != w {
			t.Errorf("rank %d index = %d, want %d", i, got[i].Index, w)
		}
	}
	if got[0].Distance != 0 || got[1].Distance != 1 || got[2].Distance != 1 {
		t.Errorf("distances = %+v", got)
	}
}

func TestKNeighborsClampsK(t *testing.T) {
	ix, err := New(Cosine, rows([]float64{1, 0}, []float64{0, 1}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := ix.KNeighbors(vector.FromDense([]float64{1, 0}), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if got[0].Index != 0 || math.Abs(got[0].Distance) > 1e-12 {
		t.Errorf("self should rank first with distance 0, got %+v", got[0])
	}
	if math.Abs(got[1].Distance-1) > 1e-12 {
		t.Errorf("orthogonal distance = %v, want 1", got[1].Distance)
	}
}

func TestCosineZeroVectorDistanceIsOne(t *testing.T) {
	ix, err := New(Cosine, rows([]float64{1, 1}, []float64{0, 0}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := ix.KNeighbors(vector.Sparse{Dim: 2}, 2)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range got {
		if n.Distance != 1 {
			t.Errorf("distance to zero query = %v, want 1", n.Distance)
		}
	}
	if got[0].Index != 0 {
		t.Errorf("tie should resolve to lowest index, got %d", got[0].Index)
	}
}

func TestManhattan(t *testing.T) {
	ix, err := New(Manhattan, rows([]float64{0, 0}, []float64{2, 2}, []float64{3, 0}))
	if err != nil {
		t.Fatal(err)
	}
	got, err := ix.KNeighbors(vector.FromDense([]float64{0, 0}), 3)
	if err != nil {
		t.Fatal(err)
	}
	if got[1].Index != 2 || got[1].Distance != 3 || got[2].Distance != 4 {
		t.Errorf("got %+v", got)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Cosine, nil); err == nil {
		t.Error("expected error for empty rows")
	}
	if _, err := New("hamming", rows([]float64{1})); err == nil {
		t.Error("expected error for unknown metric")
	}
	if _, err := New(Cosine, []vector.Sparse{{Dim: 2}, {Dim: 3}}); err == nil {
		t.Error("expected error for mismatched dimensions")
	}
	ix, _ := New(Cosine, rows([]float64{1, 0}))
	if _, err := ix.KNeighbors(vector.Sparse{Dim: 5}, 1); err == nil {
		t.Error("expected error for query dimension mismatch")
	}
}

func TestKNeighborsBatchMatchesSingle(t *testing.T) {
	data := rows(
		[]float64{1, 0, 0},
		[]float64{0.9, 0.1, 0},
		[]float64{0, 1, 0},
		[]float64{0, 0.8, 0.2},
		[]float64{0, 0, 1},
	)
	ix, err := New(Cosine, data)
	if err != nil {
		t.Fatal(err)
	}
	batch, err := ix.KNeighborsBatch(context.Background(), data, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	for i, q := range data {
		single, _ := ix.KNeighbors(q, 3)
		for r := range single {
			if batch[i][r] != single[r] {
				t.Errorf("query %d rank %d: batch %+v, single %+v", i, r, batch[i][r], single[r])
			}
		}
	}
}

func TestGobRoundTripKeepsResults(t *testing.T) {
	data := rows([]float64{1, 2}, []float64{2, 1}, []float64{0, 3})
	ix, err := New(Cosine, data)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(ix); err != nil {
		t.Fatal(err)
	}
	var restored Index
	if err := gob.NewDecoder(&buf).Decode(&restored); err != nil {
		t.Fatal(err)
	}
	if restored.Metric() != Cosine || restored.Len() != 3 {
		t.Fatalf("restored metric=%q len=%d", restored.Metric(), restored.Len())
	}
	a, _ := ix.KNeighbors(data[0], 3)
	b, _ := restored.KNeighbors(data[0], 3)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("rank %d: %+v != %+v", i, a[i], b[i])
		}
	}
}
