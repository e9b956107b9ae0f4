// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package evaluation

import (
	"context"
	"math"
	"testing"

	"github.com/tomtom215/reelmatch/internal/recommend/index"
	"github.com/tomtom215/reelmatch/internal/recommend/vector"
)

func genres(names ...string) []map[string]struct{} {
	out := make([]map[string]struct{}, len(names))
	for i, n := range names {
		out[i] = map[string]struct{}{n: {}}
	}
	return out
}

func lineIndex(t *testing.T, points ...float64) *index.Index {
	t.Helper()
	rows := make([]vector.Sparse, len(points))
	for i, p := range points {
		rows[i] = vector.FromDense([]float64{p})
	}
	ix, err := index.New(index.Euclidean, rows)
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

func TestAveragePrecision(t *testing.T) {
	tests := []struct {
		name   string
		rel    []bool
		want   float64
		wantOK bool
	}{
		{"all relevant", []bool{true, true, true}, 1, true},
		{"first and third", []bool{true, false, true}, (1 + 2.0/3.0) / 2, true},
		{"second only", []bool{false, true}, 0.5, true},
		{"none", []bool{false, false}, 0, false},
		{"empty", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AveragePrecision(tt.rel)
			if ok != tt.wantOK || math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("AveragePrecision(%v) = (%v, %v), want (%v, %v)", tt.rel, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExcludeSelf(t *testing.T) {
	nb := []index.Neighbor{{Index: 4}, {Index: 2}, {Index: 7}}
	got := ExcludeSelf(nb, 2)
	if len(got) != 2 || got[0] != 4 || got[1] != 7 {
		t.Errorf("ExcludeSelf with self present = %v, want [4 7]", got)
	}
	got = ExcludeSelf(nb, 9)
	if len(got) != 2 || got[0] != 4 || got[1] != 2 {
		t.Errorf("ExcludeSelf with self absent = %v, want [4 2]", got)
	}
	if got := ExcludeSelf(nil, 0); got != nil {
		t.Errorf("ExcludeSelf(nil) = %v", got)
	}
}

func TestListLen(t *testing.T) {
	for k, want := range map[int]int{1: 1, 2: 1, 3: 2, 10: 9} {
		if got := ListLen(k); got != want {
			t.Errorf("ListLen(%d) = %d, want %d", k, got, want)
		}
	}
}

func TestEvaluateIdenticalRowsAtKOne(t *testing.T) {
	row := vector.FromDense([]float64{0.6, 0.8})
	ix, err := index.New(index.Cosine, []vector.Sparse{row, row})
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []int{1, 2, 5} {
		res, err := Evaluate(context.Background(), Input{Index: ix, Genres: genres("A", "A"), K: k, Policy: IncludeZeroRelevance})
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if res.Coverage != 1 {
			t.Errorf("k=%d Coverage = %v, want 1", k, res.Coverage)
		}
		if res.MAPAtK != 1 {
			t.Errorf("k=%d MAP@K = %v, want 1", k, res.MAPAtK)
		}
	}
}

func TestEvaluateZeroRelevancePolicies(t *testing.T) {
	ix := lineIndex(t, 0, 1, 2, 10)
	g := genres("A", "A", "B", "B")

	tests := []struct {
		name     string
		policy   ZeroRelevancePolicy
		wantMAP  float64
		wantRows int
	}{
		{"series skips", SkipZeroRelevance, 1, 3},
		{"movies include as zero", IncludeZeroRelevance, 0.75, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Evaluate(context.Background(), Input{Index: ix, Genres: g, K: 3, Policy: tt.policy, Workers: 2})
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(res.MAPAtK-tt.wantMAP) > 1e-12 {
				t.Errorf("MAP@K = %v, want %v", res.MAPAtK, tt.wantMAP)
			}
			if res.MAPRows != tt.wantRows {
				t.Errorf("MAPRows = %d, want %d", res.MAPRows, tt.wantRows)
			}
			if math.Abs(res.Coverage-0.75) > 1e-12 {
				t.Errorf("Coverage = %v, want 0.75", res.Coverage)
			}
			if math.Abs(res.IntraListSimilarity-0.5) > 1e-12 {
				t.Errorf("ILS = %v, want 0.5", res.IntraListSimilarity)
			}
		})
	}
}

func TestEvaluateSingleNeighborExcludedFromILS(t *testing.T) {
	ix := lineIndex(t, 0, 1, 3)
	res, err := Evaluate(context.Background(), Input{Index: ix, Genres: genres("A", "A", "A"), K: 2})
	if err != nil {
		t.Fatal(err)
	}
	if res.ILSRows != 0 || res.IntraListSimilarity != 0 {
		t.Errorf("ILS rows = %d value = %v, want 0 and 0", res.ILSRows, res.IntraListSimilarity)
	}
	if res.MAPAtK != 1 {
		t.Errorf("MAP@K = %v, want 1", res.MAPAtK)
	}
}

func TestEvaluateBounds(t *testing.T) {
	ix := lineIndex(t, 1, 2, 3, 4, 5, 6, 7)
	g := genres("A", "B", "A", "C", "B", "A", "C")
	for _, k := range []int{1, 2, 3, 7, 50} {
		res, err := Evaluate(context.Background(), Input{Index: ix, Genres: g, K: k, Policy: IncludeZeroRelevance})
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}
		if res.MAPAtK < 0 || res.MAPAtK > 1 {
			t.Errorf("k=%d MAP@K = %v out of [0,1]", k, res.MAPAtK)
		}
		if res.Coverage < 0 || res.Coverage > 1 {
			t.Errorf("k=%d Coverage = %v out of [0,1]", k, res.Coverage)
		}
	}
}

func TestEvaluateDeterministicAcrossWorkers(t *testing.T) {
	ix := lineIndex(t, 3, 1, 4, 1, 5, 9, 2, 6)
	g := genres("A", "B", "A", "B", "C", "C", "A", "B")
	base, err := Evaluate(context.Background(), Input{Index: ix, Genres: g, K: 4, Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []int{0, 3, 8} {
		got, err := Evaluate(context.Background(), Input{Index: ix, Genres: g, K: 4, Workers: w})
		if err != nil {
			t.Fatal(err)
		}
		if got != base {
			t.Errorf("workers=%d: %+v != %+v", w, got, base)
		}
	}
}

func TestEvaluateValidation(t *testing.T) {
	if _, err := Evaluate(context.Background(), Input{}); err == nil {
		t.Error("expected error for nil index")
	}
	ix := lineIndex(t, 1, 2)
	if _, err := Evaluate(context.Background(), Input{Index: ix, Genres: genres("A"), K: 2}); err == nil {
		t.Error("expected error for genre length mismatch")
	}
}
