// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package vector

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestFromMapSortsAndDropsZeros(t *testing.T) {
	s := FromMap(5, map[int]float64{4: 1, 0: 2, 2: 0})
	if s.Dim != 5 {
		t.Errorf("Dim = %d, want 5", s.Dim)
	}
	if len(s.Indices) != 2 || s.Indices[0] != 0 || s.Indices[1] != 4 {
		t.Errorf("Indices = %v, want [0 4]", s.Indices)
	}
	if s.Values[0] != 2 || s.Values[1] != 1 {
		t.Errorf("Values = %v, want [2 1]", s.Values)
	}
}

func TestDistances(t *testing.T) {
	a := FromDense([]float64{1, 0, 2, 0})
	b := FromDense([]float64{0, 3, 2, 1})

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"dot", Dot(a, b), 4},
		{"euclidean", Euclidean(a, b), math.Sqrt(1 + 9 + 0 + 1)},
		{"manhattan", Manhattan(a, b), 5},
		{"cosine", CosineSimilarity(a, b), 4 / (math.Sqrt(5) * math.Sqrt(14))},
		{"cosine self", CosineSimilarity(a, a), 1},
		{"cosine zero", CosineSimilarity(a, Sparse{Dim: 4}), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if math.Abs(tt.got-tt.want) > eps {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
}

func TestConcatOffsetsDenseColumns(t *testing.T) {
	s := FromDense([]float64{0, 1, 0})
	c := Concat(s, []float64{0.5, 0, -2})
	want := []float64{0, 1, 0, 0.5, 0, -2}
	got := c.Dense()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("col %d = %v, want %v", i, got[i], want[i])
		}
	}
	if len(s.Indices) != 1 {
		t.Error("Concat mutated its input")
	}
}

func TestNormalize(t *testing.T) {
	n := FromDense([]float64{3, 4}).Normalize()
	if math.Abs(n.Norm()-1) > eps {
		t.Errorf("Norm = %v, want 1", n.Norm())
	}
	z := Sparse{Dim: 2}.Normalize()
	if z.NNZ() != 0 {
		t.Errorf("zero vector NNZ = %d, want 0", z.NNZ())
	}
}
