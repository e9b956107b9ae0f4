// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package vector implements the sparse row vectors that make up a feature
// matrix: TF-IDF columns followed by optional dense numeric columns.
package vector

import (
	"math"
	"sort"
)

// Sparse is a sparse float64 vector. Indices are strictly ascending and
// every stored value is non-zero.
type Sparse struct {
	Dim     int
	Indices []int
	Values  []float64
}

// FromMap builds a Sparse vector of the given dimension from index/value
// pairs. Zero values are dropped.
func FromMap(dim int, m map[int]float64) Sparse {
	idx := make([]int, 0, len(m))
	for i, v := range m {
		if v != 0 {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	vals := make([]float64, len(idx))
	for k, i := range idx {
		vals[k] = m[i]
	}
	return Sparse{Dim: dim, Indices: idx, Values: vals}
}

// FromDense converts a dense slice into a Sparse vector.
func FromDense(d []float64) Sparse {
	s := Sparse{Dim: len(d)}
	for i, v := range d {
		if v != 0 {
			s.Indices = append(s.Indices, i)
			s.Values = append(s.Values, v)
		}
	}
	return s
}

// Dense expands the vector.
func (s Sparse) Dense() []float64 {
	out := make([]float64, s.Dim)
	for k, i := range s.Indices {
		out[i] = s.Values[k]
	}
	return out
}

// NNZ returns the number of stored entries.
func (s Sparse) NNZ() int { return len(s.Indices) }

// Norm returns the L2 norm.
func (s Sparse) Norm() float64 {
	var sum float64
	for _, v := range s.Values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Normalize returns a copy scaled to unit L2 norm. A zero vector is
// returned unchanged.
func (s Sparse) Normalize() Sparse {
	n := s.Norm()
	out := Sparse{Dim: s.Dim, Indices: append([]int(nil), s.Indices...), Values: make([]float64, len(s.Values))}
	if n == 0 {
		copy(out.Values, s.Values)
		return out
	}
	for k, v := range s.Values {
		out.Values[k] = v / n
	}
	return out
}

// Concat appends dense columns after the sparse ones.
func Concat(s Sparse, dense []float64) Sparse {
	out := Sparse{
		Dim:     s.Dim + len(dense),
		Indices: make([]int, len(s.Indices), len(s.Indices)+len(dense)),
		Values:  make([]float64, len(s.Values), len(s.Values)+len(dense)),
	}
	copy(out.Indices, s.Indices)
	copy(out.Values, s.Values)
	for j, v := range dense {
		if v != 0 {
			out.Indices = append(out.Indices, s.Dim+j)
			out.Values = append(out.Values, v)
		}
	}
	return out
}

// Dot returns the inner product of a and b.
func Dot(a, b Sparse) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(a.Indices) && j < len(b.Indices) {
		switch {
		case a.Indices[i] == b.Indices[j]:
			sum += a.Values[i] * b.Values[j]
			i++
			j++
		case a.Indices[i] < b.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// CosineSimilarity returns dot(a,b)/(|a||b|), or 0 when either vector is zero.
func CosineSimilarity(a, b Sparse) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// Euclidean returns the L2 distance between a and b.
func Euclidean(a, b Sparse) float64 {
	var sum float64
	mergeDiff(a, b, func(d float64) { sum += d * d })
	return math.Sqrt(sum)
}

// Manhattan returns the L1 distance between a and b.
func Manhattan(a, b Sparse) float64 {
	var sum float64
	mergeDiff(a, b, func(d float64) { sum += math.Abs(d) })
	return sum
}

func mergeDiff(a, b Sparse, fn func(float64)) {
	i, j := 0, 0
	for i < len(a.Indices) || j < len(b.Indices) {
		switch {
		case j >= len(b.Indices) || (i < len(a.Indices) && a.Indices[i] < b.Indices[j]):
			fn(a.Values[i])
			i++
		case i >= len(a.Indices) || b.Indices[j] < a.Indices[i]:
			fn(-b.Values[j])
			j++
		default:
			fn(a.Values[i] - b.Values[j])
			i++
			j++
		}
	}
}
