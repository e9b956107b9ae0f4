// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package index provides an exact k-nearest-neighbour index over sparse
// feature rows.
//
// Queries scan every row, so results are exact and deterministic:
// neighbours are ordered by ascending distance with ties broken by
// ascending row index. An Index is immutable once built and safe for
// concurrent queries.
package index

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmatch/internal/recommend/vector"
)

// Metric names a distance function.
type Metric string

// Supported metrics.
const (
	Cosine    Metric = "cosine"
	Euclidean Metric = "euclidean"
	Manhattan Metric = "manhattan"
)

// ParseMetric validates a metric name (case-insensitive).
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(strings.TrimSpace(s))); m {
	case Cosine, Euclidean, Manhattan:
		return m, nil
	default:
		return "", fmt.Errorf("unsupported metric %q (want cosine, euclidean or manhattan)", s)
	}
}

// Neighbor is one query result.
type Neighbor struct {
	Index    int
	Distance float64
}

// Index is an exact KNN index.
type Index struct {
	metric Metric
	rows   []vector.Sparse
	norms  []float64
}

// New fits an index over rows.
func New(metric Metric, rows []vector.Sparse) (*Index, error) {
	if _, err := ParseMetric(string(metric)); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("fit index: no rows")
	}
	dim := rows[0].Dim
	for i, r := range rows {
		if r.Dim != dim {
			return nil, fmt.Errorf("fit index: row %d has dimension %d, want %d", i, r.Dim, dim)
		}
	}
	ix := &Index{metric: metric, rows: rows}
	ix.prepare()
	return ix, nil
}

func (ix *Index) prepare() {
	ix.norms = make([]float64, len(ix.rows))
	for i, r := range ix.rows {
		ix.norms[i] = r.Norm()
	}
}

// Len returns the number of indexed rows.
func (ix *Index) Len() int { return len(ix.rows) }

// Dim returns the row dimension.
func (ix *Index) Dim() int { return ix.rows[0].Dim }

// Metric returns the fitted metric.
func (ix *Index) Metric() Metric { return ix.metric }

// Row returns the feature vector of row i.
func (ix *Index) Row(i int) vector.Sparse { return ix.rows[i] }

func (ix *Index) distance(q vector.Sparse, qNorm float64, i int) float64 {
	switch ix.metric {
	case Euclidean:
		return vector.Euclidean(q, ix.rows[i])
	case Manhattan:
		return vector.Manhattan(q, ix.rows[i])
	default:
		if qNorm == 0 || ix.norms[i] == 0 {
			return 1
		}
		return 1 - vector.Dot(q, ix.rows[i])/(qNorm*ix.norms[i])
	}
}

// KNeighbors returns the k nearest rows to q. k is clamped to [1, Len()].
func (ix *Index) KNeighbors(q vector.Sparse, k int) ([]Neighbor, error) {
	if q.Dim != ix.Dim() {
		return nil, fmt.Errorf("query dimension %d does not match index dimension %d", q.Dim, ix.Dim())
	}
	k = ix.ClampK(k)
	qNorm := q.Norm()
	all := make([]Neighbor, len(ix.rows))
	for i := range ix.rows {
		all[i] = Neighbor{Index: i, Distance: ix.distance(q, qNorm, i)}
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].Distance != all[b].Distance {
			return all[a].Distance < all[b].Distance
		}
		return all[a].Index < all[b].Index
	})
	return all[:k:k], nil
}

// ClampK bounds k to [1, Len()].
func (ix *Index) ClampK(k int) int {
	if k > len(ix.rows) {
		k = len(ix.rows)
	}
	if k < 1 {
		k = 1
	}
	return k
}

// KNeighborsBatch queries every vector in qs using up to workers
// goroutines. Result i belongs to qs[i].
func (ix *Index) KNeighborsBatch(ctx context.Context, qs []vector.Sparse, k, workers int) ([][]Neighbor, error) {
	out := make([][]Neighbor, len(qs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := range qs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			nb, err := ix.KNeighbors(qs[i], k)
			if err != nil {
				return fmt.Errorf("query %d: %w", i, err)
			}
			out[i] = nb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

type wireIndex struct {
	Metric Metric
	Rows   []vector.Sparse
}

// GobEncode implements gob.GobEncoder.
func (ix *Index) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wireIndex{Metric: ix.metric, Rows: ix.rows}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (ix *Index) GobDecode(data []byte) error {
	var w wireIndex
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return err
	}
	if _, err := ParseMetric(string(w.Metric)); err != nil {
		return err
	}
	ix.metric = w.Metric
	ix.rows = w.Rows
	ix.prepare()
	return nil
}
