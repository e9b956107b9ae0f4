// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package evaluation computes training-set quality metrics for a fitted
// similarity index: MAP@k over genre overlap, catalog coverage and
// intra-list similarity.
//
// Every training row is queried against the index it belongs to; the row
// itself is removed from its own neighbour list, leaving ListLen(k)
// neighbours. The model is not refit per row.
package evaluation

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/reelmatch/internal/recommend/index"
	"github.com/tomtom215/reelmatch/internal/recommend/vector"
)

// Metric names as stored in the run registry.
const (
	MetricMAPAtK              = "MAP@K"
	MetricCoverage            = "Coverage"
	MetricIntraListSimilarity = "Intra-list Similarity"
)

// ZeroRelevancePolicy decides how rows without any relevant neighbour
// enter MAP@k.
type ZeroRelevancePolicy int

const (
	// SkipZeroRelevance drops such rows from both numerator and
	// denominator (series pipeline).
	SkipZeroRelevance ZeroRelevancePolicy = iota
	// IncludeZeroRelevance counts them with an average precision of 0
	// (movie pipeline).
	IncludeZeroRelevance
)

// Input describes one evaluation pass.
type Input struct {
	Index   *index.Index
	Genres  []map[string]struct{} // parallel to index rows
	K       int
	Policy  ZeroRelevancePolicy
	Workers int
}

// Result holds the three metrics plus bookkeeping counters.
type Result struct {
	MAPAtK              float64 `json:"map_at_k"`
	Coverage            float64 `json:"coverage"`
	IntraListSimilarity float64 `json:"intra_list_similarity"`
	Rows                int     `json:"rows"`
	MAPRows             int     `json:"map_rows"`
	ILSRows             int     `json:"ils_rows"`
}

// AsMap returns the metrics keyed by registry name.
func (r Result) AsMap() map[string]float64 {
	return map[string]float64{
		MetricMAPAtK:              r.MAPAtK,
		MetricCoverage:            r.Coverage,
		MetricIntraListSimilarity: r.IntraListSimilarity,
	}
}

type rowStats struct {
	ap        float64
	apOK      bool
	ils       float64
	ilsOK     bool
	neighbors []int
}

// Evaluate queries every indexed row and aggregates the metrics. The
// result does not depend on Workers.
func Evaluate(ctx context.Context, in Input) (Result, error) {
	if in.Index == nil || in.Index.Len() == 0 {
		return Result{}, errors.New("evaluate: empty index")
	}
	n := in.Index.Len()
	if len(in.Genres) != n {
		return Result{}, fmt.Errorf("evaluate: %d genre sets for %d rows", len(in.Genres), n)
	}

	queries := make([]vector.Sparse, n)
	for i := range queries {
		queries[i] = in.Index.Row(i)
	}
	results, err := in.Index.KNeighborsBatch(ctx, queries, ListLen(in.K)+1, in.Workers)
	if err != nil {
		return Result{}, fmt.Errorf("evaluate: %w", err)
	}

	stats := make([]rowStats, n)
	g, ctx := errgroup.WithContext(ctx)
	if in.Workers > 0 {
		g.SetLimit(in.Workers)
	}
	for i := range results {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			nb := ExcludeSelf(results[i], i)
			rel := make([]bool, len(nb))
			for j, idx := range nb {
				rel[j] = intersects(in.Genres[i], in.Genres[idx])
			}
			s := rowStats{neighbors: nb}
			s.ap, s.apOK = AveragePrecision(rel)
			if !s.apOK && in.Policy == IncludeZeroRelevance {
				s.ap, s.apOK = 0, true
			}
			s.ils, s.ilsOK = listSimilarity(in.Index, nb)
			stats[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("evaluate: %w", err)
	}

	res := Result{Rows: n}
	var apSum, ilsSum float64
	seen := make(map[int]struct{})
	for _, s := range stats {
		if s.apOK {
			apSum += s.ap
			res.MAPRows++
		}
		if s.ilsOK {
			ilsSum += s.ils
			res.ILSRows++
		}
		for _, idx := range s.neighbors {
			seen[idx] = struct{}{}
		}
	}
	if res.MAPRows > 0 {
		res.MAPAtK = apSum / float64(res.MAPRows)
	}
	if res.ILSRows > 0 {
		res.IntraListSimilarity = ilsSum / float64(res.ILSRows)
	}
	res.Coverage = float64(len(seen)) / float64(n)
	return res, nil
}

// ListLen is how many non-self neighbours each row is scored on for a
// model fitted with k neighbours: k-1, the length of a served list, but
// at least one.
func ListLen(k int) int {
	return max(k-1, 1)
}

// ExcludeSelf returns the neighbour row indices without self. When self
// is not among the results the last (farthest) result is dropped, so the
// list always has len(nb)-1 entries.
func ExcludeSelf(nb []index.Neighbor, self int) []int {
	if len(nb) == 0 {
		return nil
	}
	out := make([]int, 0, len(nb)-1)
	found := false
	for _, n := range nb {
		if !found && n.Index == self {
			found = true
			continue
		}
		out = append(out, n.Index)
	}
	if !found {
		out = out[:len(out)-1]
	}
	return out
}

// AveragePrecision scores a relevance vector against the fixed ranking
// scores 1/(i+1). Since those scores strictly decrease, the ranking is the
// list order and AP is the mean of precision@i over relevant positions.
// This mirrors the legacy scorer; it is not textbook AP@k, which would
// normalise by min(k, total relevant items in the catalog).
// ok is false when nothing is relevant.
func AveragePrecision(relevant []bool) (ap float64, ok bool) {
	hits := 0
	var sum float64
	for i, r := range relevant {
		if r {
			hits++
			sum += float64(hits) / float64(i+1)
		}
	}
	if hits == 0 {
		return 0, false
	}
	return sum / float64(hits), true
}

// listSimilarity is the mean pairwise cosine similarity over the upper
// triangle of the neighbours' feature vectors.
func listSimilarity(ix *index.Index, nb []int) (float64, bool) {
	if len(nb) < 2 {
		return 0, false
	}
	var sum float64
	pairs := 0
	for a := 0; a < len(nb); a++ {
		for b := a + 1; b < len(nb); b++ {
			sum += vector.CosineSimilarity(ix.Row(nb[a]), ix.Row(nb[b]))
			pairs++
		}
	}
	return sum / float64(pairs), true
}

func intersects(a, b map[string]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			return true
		}
	}
	return false
}
