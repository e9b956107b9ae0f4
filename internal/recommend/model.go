// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend/evaluation"
	"github.com/tomtom215/reelmatch/internal/recommend/features"
	"github.com/tomtom215/reelmatch/internal/recommend/index"
	"github.com/tomtom215/reelmatch/internal/recommend/vector"
)

// Model is a fitted, immutable recommender for one content type.
type Model struct {
	JobID       string
	ContentType ContentType
	Params      Params
	CreatedAt   time.Time
	Vectorizer  *features.TFIDFVectorizer
	Scaler      *features.StandardScaler // shows only
	Index       *index.Index
	Metadata    []ItemMetadata // parallel to index rows
}

// modelMetadata is the persisted form of the non-matrix model state.
type modelMetadata struct {
	JobID       string
	ContentType ContentType
	Params      Params
	CreatedAt   time.Time
	Items       []ItemMetadata
}

// ModelInfo describes a loaded model.
type ModelInfo struct {
	JobID          string      `json:"job_id"`
	ContentType    ContentType `json:"content_type"`
	Params         Params      `json:"parameters"`
	CreatedAt      time.Time   `json:"created_at"`
	Rows           int         `json:"rows"`
	VocabularySize int         `json:"vocabulary_size"`
	Dimensions     int         `json:"dimensions"`
}

// Info summarises the model.
func (m *Model) Info() ModelInfo {
	return ModelInfo{
		JobID:          m.JobID,
		ContentType:    m.ContentType,
		Params:         m.Params,
		CreatedAt:      m.CreatedAt,
		Rows:           m.Index.Len(),
		VocabularySize: m.Vectorizer.Size(),
		Dimensions:     m.Index.Dim(),
	}
}

// DropStats counts catalog rows excluded from training.
type DropStats struct {
	OtherType      int
	MissingTitle   int
	InvalidNumeric int
}

// Dropped is the number of rows of the right type that were excluded.
func (d DropStats) Dropped() int { return d.MissingTitle + d.InvalidNumeric }

// AsMap keys the counts by metric reason label.
func (d DropStats) AsMap() map[string]int {
	return map[string]int{
		"missing_title":   d.MissingTitle,
		"invalid_numeric": d.InvalidNumeric,
	}
}

type trainingSet struct {
	items   []CatalogItem
	numeric [][]float64
}

// selectTrainingSet filters the catalog down to usable rows of ct.
func selectTrainingSet(ct ContentType, items []CatalogItem) (trainingSet, DropStats) {
	var ts trainingSet
	var drops DropStats
	want := ct.ShowType()
	for _, it := range items {
		if !strings.EqualFold(strings.TrimSpace(it.ShowType), want) {
			drops.OtherType++
			continue
		}
		if strings.TrimSpace(it.Title) == "" {
			drops.MissingTitle++
			continue
		}
		if ct.UsesNumericFeatures() {
			nums, err := features.BuildNumericFeatures(it)
			if err != nil {
				drops.InvalidNumeric++
				continue
			}
			ts.numeric = append(ts.numeric, nums)
		}
		ts.items = append(ts.items, it)
	}
	return ts, drops
}

// BuildResult is the output of BuildModel.
type BuildResult struct {
	Model      *Model
	Evaluation evaluation.Result
	Drops      DropStats
}

// BuildModel fits and evaluates a model from catalog rows. It touches no
// storage; the caller persists the result.
func BuildModel(ctx context.Context, ct ContentType, jobID string, createdAt time.Time, items []CatalogItem, p Params, workers int) (*BuildResult, error) {
	ts, drops := selectTrainingSet(ct, items)
	if len(ts.items) == 0 {
		return nil, &EmptyTrainingSetError{ContentType: ct, JobID: jobID, Total: len(items), Dropped: drops.Dropped()}
	}

	texts := make([]string, len(ts.items))
	for i, it := range ts.items {
		texts[i] = features.BuildTextFeatures(it)
	}
	vec := &features.TFIDFVectorizer{}
	rows, err := vec.FitTransform(texts)
	if errors.Is(err, features.ErrEmptyVocabulary) {
		return nil, &EmptyTrainingSetError{ContentType: ct, JobID: jobID, Total: len(items), Dropped: drops.Dropped() + len(ts.items)}
	}
	if err != nil {
		return nil, fmt.Errorf("fit vectorizer: %w", err)
	}

	var scaler *features.StandardScaler
	if ct.UsesNumericFeatures() {
		scaler = &features.StandardScaler{}
		if err := scaler.Fit(ts.numeric); err != nil {
			return nil, err
		}
		for i := range rows {
			scaled, err := scaler.Transform(ts.numeric[i])
			if err != nil {
				return nil, err
			}
			rows[i] = vector.Concat(rows[i], scaled)
		}
	}

	ix, err := index.New(index.Metric(p.Metric), rows)
	if err != nil {
		return nil, fmt.Errorf("fit index: %w", err)
	}

	genres := make([]map[string]struct{}, len(ts.items))
	meta := make([]ItemMetadata, len(ts.items))
	for i, it := range ts.items {
		genres[i] = features.GenreTokens(it.Genres)
		meta[i] = newItemMetadata(it)
		if ct.UsesNumericFeatures() {
			meta[i].EpisodeCount, meta[i].SeasonCount, meta[i].HasCounts = ts.numeric[i][0], ts.numeric[i][1], true
		}
	}

	res, err := evaluation.Evaluate(ctx, evaluation.Input{
		Index:   ix,
		Genres:  genres,
		K:       p.NNeighbors,
		Policy:  ct.relevancePolicy(),
		Workers: workers,
	})
	if err != nil {
		return nil, err
	}

	return &BuildResult{
		Model: &Model{
			JobID:       jobID,
			ContentType: ct,
			Params:      p,
			CreatedAt:   createdAt,
			Vectorizer:  vec,
			Scaler:      scaler,
			Index:       ix,
			Metadata:    meta,
		},
		Evaluation: res,
		Drops:      drops,
	}, nil
}

func newItemMetadata(it CatalogItem) ItemMetadata {
	listField := func(raw any) Field {
		if _, ok := raw.(string); !ok {
			return Field{}
		}
		return Field{Value: features.NormalizeListField(raw), Valid: true}
	}
	md := ItemMetadata{
		ID:        it.ID,
		Title:     strings.TrimSpace(it.Title),
		Genres:    listField(it.Genres),
		Cast:      listField(it.Cast),
		Directors: listField(it.Directors),
	}
	if s, ok := it.Overview.(string); ok {
		md.Overview = Field{Value: s, Valid: true}
	}
	return md
}

// Featurize maps a query item into the model's feature space using the
// fitted vectorizer and scaler. Nothing is refit.
func (m *Model) Featurize(it CatalogItem) (vector.Sparse, error) {
	v := m.Vectorizer.Transform(features.BuildTextFeatures(it))
	if m.Scaler == nil {
		return v, nil
	}
	nums, err := features.BuildNumericFeatures(it)
	if err != nil {
		return vector.Sparse{}, err
	}
	scaled, err := m.Scaler.Transform(nums)
	if err != nil {
		return vector.Sparse{}, err
	}
	return vector.Concat(v, scaled), nil
}

// RecommendItem returns the neighbours of one query item. The nearest
// neighbour is dropped when it carries the query's title, so a catalog
// title gets k-1 results and any other query gets k.
func (m *Model) RecommendItem(it CatalogItem) ([]Recommendation, error) {
	title := strings.TrimSpace(it.Title)
	if title == "" {
		return nil, &InputValidationError{Field: "title", Message: "is required"}
	}
	q, err := m.Featurize(it)
	if err != nil {
		return nil, err
	}
	nb, err := m.Index.KNeighbors(q, m.Index.ClampK(m.Params.NNeighbors))
	if err != nil {
		return nil, err
	}
	if len(nb) > 0 && m.Metadata[nb[0].Index].Title == title {
		nb = nb[1:]
	}

	out := make([]Recommendation, len(nb))
	for i, n := range nb {
		out[i] = m.render(m.Metadata[n.Index], n.Distance)
	}
	return out, nil
}

func (m *Model) render(md ItemMetadata, distance float64) Recommendation {
	r := Recommendation{
		Title:      md.Title,
		Similarity: 1 - distance,
		Distance:   distance,
		Overview:   md.Overview.OrNA(),
		Genres:     md.Genres.OrNA(),
		Cast:       md.Cast.OrNA(),
		Directors:  md.Directors.OrNA(),
	}
	if m.ContentType.UsesNumericFeatures() {
		if md.HasCounts {
			r.EpisodeCount, r.SeasonCount = md.EpisodeCount, md.SeasonCount
		} else {
			r.EpisodeCount, r.SeasonCount = NotAvailable, NotAvailable
		}
	}
	return r
}

// RecommendBatch serves every item independently. A failing item is
// reported in Errors and does not affect its siblings.
func (m *Model) RecommendBatch(items []CatalogItem) *RecommendResult {
	res := &RecommendResult{
		Recommendations: make([]map[string][]Recommendation, 0, len(items)),
		JobID:           m.JobID,
	}
	for i, it := range items {
		recs, err := m.RecommendItem(it)
		if err != nil {
			fe := &FeatureBuildError{Index: i, Title: it.Title, Err: err}
			res.Errors = append(res.Errors, ItemError{Index: i, Title: it.Title, Error: fe.Error()})
			continue
		}
		res.Recommendations = append(res.Recommendations, map[string][]Recommendation{strings.TrimSpace(it.Title): recs})
	}
	return res
}
