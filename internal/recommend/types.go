// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend/evaluation"
	"github.com/tomtom215/reelmatch/internal/recommend/features"
)

// ContentType selects a pipeline.
type ContentType string

// Supported content types.
const (
	Movies ContentType = "movies"
	Shows  ContentType = "shows"
)

// ContentTypes lists every pipeline.
var ContentTypes = []ContentType{Movies, Shows}

// ParseContentType accepts "movies"/"shows" as well as the catalog show
// types "movie"/"series".
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movies", features.ShowTypeMovie:
		return Movies, nil
	case "shows", features.ShowTypeSeries:
		return Shows, nil
	default:
		return "", &InputValidationError{Field: "content_type", Message: fmt.Sprintf("unknown content type %q", s)}
	}
}

// ShowType returns the catalog showType value of the pipeline.
func (c ContentType) ShowType() string {
	if c == Shows {
		return features.ShowTypeSeries
	}
	return features.ShowTypeMovie
}

// UsesNumericFeatures reports whether episode/season counts are part of
// the feature matrix.
func (c ContentType) UsesNumericFeatures() bool { return c == Shows }

// relevancePolicy preserves the historical asymmetry between pipelines.
func (c ContentType) relevancePolicy() evaluation.ZeroRelevancePolicy {
	if c == Shows {
		return evaluation.SkipZeroRelevance
	}
	return evaluation.IncludeZeroRelevance
}

// CatalogItem is one catalog row.
type CatalogItem = features.Record

// Params are the tunable training parameters.
type Params struct {
	NNeighbors int    `json:"n_neighbors"`
	Metric     string `json:"metric"`
}

// AsMap renders the parameters as registry rows.
func (p Params) AsMap() map[string]string {
	return map[string]string{
		"k":      fmt.Sprintf("%d", p.NNeighbors),
		"metric": p.Metric,
	}
}

// Field is a nullable metadata string.
type Field struct {
	Value string
	Valid bool
}

// OrNA returns the value, or "N/A" when it is null.
func (f Field) OrNA() string {
	if !f.Valid {
		return NotAvailable
	}
	return f.Value
}

// NotAvailable is rendered for null metadata fields.
const NotAvailable = "N/A"

// ItemMetadata is the per-row display data stored next to the index.
type ItemMetadata struct {
	ID           string
	Title        string
	Overview     Field
	Genres       Field
	Cast         Field
	Directors    Field
	EpisodeCount float64
	SeasonCount  float64
	HasCounts    bool
}

// Recommendation is one neighbour returned to a caller.
type Recommendation struct {
	Title        string  `json:"title"`
	Similarity   float64 `json:"similarity"`
	Distance     float64 `json:"distance"`
	Overview     string  `json:"overview"`
	Genres       string  `json:"genres"`
	Cast         string  `json:"cast"`
	Directors    string  `json:"directors"`
	EpisodeCount any     `json:"episodeCount,omitempty"`
	SeasonCount  any     `json:"seasonCount,omitempty"`
}

// ItemError reports a failed query item inside a batch.
type ItemError struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	Error string `json:"error"`
}

// RecommendResult is the batch response. Each entry of Recommendations
// maps one query title to its neighbours.
type RecommendResult struct {
	Recommendations []map[string][]Recommendation `json:"recommendations"`
	Errors          []ItemError                   `json:"errors,omitempty"`
	JobID           string                        `json:"job_id"`
}

// TrainResult summarises a completed training run.
type TrainResult struct {
	JobID          string            `json:"job_id"`
	ContentType    ContentType       `json:"content_type"`
	MAPAtK         float64           `json:"map_at_k"`
	Coverage       float64           `json:"coverage"`
	ILS            float64           `json:"intra_list_similarity"`
	Rows           int               `json:"rows"`
	DroppedRows    int               `json:"dropped_rows"`
	VocabularySize int               `json:"vocabulary_size"`
	ModelPath      string            `json:"model_path"`
	GCSPath        string            `json:"gcs_path"`
	Artifacts      map[string]string `json:"artifacts"`
	Parameters     Params            `json:"parameters"`
	Duration       time.Duration     `json:"-"`
}

// RunRecord is written to the run registry after a successful run.
type RunRecord struct {
	JobID          string
	Name           string
	GCSPath        string
	ModelPath      string
	VectorizerPath string
	ScalerPath     string
	Metrics        map[string]float64
	Parameters     map[string]string
	CreatedAt      time.Time
}

// RunInfo is a registry row joined with its metrics and parameters.
type RunInfo struct {
	JobID       string             `json:"job_id"`
	Name        string             `json:"name"`
	GCSPath     string             `json:"gcs_path"`
	ModelPath   string             `json:"model_path"`
	MetricName  string             `json:"metric_name,omitempty"`
	MetricValue float64            `json:"metric_value,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
	Parameters  map[string]string  `json:"parameters,omitempty"`
}

// CatalogSource provides the training dataset.
type CatalogSource interface {
	LoadCatalog(ctx context.Context) ([]CatalogItem, error)
}

// RunRegistry persists run records and resolves the model to serve.
type RunRegistry interface {
	RecordRun(ctx context.Context, ct ContentType, rec RunRecord) error
	// LatestRun returns the run joined to the most recent MAP@K metric.
	// It returns an error matching ErrArtifactNotFound when there is none.
	LatestRun(ctx context.Context, ct ContentType) (*RunInfo, error)
	ListRuns(ctx context.Context, ct ContentType, limit int) ([]RunInfo, error)
}

// ModelEvent announces a newly trained model.
type ModelEvent struct {
	JobID       string      `json:"job_id"`
	ContentType ContentType `json:"content_type"`
	ModelPath   string      `json:"model_path"`
	MAPAtK      float64     `json:"map_at_k"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ModelPublisher broadcasts ModelEvents.
type ModelPublisher interface {
	PublishModel(ctx context.Context, ev ModelEvent) error
}
