// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// ModelInfo identifies the run that answered a prediction.
type ModelInfo struct {
	JobID       string    `json:"job_id"`
	MetricName  string    `json:"metric_name"`
	MetricValue float64   `json:"metric_value"`
	CreatedAt   time.Time `json:"created_at"`
	ModelPath   string    `json:"model_path"`
}

// PredictResponse is the body of POST /predict.
type PredictResponse struct {
	Predictions []map[string][]recommend.Recommendation `json:"predictions"`
	Errors      []recommend.ItemError                   `json:"errors,omitempty"`
	ModelInfo   ModelInfo                               `json:"model_info"`
	Title       string                                  `json:"title"`
	ShowType    string                                  `json:"showType"`
	Data        []recommend.CatalogItem                 `json:"data"`
}

// Predict handles POST /api/v1/predict. The content type is resolved from
// the catalog by title, then the batch in data is served by the latest
// model of that type.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}
	ctx := r.Context()

	showType, err := h.lookupShowType(ctx, req.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ct, err := recommend.ParseContentType(showType)
	if err != nil {
		writeError(w, r, &recommend.InputValidationError{
			Field:   "showType",
			Message: fmt.Sprintf("invalid showType %q for title %q", showType, req.Title),
		})
		return
	}
	if !h.enabled[ct] {
		writeError(w, r, &recommend.ArtifactNotFoundError{ContentType: ct})
		return
	}

	latest, err := h.registry.LatestRun(ctx, ct)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Data) == 0 {
		writeError(w, r, &recommend.InputValidationError{Field: "data", Message: "a valid list is required for prediction"})
		return
	}

	if err := h.ensureServing(ctx, ct, latest.JobID); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.recommender.Recommend(ctx, ct, req.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	NewResponseWriter(w, r).OK(PredictResponse{
		Predictions: res.Recommendations,
		Errors:      res.Errors,
		ModelInfo: ModelInfo{
			JobID:       latest.JobID,
			MetricName:  latest.MetricName,
			MetricValue: latest.MetricValue,
			CreatedAt:   latest.CreatedAt,
			ModelPath:   latest.ModelPath,
		},
		Title:    req.Title,
		ShowType: showType,
		Data:     req.Data,
	})
}

// ensureServing makes the active model of ct the run jobID, reloading when
// a newer run has been recorded since the model was loaded.
func (h *Handler) ensureServing(ctx context.Context, ct recommend.ContentType, jobID string) error {
	m, err := h.recommender.Model(ctx, ct)
	if err != nil {
		return err
	}
	if m.JobID == jobID {
		return nil
	}
	logging.Ctx(ctx).Info().
		Str("content_type", string(ct)).
		Str("active_job_id", m.JobID).
		Str("latest_job_id", jobID).
		Msg("Active model is stale, reloading")
	_, err = h.recommender.Reload(ctx, ct)
	return err
}

// lookupShowType resolves a title through the cache.
func (h *Handler) lookupShowType(ctx context.Context, title string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(title))
	if h.lookups != nil {
		if v, ok := h.lookups.Get(key); ok {
			return v.(string), nil
		}
	}
	showType, err := h.catalog.LookupShowType(ctx, title)
	if err != nil {
		return "", err
	}
	if h.lookups != nil {
		h.lookups.Set(key, showType, cache.DefaultExpiration)
	}
	return showType, nil
}
