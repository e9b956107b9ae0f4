// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// defaultRunsLimit is used when /runs has no limit parameter.
const defaultRunsLimit = 20

// ModelResponse is the body of GET /{contentType}/model.
type ModelResponse struct {
	Model      recommend.ModelInfo             `json:"model"`
	Artifacts  map[string]storage.ArtifactInfo `json:"artifacts,omitempty"`
	StoredJobs []string                        `json:"stored_jobs,omitempty"`
	Training   *recommend.TrainingStatus       `json:"training,omitempty"`
}

// RunsResponse is the body of GET /{contentType}/runs.
type RunsResponse struct {
	ContentType recommend.ContentType `json:"content_type"`
	Runs        []recommend.RunInfo   `json:"runs"`
	Count       int                   `json:"count"`
}

// Train handles POST /api/v1/{contentType}/train. The run continues if the
// client disconnects; it is bounded by the training timeout.
func (h *Handler) Train(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.contentType(w, r)
	if !ok {
		return
	}

	var req TrainRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		writeError(w, r, err)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	if h.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.trainTimeout)
		defer cancel()
	}

	res, err := h.trainer.Train(ctx, ct, req.Params())
	h.audit.LogAdminAction("train", auth.SubjectFromContext(r.Context()), string(ct), r.RemoteAddr, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.FlushLookups()
	NewResponseWriter(w, r).OK(res)
}

// Recommend handles POST /api/v1/{contentType}/recommend.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.contentType(w, r)
	if !ok {
		return
	}

	var req RecommendRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.recommender.Recommend(r.Context(), ct, req.Data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	NewResponseWriter(w, r).OK(res)
}

// Model handles GET /api/v1/{contentType}/model. The latest model is
// loaded on first use.
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.contentType(w, r)
	if !ok {
		return
	}

	m, err := h.recommender.Model(r.Context(), ct)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := h.modelResponse(r.Context(), ct, m)
	if st, ok := h.trainer.Status(ct); ok {
		resp.Training = &st
	}
	NewResponseWriter(w, r).OK(resp)
}

// ReloadModel handles POST /api/v1/{contentType}/model/reload.
func (h *Handler) ReloadModel(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.contentType(w, r)
	if !ok {
		return
	}

	m, err := h.recommender.Reload(r.Context(), ct)
	h.audit.LogAdminAction("reload", auth.SubjectFromContext(r.Context()), string(ct), r.RemoteAddr, err)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().Str("content_type", string(ct)).Str("job_id", m.JobID).Msg("Model reloaded on request")
	NewResponseWriter(w, r).OK(h.modelResponse(r.Context(), ct, m))
}

// modelResponse describes m with its stored artifacts. Storage errors are
// logged and leave the artifact fields empty.
func (h *Handler) modelResponse(ctx context.Context, ct recommend.ContentType, m *recommend.Model) ModelResponse {
	resp := ModelResponse{Model: m.Info()}
	if man, err := h.recommender.Manifest(ctx, ct, m.JobID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("job_id", m.JobID).Msg("Failed to read model manifest")
	} else {
		resp.Artifacts = man.Artifacts
	}
	if jobs, err := h.recommender.StoredJobs(ctx, ct); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to list stored jobs")
	} else {
		resp.StoredJobs = jobs
	}
	return resp
}

// Runs handles GET /api/v1/{contentType}/runs?limit=N.
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.contentType(w, r)
	if !ok {
		return
	}

	limit, err := queryInt(r, "limit", defaultRunsLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	req := RunsRequest{Limit: limit}
	if verr := validation.ValidateStruct(&req); verr != nil {
		writeError(w, r, verr)
		return
	}

	runs, err := h.registry.ListRuns(r.Context(), ct, req.Limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []recommend.RunInfo{}
	}
	NewResponseWriter(w, r).OK(RunsResponse{ContentType: ct, Runs: runs, Count: len(runs)})
}

// TrainingStatus handles GET /api/v1/{contentType}/status.
func (h *Handler) TrainingStatus(w http.ResponseWriter, r *http.Request) {
	ct, ok := h.contentType(w, r)
	if !ok {
		return
	}
	st, _ := h.trainer.Status(ct)
	NewResponseWriter(w, r).OK(st)
}
