// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// TrainRequest is the optional body of POST /{contentType}/train.
type TrainRequest struct {
	NNeighbors int    `json:"n_neighbors" validate:"omitempty,min=1,max=1000"`
	Metric     string `json:"metric" validate:"omitempty,knnmetric"`
}

// Params converts the request to training parameters. Zero fields take
// the configured defaults.
func (t *TrainRequest) Params() *recommend.Params {
	return &recommend.Params{NNeighbors: t.NNeighbors, Metric: t.Metric}
}

// RecommendRequest is the body of POST /{contentType}/recommend.
type RecommendRequest struct {
	Data []recommend.CatalogItem `json:"data" validate:"required,min=1"`
}

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Title string                  `json:"title" validate:"required"`
	Data  []recommend.CatalogItem `json:"data"`
}

// RunsRequest holds the query of GET /{contentType}/runs.
type RunsRequest struct {
	Limit int `json:"limit" validate:"min=1,max=1000"`
}

// decodeJSON reads a JSON body into dst. An empty body is accepted when
// optional is true and leaves dst untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &recommend.InputValidationError{Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)}
		}
		return &recommend.InputValidationError{Message: "failed to read request body"}
	}
	if len(bytes.TrimSpace(body)) == 0 {
		if optional {
			return nil
		}
		return &recommend.InputValidationError{Message: "request body is required"}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return &recommend.InputValidationError{Message: "invalid JSON body: " + err.Error()}
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}

// queryInt parses an integer query parameter, returning def when absent.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &recommend.InputValidationError{Field: name, Message: "must be an integer"}
	}
	return v, nil
}
