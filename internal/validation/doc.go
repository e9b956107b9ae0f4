// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package validation checks decoded request bodies with
// go-playground/validator before they reach the trainer or recommender.
//
//	type TrainRequest struct {
//	    NNeighbors int    `json:"n_neighbors" validate:"omitempty,min=1,max=1000"`
//	    Metric     string `json:"metric" validate:"omitempty,knnmetric"`
//	}
//
// Two custom tags exist: contenttype (movies, shows) and knnmetric
// (cosine, euclidean, manhattan). Both ignore case.
//
// A failed check returns *RequestValidationError, which the api package
// renders as a 400 VALIDATION_ERROR envelope via ToAPIError.
package validation
