// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// APIError represents an error response.
type APIError struct {
	// Code is a machine-readable error code
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains additional error details (optional)
	Details any `json:"details,omitempty"`

	// RequestID is the request ID for tracing
	RequestID string `json:"request_id,omitempty"`
}

// Error codes for API responses
const (
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeModelNotFound    = "MODEL_NOT_FOUND"
	ErrCodeTitleNotFound    = "TITLE_NOT_FOUND"
	ErrCodeConflict         = "TRAINING_IN_PROGRESS"
	ErrCodeEmptyTrainingSet = "EMPTY_TRAINING_SET"
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeStorageError     = "STORAGE_ERROR"
	ErrCodeTimeout          = "TIMEOUT"
)

// ResponseWriter writes JSON responses for one request.
type ResponseWriter struct {
	w http.ResponseWriter
	r *http.Request
}

// NewResponseWriter creates a new response writer.
func NewResponseWriter(w http.ResponseWriter, r *http.Request) *ResponseWriter {
	return &ResponseWriter{w: w, r: r}
}

// JSON writes v with the given status.
func (rw *ResponseWriter) JSON(statusCode int, v any) {
	rw.w.Header().Set("Content-Type", "application/json; charset=utf-8")
	rw.w.WriteHeader(statusCode)

	if err := json.NewEncoder(rw.w).Encode(v); err != nil {
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// OK writes a 200 response.
func (rw *ResponseWriter) OK(v any) {
	rw.JSON(http.StatusOK, v)
}

// Error writes an error response with the given status code.
func (rw *ResponseWriter) Error(statusCode int, code, message string) {
	rw.ErrorWithDetails(statusCode, code, message, nil)
}

// ErrorWithDetails writes an error response with additional details.
func (rw *ResponseWriter) ErrorWithDetails(statusCode int, code, message string, details any) {
	rw.JSON(statusCode, ErrorResponse{
		Success: false,
		Error: &APIError{
			Code:      code,
			Message:   message,
			Details:   details,
			RequestID: logging.RequestIDFromContext(rw.r.Context()),
		},
	})
}

// NotFound writes a 404 Not Found error.
func (rw *ResponseWriter) NotFound(code, message string) {
	rw.Error(http.StatusNotFound, code, message)
}

// TooManyRequests writes a 429 Too Many Requests error.
func (rw *ResponseWriter) TooManyRequests(message string) {
	rw.Error(http.StatusTooManyRequests, ErrCodeTooManyRequests, message)
}
