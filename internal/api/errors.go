// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/reelmatch/internal/database"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/validation"
)

// errorStatus maps an error to its HTTP status and error code.
func errorStatus(err error) (int, string) {
	var inputErr *recommend.InputValidationError
	var validationErr *validation.RequestValidationError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, validationErr.ToAPIError().Code
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, ErrCodeBadRequest
	case errors.Is(err, recommend.ErrArtifactNotFound):
		return http.StatusNotFound, ErrCodeModelNotFound
	case errors.Is(err, database.ErrTitleNotFound):
		return http.StatusNotFound, ErrCodeTitleNotFound
	case errors.Is(err, recommend.ErrTrainingInProgress):
		return http.StatusConflict, ErrCodeConflict
	case errors.Is(err, recommend.ErrEmptyTrainingSet):
		return http.StatusUnprocessableEntity, ErrCodeEmptyTrainingSet
	case errors.Is(err, recommend.ErrStorageIO):
		return http.StatusBadGateway, ErrCodeStorageError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrCodeTimeout
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// writeError writes err as an error envelope. Server-side failures are
// logged with the request context and their message is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	rw := NewResponseWriter(w, r)

	var validationErr *validation.RequestValidationError
	if errors.As(err, &validationErr) {
		apiErr := validationErr.ToAPIError()
		rw.ErrorWithDetails(status, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("Request failed")
		message := "internal error"
		switch status {
		case http.StatusBadGateway:
			message = "artifact or dataset storage is unavailable"
		case http.StatusGatewayTimeout:
			message = "request timed out"
		}
		rw.Error(status, code, message)
		return
	}

	logging.Ctx(r.Context()).Debug().Err(err).Int("status", status).Msg("Request rejected")
	rw.Error(status, code, err.Error())
}
