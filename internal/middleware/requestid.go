// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/tomtom215/reelmatch/internal/logging"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// Upstream IDs are reused only if they look like an ID and not like an
// attempt to inject into log lines.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// RequestID tags every request with an ID and a correlation ID, both read
// back by logging.Ctx. The ID is echoed in the response header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logging.ContextWithNewCorrelationID(logging.ContextWithRequestID(r.Context(), id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
