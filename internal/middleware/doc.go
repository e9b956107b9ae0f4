// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package middleware provides HTTP middleware for the Reelmatch API.

  - RequestID: assigns X-Request-ID and stores request and correlation IDs
    in the context for logging.Ctx
  - PrometheusMetrics: reelmatch_api_* request metrics labelled by chi
    route pattern

Both are plain func(http.Handler) http.Handler and are mounted on the chi
router in internal/api:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
