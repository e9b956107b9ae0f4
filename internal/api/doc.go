// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package api exposes training and serving over HTTP using the chi router.

# Routes

	GET  /api/v1/health/live
	GET  /api/v1/health/ready
	POST /api/v1/{contentType}/train          (admin)
	POST /api/v1/{contentType}/recommend
	GET  /api/v1/{contentType}/model
	POST /api/v1/{contentType}/model/reload   (admin)
	GET  /api/v1/{contentType}/runs?limit=N
	GET  /api/v1/{contentType}/status
	POST /api/v1/predict
	POST /api/v1/schema                       (admin)
	GET  /metrics

contentType is "movies" or "shows".

# Bodies

Successful responses use the plain shapes clients already consume, for
example {"recommendations": [{"<query title>": [...]}]} from recommend.
Errors always use the envelope

	{"success": false, "error": {"code": "...", "message": "...", "request_id": "..."}}

with the status taken from the recommend error taxonomy: 400 for invalid
input, 404 for a missing model, 409 when a run is already training, 422
for an empty training set and 502 for artifact or dataset I/O failures.

# Middleware

Every request gets an X-Request-ID and correlation ID (internal/middleware),
RealIP, Recoverer, CORS (go-chi/cors) and Prometheus metrics. The /api/v1
routes are rate limited per client IP with go-chi/httprate. Admin routes
additionally pass through auth.Middleware.RequireAdmin.
*/
package api
