// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler *Handler
	auth    *auth.Middleware
	chi     *ChiMiddleware
}

// NewRouter creates a Router. authMiddleware guards the admin routes.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware, chiMiddleware *ChiMiddleware) *Router {
	if chiMiddleware == nil {
		chiMiddleware = NewChiMiddleware(nil)
	}
	if authMiddleware == nil {
		authMiddleware = auth.NewMiddleware(nil, auth.ModeNone, nil)
	}
	return &Router{handler: handler, auth: authMiddleware, chi: chiMiddleware}
}

// Handler builds the HTTP handler.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chi.CORS())
	r.Use(middleware.PrometheusMetrics)
	r.Use(AccessLog())

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).NotFound(ErrCodeNotFound, "no route for "+req.Method+" "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).Error(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method "+req.Method+" not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	h := router.handler
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Get("/health/live", h.HealthLive)
		r.Get("/health/ready", h.HealthReady)

		r.Group(func(r chi.Router) {
			r.Use(router.chi.RateLimit())
			r.Use(chimiddleware.Compress(5, "application/json"))

			r.Post("/predict", h.Predict)
			r.With(router.auth.RequireAdmin).Post("/schema", h.CreateSchema)

			r.Route("/{contentType}", func(r chi.Router) {
				r.Post("/recommend", h.Recommend)
				r.Get("/model", h.Model)
				r.Get("/runs", h.Runs)
				r.Get("/status", h.TrainingStatus)

				r.Group(func(r chi.Router) {
					r.Use(router.auth.RequireAdmin)
					r.Post("/train", h.Train)
					r.Post("/model/reload", h.ReloadModel)
				})
			})
		})
	})

	return r
}
