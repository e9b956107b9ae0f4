// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"
	"time"
)

// readyTimeout bounds the readiness database ping.
const readyTimeout = 2 * time.Second

// LiveResponse is the body of /health/live.
type LiveResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// ReadyResponse is the body of /health/ready.
type ReadyResponse struct {
	Status        string          `json:"status"`
	Database      string          `json:"database"`
	SchemaVersion int             `json:"schema_version"`
	Models        map[string]bool `json:"models"`
}

// HealthLive reports that the process is serving HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).OK(LiveResponse{
		Status: "ok",
		Uptime: time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthReady reports whether the registry database answers. Missing
// models do not fail readiness; they load lazily or after training.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	resp := ReadyResponse{Status: "ready", Database: "ok", Models: make(map[string]bool, len(h.enabled))}
	for ct := range h.enabled {
		resp.Models[string(ct)] = h.recommender.Loaded(ct) != nil
	}

	if err := h.store.Ping(ctx); err != nil {
		resp.Status = "not_ready"
		resp.Database = err.Error()
		NewResponseWriter(w, r).JSON(http.StatusServiceUnavailable, resp)
		return
	}
	if v, err := h.store.GetCurrentSchemaVersion(ctx); err == nil {
		resp.SchemaVersion = v
	}
	NewResponseWriter(w, r).OK(resp)
}
