// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"net/http"

	"github.com/tomtom215/reelmatch/internal/auth"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// SchemaResponse is the body of POST /schema.
type SchemaResponse struct {
	Status        string   `json:"status"`
	SchemaVersion int      `json:"schema_version"`
	ContentTypes  []string `json:"content_types"`
}

// CreateSchema handles POST /api/v1/schema. It is idempotent.
func (h *Handler) CreateSchema(w http.ResponseWriter, r *http.Request) {
	err := h.store.EnsureSchema(r.Context())
	h.audit.LogAdminAction("schema", auth.SubjectFromContext(r.Context()), "", r.RemoteAddr, err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	version, err := h.store.GetCurrentSchemaVersion(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	names := make([]string, len(recommend.ContentTypes))
	for i, ct := range recommend.ContentTypes {
		names[i] = string(ct)
	}
	NewResponseWriter(w, r).OK(SchemaResponse{Status: "ok", SchemaVersion: version, ContentTypes: names})
}
