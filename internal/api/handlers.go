// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/patrickmn/go-cache"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

// Trainer runs training jobs.
type Trainer interface {
	Train(ctx context.Context, ct recommend.ContentType, params *recommend.Params) (*recommend.TrainResult, error)
	Status(ct recommend.ContentType) (recommend.TrainingStatus, bool)
}

// Recommender serves recommendations from the active models.
type Recommender interface {
	Recommend(ctx context.Context, ct recommend.ContentType, items []recommend.CatalogItem) (*recommend.RecommendResult, error)
	Model(ctx context.Context, ct recommend.ContentType) (*recommend.Model, error)
	Loaded(ct recommend.ContentType) *recommend.Model
	Reload(ctx context.Context, ct recommend.ContentType) (*recommend.Model, error)
	Manifest(ctx context.Context, ct recommend.ContentType, jobID string) (*storage.Manifest, error)
	StoredJobs(ctx context.Context, ct recommend.ContentType) ([]string, error)
}

// TitleLookup resolves a catalog title to its showType.
type TitleLookup interface {
	LookupShowType(ctx context.Context, title string) (string, error)
}

// Store is the registry database.
type Store interface {
	Ping(ctx context.Context) error
	EnsureSchema(ctx context.Context) error
	GetCurrentSchemaVersion(ctx context.Context) (int, error)
}

// Dependencies are the collaborators of Handler.
type Dependencies struct {
	Trainer      Trainer
	Recommender  Recommender
	Registry     recommend.RunRegistry
	Catalog      TitleLookup
	Store        Store
	ContentTypes []recommend.ContentType
	Audit        *logging.SecurityLogger

	// LookupTTL caches title lookups for /predict. 0 disables the cache.
	LookupTTL time.Duration

	// TrainTimeout bounds a synchronous training request.
	TrainTimeout time.Duration
}

// Handler implements the HTTP endpoints.
type Handler struct {
	trainer      Trainer
	recommender  Recommender
	registry     recommend.RunRegistry
	catalog      TitleLookup
	store        Store
	audit        *logging.SecurityLogger
	enabled      map[recommend.ContentType]bool
	lookups      *cache.Cache
	trainTimeout time.Duration
	startTime    time.Time
}

// NewHandler creates a Handler.
func NewHandler(deps *Dependencies) *Handler {
	h := &Handler{
		trainer:      deps.Trainer,
		recommender:  deps.Recommender,
		registry:     deps.Registry,
		catalog:      deps.Catalog,
		store:        deps.Store,
		audit:        deps.Audit,
		enabled:      make(map[recommend.ContentType]bool),
		trainTimeout: deps.TrainTimeout,
		startTime:    time.Now(),
	}
	if h.audit == nil {
		h.audit = logging.NewSecurityLogger()
	}
	if deps.LookupTTL > 0 {
		h.lookups = cache.New(deps.LookupTTL, 2*deps.LookupTTL)
	}
	cts := deps.ContentTypes
	if len(cts) == 0 {
		cts = recommend.ContentTypes
	}
	for _, ct := range cts {
		h.enabled[ct] = true
	}
	return h
}

// FlushLookups clears the title lookup cache. The catalog may have
// changed when a new model is trained.
func (h *Handler) FlushLookups() {
	if h.lookups != nil {
		h.lookups.Flush()
	}
}

// contentType parses the {contentType} URL parameter. Content types this
// process does not serve are reported as not found.
func (h *Handler) contentType(w http.ResponseWriter, r *http.Request) (recommend.ContentType, bool) {
	ct, err := recommend.ParseContentType(chi.URLParam(r, "contentType"))
	if err != nil {
		NewResponseWriter(w, r).NotFound(ErrCodeNotFound, err.Error())
		return "", false
	}
	if !h.enabled[ct] {
		NewResponseWriter(w, r).NotFound(ErrCodeNotFound, "content type "+string(ct)+" is not served by this instance")
		return "", false
	}
	return ct, true
}
