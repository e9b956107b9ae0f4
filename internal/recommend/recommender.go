// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend/features"
	"github.com/tomtom215/reelmatch/internal/recommend/index"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

// Recommender serves recommendations from the latest trained model of each
// content type. Models are loaded lazily on first use and replaced by Reload.
type Recommender struct {
	cfg      Config
	store    *storage.Store
	registry RunRegistry
	logger   zerolog.Logger

	// fixed at construction; only the pointed-to models change
	active map[ContentType]*atomic.Pointer[Model]
	loads  singleflight.Group
}

// NewRecommender creates a Recommender. No model is loaded until needed.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewRecommender(cfg Config, store *storage.Store, registry RunRegistry, logger zerolog.Logger) *Recommender {
	r := &Recommender{
		cfg:      cfg,
		store:    store,
		registry: registry,
		logger:   logger.With().Str("component", "recommender").Logger(),
		active:   make(map[ContentType]*atomic.Pointer[Model], len(ContentTypes)),
	}
	for _, ct := range ContentTypes {
		r.active[ct] = &atomic.Pointer[Model]{}
	}
	return r
}

func (r *Recommender) slot(ct ContentType) (*atomic.Pointer[Model], error) {
	p, ok := r.active[ct]
	if !ok {
		return nil, &InputValidationError{Field: "content_type", Message: fmt.Sprintf("unknown content type %q", ct)}
	}
	return p, nil
}

// Loaded returns the active model of ct, or nil.
func (r *Recommender) Loaded(ct ContentType) *Model {
	p, err := r.slot(ct)
	if err != nil {
		return nil
	}
	return p.Load()
}

// Model returns the active model of ct, loading the latest run on first
// use. Concurrent first callers share one load; a caller whose ctx ends
// stops waiting but the load carries on for the others.
func (r *Recommender) Model(ctx context.Context, ct ContentType) (*Model, error) {
	p, err := r.slot(ct)
	if err != nil {
		return nil, err
	}
	if m := p.Load(); m != nil {
		return m, nil
	}
	return r.shared(ctx, string(ct), func(lctx context.Context) (*Model, error) {
		if m := p.Load(); m != nil {
			return m, nil
		}
		return r.loadLatest(lctx, ct, p)
	})
}

// Reload resolves the latest run of ct and swaps it in. The active model is
// kept when loading fails.
func (r *Recommender) Reload(ctx context.Context, ct ContentType) (*Model, error) {
	p, err := r.slot(ct)
	if err != nil {
		return nil, err
	}
	return r.shared(ctx, "reload:"+string(ct), func(lctx context.Context) (*Model, error) {
		return r.loadLatest(lctx, ct, p)
	})
}

// shared runs load once per key for all concurrent callers. The load gets
// the first caller's values but not its cancellation, and is bounded by
// LoadTimeout instead.
func (r *Recommender) shared(ctx context.Context, key string, load func(context.Context) (*Model, error)) (*Model, error) {
	ch := r.loads.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.loadTimeout())
		defer cancel()
		m, err := load(lctx)
		return m, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Model), nil
	}
}

func (r *Recommender) loadLatest(ctx context.Context, ct ContentType, p *atomic.Pointer[Model]) (*Model, error) {
	run, err := r.registry.LatestRun(ctx, ct)
	if err != nil {
		if !errors.Is(err, ErrArtifactNotFound) {
			err = &StorageIOError{Op: "resolve latest run", Err: err}
		}
		metrics.RecordModelReload(string(ct), err)
		return nil, err
	}
	m, err := r.LoadModel(ctx, ct, run.JobID)
	metrics.RecordModelReload(string(ct), err)
	if err != nil {
		return nil, err
	}
	if prev := p.Swap(m); prev == nil || prev.JobID != m.JobID {
		r.logger.Info().
			Str("content_type", string(ct)).
			Str("job_id", m.JobID).
			Int("rows", m.Index.Len()).
			Msg("model loaded")
	}
	return m, nil
}

// LoadModel reads the artifacts of one job. It does not change the active
// model.
func (r *Recommender) LoadModel(ctx context.Context, ct ContentType, jobID string) (*Model, error) {
	ctx, span := tracer.Start(ctx, "recommend.LoadModel")
	defer span.End()
	span.SetAttributes(attribute.String("content_type", string(ct)), attribute.String("job_id", jobID))

	load := func(name string, target any) error {
		err := r.store.LoadArtifact(ctx, string(ct), jobID, name, target)
		switch {
		case err == nil:
			return nil
		case errors.Is(err, storage.ErrNotFound):
			return &ArtifactNotFoundError{ContentType: ct, JobID: jobID, Err: err}
		default:
			return &StorageIOError{Op: "load " + name, JobID: jobID, Err: err}
		}
	}

	var meta modelMetadata
	vec := &features.TFIDFVectorizer{}
	ix := &index.Index{}
	if err := load(storage.ArtifactMetadata, &meta); err != nil {
		return nil, err
	}
	if err := load(storage.ArtifactVectorizer, vec); err != nil {
		return nil, err
	}
	if err := load(storage.ArtifactIndex, ix); err != nil {
		return nil, err
	}
	var scaler *features.StandardScaler
	if ct.UsesNumericFeatures() {
		scaler = &features.StandardScaler{}
		if err := load(storage.ArtifactScaler, scaler); err != nil {
			return nil, err
		}
	}
	if ix.Len() != len(meta.Items) {
		return nil, &StorageIOError{
			Op:    "load model",
			JobID: jobID,
			Err:   fmt.Errorf("index has %d rows but metadata has %d", ix.Len(), len(meta.Items)),
		}
	}

	return &Model{
		JobID:       jobID,
		ContentType: ct,
		Params:      meta.Params,
		CreatedAt:   meta.CreatedAt,
		Vectorizer:  vec,
		Scaler:      scaler,
		Index:       ix,
		Metadata:    meta.Items,
	}, nil
}

// Manifest reads the stored manifest of one job: its artifact keys,
// checksums and sizes.
func (r *Recommender) Manifest(ctx context.Context, ct ContentType, jobID string) (*storage.Manifest, error) {
	m, err := r.store.LoadManifest(ctx, string(ct), jobID)
	switch {
	case err == nil:
		return m, nil
	case errors.Is(err, storage.ErrNotFound):
		return nil, &ArtifactNotFoundError{ContentType: ct, JobID: jobID, Err: err}
	default:
		return nil, &StorageIOError{Op: "load manifest", JobID: jobID, Err: err}
	}
}

// StoredJobs lists the jobs of ct that have artifacts on storage, newest
// first. Runs missing from the registry are included.
func (r *Recommender) StoredJobs(ctx context.Context, ct ContentType) ([]string, error) {
	jobs, err := r.store.ListJobs(ctx, string(ct))
	if err != nil {
		return nil, &StorageIOError{Op: "list jobs", Err: err}
	}
	return jobs, nil
}

// Recommend answers a batch query against the active model of ct. Invalid
// items are reported in the result's Errors; the call itself fails only on
// an invalid batch or a missing model.
func (r *Recommender) Recommend(ctx context.Context, ct ContentType, items []CatalogItem) (_ *RecommendResult, err error) {
	ctx, span := tracer.Start(ctx, "recommend.Recommend")
	defer span.End()
	span.SetAttributes(attribute.String("content_type", string(ct)), attribute.Int("items", len(items)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if len(items) == 0 {
		return nil, &InputValidationError{Field: "data", Message: "a non-empty list of items is required"}
	}
	if r.cfg.MaxBatch > 0 && len(items) > r.cfg.MaxBatch {
		return nil, &InputValidationError{Field: "data", Message: fmt.Sprintf("at most %d items per request, got %d", r.cfg.MaxBatch, len(items))}
	}
	m, err := r.Model(ctx, ct)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res := m.RecommendBatch(items)
	metrics.RecordRecommendBatch(string(ct), len(res.Recommendations), len(res.Errors), time.Since(start))
	span.SetAttributes(
		attribute.String("job_id", m.JobID),
		attribute.Int("answered", len(res.Recommendations)),
		attribute.Int("rejected", len(res.Errors)),
	)
	for _, ie := range res.Errors {
		r.logger.Debug().
			Str("content_type", string(ct)).
			Int("index", ie.Index).
			Str("title", ie.Title).
			Str("error", ie.Error).
			Msg("query item rejected")
	}
	return res, nil
}
