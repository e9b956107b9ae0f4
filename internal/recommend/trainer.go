// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/metrics"
	"github.com/tomtom215/reelmatch/internal/recommend/storage"
)

var tracer = otel.Tracer("github.com/tomtom215/reelmatch/internal/recommend")

// TrainingStatus reports the state of one content type's pipeline.
type TrainingStatus struct {
	IsTraining             bool      `json:"is_training"`
	LastJobID              string    `json:"last_job_id,omitempty"`
	LastTrainedAt          time.Time `json:"last_trained_at"`
	LastTrainingDurationMS int64     `json:"last_training_duration_ms"`
	LastError              string    `json:"last_error,omitempty"`
	Rows                   int       `json:"rows"`
	DroppedRows            int       `json:"dropped_rows"`
}

type pipeline struct {
	mu     sync.Mutex // held for the whole run
	statMu sync.RWMutex
	status TrainingStatus
}

// Trainer runs training jobs. It is safe for concurrent use; a second Train
// call for a content type already training fails with ErrTrainingInProgress.
type Trainer struct {
	cfg       Config
	catalog   CatalogSource
	store     *storage.Store
	registry  RunRegistry
	publisher ModelPublisher
	logger    zerolog.Logger

	pipelines map[ContentType]*pipeline

	now      func() time.Time
	newJobID func(time.Time) string
}

// NewTrainer creates a Trainer.
//
//nolint:gocritic // zerolog.Logger is passed by value by convention
func NewTrainer(cfg Config, catalog CatalogSource, store *storage.Store, registry RunRegistry, logger zerolog.Logger) *Trainer {
	t := &Trainer{
		cfg:       cfg,
		catalog:   catalog,
		store:     store,
		registry:  registry,
		logger:    logger.With().Str("component", "trainer").Logger(),
		pipelines: make(map[ContentType]*pipeline, len(ContentTypes)),
		now:       time.Now,
		newJobID:  NewJobID,
	}
	for _, ct := range ContentTypes {
		t.pipelines[ct] = &pipeline{}
	}
	return t
}

// SetPublisher sets the sink notified after every successful run.
func (t *Trainer) SetPublisher(p ModelPublisher) { t.publisher = p }

// NewJobID returns a sortable run identifier: a UTC minute timestamp
// followed by a random suffix.
func NewJobID(now time.Time) string {
	return now.UTC().Format("200601021504") + "-" + uuid.NewString()
}

// Status returns a snapshot of a pipeline's training state.
func (t *Trainer) Status(ct ContentType) (TrainingStatus, bool) {
	p, ok := t.pipelines[ct]
	if !ok {
		return TrainingStatus{}, false
	}
	p.statMu.RLock()
	defer p.statMu.RUnlock()
	return p.status, true
}

func (p *pipeline) update(fn func(*TrainingStatus)) {
	p.statMu.Lock()
	fn(&p.status)
	p.statMu.Unlock()
}

// Train runs one full training job for ct. params may be nil; unset fields
// take the configured defaults. No run is recorded unless every artifact
// was written.
func (t *Trainer) Train(ctx context.Context, ct ContentType, params *Params) (*TrainResult, error) {
	p, ok := t.pipelines[ct]
	if !ok {
		return nil, &InputValidationError{Field: "content_type", Message: fmt.Sprintf("unknown content type %q", ct)}
	}
	resolved, err := t.cfg.ResolveParams(params)
	if err != nil {
		return nil, err
	}
	if !p.mu.TryLock() {
		metrics.RecordTrainingRun(string(ct), "busy", 0)
		return nil, fmt.Errorf("%s: %w", ct, ErrTrainingInProgress)
	}
	defer p.mu.Unlock()

	start := t.now()
	jobID := t.newJobID(start)
	ctx = logging.ContextWithJob(logging.ContextWithLogger(ctx, t.logger), string(ct), jobID)
	logger := *logging.Ctx(ctx)

	ctx, cancel := context.WithTimeout(ctx, t.cfg.TrainTimeout)
	defer cancel()
	ctx, span := tracer.Start(ctx, "recommend.Train")
	defer span.End()
	span.SetAttributes(
		attribute.String("content_type", string(ct)),
		attribute.String("job_id", jobID),
		attribute.Int("n_neighbors", resolved.NNeighbors),
		attribute.String("metric", resolved.Metric),
	)

	p.update(func(s *TrainingStatus) {
		s.IsTraining = true
		s.LastError = ""
	})
	logger.Info().Int("n_neighbors", resolved.NNeighbors).Str("metric", resolved.Metric).Msg("starting training run")

	res, err := t.run(ctx, ct, jobID, start, resolved, logger)
	elapsed := time.Since(start)

	p.update(func(s *TrainingStatus) {
		s.IsTraining = false
		s.LastTrainingDurationMS = elapsed.Milliseconds()
		if err != nil {
			s.LastError = err.Error()
			return
		}
		s.LastJobID = jobID
		s.LastTrainedAt = start.UTC()
		s.Rows = res.Rows
		s.DroppedRows = res.DroppedRows
	})
	metrics.RecordTrainingRun(string(ct), trainingStatusLabel(err), elapsed)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Dur("duration", elapsed).Msg("training run failed")
		return nil, err
	}
	res.Duration = elapsed

	logger.Info().
		Float64("map_at_k", res.MAPAtK).
		Float64("coverage", res.Coverage).
		Float64("intra_list_similarity", res.ILS).
		Int("rows", res.Rows).
		Int64("duration_ms", elapsed.Milliseconds()).
		Msg("training run complete")

	t.publish(ctx, ModelEvent{
		JobID:       jobID,
		ContentType: ct,
		ModelPath:   res.ModelPath,
		MAPAtK:      res.MAPAtK,
		CreatedAt:   start.UTC(),
	}, logger)

	return res, nil
}

func (t *Trainer) run(ctx context.Context, ct ContentType, jobID string, start time.Time, params Params, logger zerolog.Logger) (*TrainResult, error) { //nolint:gocritic // logger by value
	items, err := t.catalog.LoadCatalog(ctx)
	if err != nil {
		return nil, &StorageIOError{Op: "load catalog", JobID: jobID, Err: err}
	}

	built, err := BuildModel(ctx, ct, jobID, start.UTC(), items, params, t.cfg.EvalWorkers)
	if err != nil {
		return nil, err
	}
	model := built.Model
	eval := built.Evaluation

	metrics.RecordTrainingRows(string(ct), model.Index.Len(), built.Drops.AsMap())
	if d := built.Drops.Dropped(); d > 0 {
		logger.Warn().
			Int("missing_title", built.Drops.MissingTitle).
			Int("invalid_numeric", built.Drops.InvalidNumeric).
			Msg("dropped unusable catalog rows")
	}

	values := map[string]any{
		storage.ArtifactVectorizer: model.Vectorizer,
		storage.ArtifactIndex:      model.Index,
		storage.ArtifactMetadata: &modelMetadata{
			JobID:       jobID,
			ContentType: ct,
			Params:      params,
			CreatedAt:   model.CreatedAt,
			Items:       model.Metadata,
		},
	}
	if model.Scaler != nil {
		values[storage.ArtifactScaler] = model.Scaler
	}
	infos, err := t.store.SaveArtifacts(ctx, string(ct), jobID, values)
	if err != nil {
		t.discard(ctx, ct, jobID, logger)
		return nil, &StorageIOError{Op: "save artifacts", JobID: jobID, Err: err}
	}

	metricValues := eval.AsMap()
	manifestKey, err := t.store.SaveManifest(ctx, &storage.Manifest{
		JobID:          jobID,
		ContentType:    string(ct),
		ModelName:      t.cfg.ModelName,
		CreatedAt:      model.CreatedAt,
		Parameters:     params.AsMap(),
		Rows:           model.Index.Len(),
		VocabularySize: model.Vectorizer.Size(),
		Dimensions:     model.Index.Dim(),
		Metrics:        metricValues,
		Artifacts:      infos,
	})
	if err != nil {
		t.discard(ctx, ct, jobID, logger)
		return nil, &StorageIOError{Op: "save manifest", JobID: jobID, Err: err}
	}

	rec := RunRecord{
		JobID:      jobID,
		Name:       t.cfg.ModelName,
		GCSPath:    t.store.URI(t.store.RunDir(string(ct), jobID)),
		ModelPath:  infos[storage.ArtifactIndex].URI,
		Metrics:    metricValues,
		Parameters: params.AsMap(),
		CreatedAt:  model.CreatedAt,
	}
	if vi, ok := infos[storage.ArtifactVectorizer]; ok {
		rec.VectorizerPath = vi.URI
	}
	if si, ok := infos[storage.ArtifactScaler]; ok {
		rec.ScalerPath = si.URI
	}
	if err := t.registry.RecordRun(ctx, ct, rec); err != nil {
		t.discard(ctx, ct, jobID, logger)
		return nil, &StorageIOError{Op: "record run", JobID: jobID, Err: err}
	}

	for name, v := range metricValues {
		metrics.SetModelQuality(string(ct), name, v)
	}

	artifacts := make(map[string]string, len(infos)+1)
	for name, info := range infos {
		artifacts[name] = info.URI
	}
	artifacts["manifest"] = t.store.URI(manifestKey)

	return &TrainResult{
		JobID:          jobID,
		ContentType:    ct,
		MAPAtK:         eval.MAPAtK,
		Coverage:       eval.Coverage,
		ILS:            eval.IntraListSimilarity,
		Rows:           model.Index.Len(),
		DroppedRows:    built.Drops.Dropped(),
		VocabularySize: model.Vectorizer.Size(),
		ModelPath:      rec.ModelPath,
		GCSPath:        rec.GCSPath,
		Artifacts:      artifacts,
		Parameters:     params,
	}, nil
}

// discard removes what a failed run wrote. Nothing references the files,
// so a failure here only leaks storage.
func (t *Trainer) discard(ctx context.Context, ct ContentType, jobID string, logger zerolog.Logger) { //nolint:gocritic // logger by value
	if err := t.store.DeleteRun(context.WithoutCancel(ctx), string(ct), jobID); err != nil {
		logger.Warn().Err(err).Msg("failed to remove artifacts of failed run")
	}
}

func (t *Trainer) publish(ctx context.Context, ev ModelEvent, logger zerolog.Logger) { //nolint:gocritic // logger by value
	if t.publisher == nil {
		return
	}
	if err := t.publisher.PublishModel(ctx, ev); err != nil {
		logger.Warn().Err(err).Msg("failed to publish model event")
	}
}

func trainingStatusLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrEmptyTrainingSet):
		return "empty"
	case errors.Is(err, ErrStorageIO):
		return "storage_error"
	default:
		return "error"
	}
}
