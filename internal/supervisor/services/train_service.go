// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// Trainer runs one training pipeline.
type Trainer interface {
	Train(ctx context.Context, ct recommend.ContentType, params *recommend.Params) (*recommend.TrainResult, error)
}

// TrainServiceConfig holds configuration for the training service.
type TrainServiceConfig struct {
	// ContentTypes are trained in order on every cycle.
	ContentTypes []recommend.ContentType

	// TrainOnStartup runs a cycle as soon as the service starts.
	TrainOnStartup bool

	// TrainInterval is the time between scheduled cycles. 0 disables the
	// schedule.
	TrainInterval time.Duration

	// TrainTimeout bounds each pipeline run. Default: 30m
	TrainTimeout time.Duration
}

// TrainService trains models on startup and on a schedule.
type TrainService struct {
	trainer Trainer
	config  TrainServiceConfig
	logger  zerolog.Logger
}

// NewTrainService creates the training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainService(trainer Trainer, cfg TrainServiceConfig, logger zerolog.Logger) *TrainService {
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &TrainService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "train").Logger(),
	}
}

// Serve implements suture.Service. With neither startup training nor a
// schedule there is nothing to do and the service asks not to be
// restarted.
func (s *TrainService) Serve(ctx context.Context) error {
	if s.config.TrainOnStartup {
		s.cycle(ctx, "startup")
	}
	if s.config.TrainInterval <= 0 {
		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	s.logger.Info().Dur("train_interval", s.config.TrainInterval).Msg("scheduled training enabled")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.cycle(ctx, "schedule")
		}
	}
}

// cycle trains every content type. Failures are logged and the next
// content type still runs.
func (s *TrainService) cycle(ctx context.Context, trigger string) {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	logger := s.logger.With().
		Str("trigger", trigger).
		Str("correlation_id", logging.CorrelationIDFromContext(ctx)).
		Logger()
	ctx = logging.ContextWithLogger(ctx, logger)

	for _, ct := range s.config.ContentTypes {
		if ctx.Err() != nil {
			return
		}
		s.trainOne(ctx, ct, logger)
	}
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func (s *TrainService) trainOne(ctx context.Context, ct recommend.ContentType, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	res, err := s.trainer.Train(ctx, ct, nil)
	switch {
	case err == nil:
		logger.Info().
			Str("content_type", string(ct)).
			Str("job_id", res.JobID).
			Float64("map_at_k", res.MAPAtK).
			Dur("duration", res.Duration).
			Msg("training run complete")
	case errors.Is(err, recommend.ErrTrainingInProgress):
		logger.Info().Str("content_type", string(ct)).Msg("training already running, skipping")
	case errors.Is(err, recommend.ErrEmptyTrainingSet):
		logger.Warn().Err(err).Str("content_type", string(ct)).Msg("no rows to train on")
	default:
		logger.Error().Err(err).Str("content_type", string(ct)).Msg("training run failed")
	}
}

// String implements fmt.Stringer for suture's logs.
func (s *TrainService) String() string {
	return "train-service"
}
