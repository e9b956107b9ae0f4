// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelmatch/internal/events"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// EventSource delivers model events until ctx is canceled.
type EventSource interface {
	Consume(ctx context.Context, fn events.Handler) error
}

// Reloader swaps in the latest model of a content type.
type Reloader interface {
	Loaded(ct recommend.ContentType) *recommend.Model
	Reload(ctx context.Context, ct recommend.ContentType) (*recommend.Model, error)
}

// ReloadService hot reloads models announced on the event bus.
type ReloadService struct {
	source   EventSource
	reloader Reloader
	limiter  *rate.Limiter
	enabled  map[recommend.ContentType]bool
	onReload func(*recommend.Model)
	logger   zerolog.Logger
}

// NewReloadService creates the reload service. perSecond caps reloads;
// contentTypes lists the pipelines this process serves, events for others
// are ignored.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReloadService(source EventSource, reloader Reloader, contentTypes []recommend.ContentType, perSecond float64, logger zerolog.Logger) *ReloadService {
	if perSecond <= 0 {
		perSecond = 1
	}
	enabled := make(map[recommend.ContentType]bool, len(contentTypes))
	for _, ct := range contentTypes {
		enabled[ct] = true
	}
	return &ReloadService{
		source:   source,
		reloader: reloader,
		limiter:  rate.NewLimiter(rate.Limit(perSecond), 1),
		enabled:  enabled,
		logger:   logger.With().Str("service", "reload").Logger(),
	}
}

// OnReload registers fn to run after every successful reload.
func (s *ReloadService) OnReload(fn func(*recommend.Model)) {
	s.onReload = fn
}

// Serve implements suture.Service.
func (s *ReloadService) Serve(ctx context.Context) error {
	if err := s.source.Consume(ctx, s.handle); err != nil {
		return fmt.Errorf("consume model events: %w", err)
	}
	return ctx.Err()
}

func (s *ReloadService) handle(ctx context.Context, ev recommend.ModelEvent) error {
	logger := s.logger.With().Str("content_type", string(ev.ContentType)).Str("job_id", ev.JobID).Logger()

	if !s.enabled[ev.ContentType] {
		logger.Debug().Msg("ignoring event for content type not served here")
		return nil
	}
	if m := s.reloader.Loaded(ev.ContentType); m != nil && m.JobID == ev.JobID {
		logger.Debug().Msg("model already active")
		return nil
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	m, err := s.reloader.Reload(ctx, ev.ContentType)
	if err != nil {
		return fmt.Errorf("reload %s: %w", ev.ContentType, err)
	}
	// LatestRun may already point past the announced job
	logger.Info().Str("active_job_id", m.JobID).Msg("model reloaded from event")
	if s.onReload != nil {
		s.onReload(m)
	}
	return nil
}

// String implements fmt.Stringer for suture's logs.
func (s *ReloadService) String() string {
	return "reload-service"
}
