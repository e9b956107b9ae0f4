// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CleanupService runs a sweep function on a fixed interval. The sweep
// returns how many entries it removed.
type CleanupService struct {
	name     string
	interval time.Duration
	sweep    func() int
	logger   zerolog.Logger
}

// NewCleanupService creates a periodic sweeper. interval defaults to 1m.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCleanupService(name string, interval time.Duration, sweep func() int, logger zerolog.Logger) *CleanupService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CleanupService{
		name:     name,
		interval: interval,
		sweep:    sweep,
		logger:   logger.With().Str("service", name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *CleanupService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if n := s.sweep(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("cleanup sweep")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (s *CleanupService) String() string {
	return s.name
}
