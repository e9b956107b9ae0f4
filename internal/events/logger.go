// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package events

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

// ZerologAdapter implements watermill.LoggerAdapter on top of zerolog.
type ZerologAdapter struct {
	logger zerolog.Logger
}

var _ watermill.LoggerAdapter = (*ZerologAdapter)(nil)

// NewZerologAdapter wraps logger for Watermill components.
func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Error implements watermill.LoggerAdapter.
func (a *ZerologAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error().Err(err).Fields(map[string]interface{}(fields)).Msg(msg)
}

// Info implements watermill.LoggerAdapter.
func (a *ZerologAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Debug implements watermill.LoggerAdapter.
func (a *ZerologAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug().Fields(map[string]interface{}(fields)).Msg(msg)
}

// Trace implements watermill.LoggerAdapter.
func (a *ZerologAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Trace().Fields(map[string]interface{}(fields)).Msg(msg)
}

// With implements watermill.LoggerAdapter.
func (a *ZerologAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &ZerologAdapter{logger: a.logger.With().Fields(map[string]interface{}(fields)).Logger()}
}
