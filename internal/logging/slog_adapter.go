// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// SlogHandler adapts zerolog to slog.Handler for libraries that only speak
// slog. The supervisor tree logs its restarts and backoffs through it.
//
// Groups become dotted key prefixes: WithGroup("event") followed by
// Info("x", "service", "train") yields "event.service":"train".
type SlogHandler struct {
	logger zerolog.Logger
	prefix string
}

// NewSlogHandlerWithLogger returns a handler that writes through logger.
//
//nolint:gocritic // zerolog.Logger is passed by value
func NewSlogHandlerWithLogger(logger zerolog.Logger) *SlogHandler {
	return &SlogHandler{logger: logger}
}

// NewSlogLogger returns an slog.Logger over the current global logger.
func NewSlogLogger() *slog.Logger {
	return slog.New(NewSlogHandlerWithLogger(Logger()))
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return zerologLevel(level) >= h.logger.GetLevel()
}

//nolint:gocritic // slog.Record is passed by value per slog.Handler
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	ev := h.logger.WithLevel(zerologLevel(r.Level))
	r.Attrs(func(a slog.Attr) bool {
		ev = ev.Fields(attrFields(h.prefix, a, nil))
		return true
	})
	ev.Msg(r.Message)
	return nil
}

// WithAttrs bakes attrs into a child logger under the current prefix, so
// groups opened later do not rename them.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.logger.With()
	for _, a := range attrs {
		c = c.Fields(attrFields(h.prefix, a, nil))
	}
	return &SlogHandler{logger: c.Logger(), prefix: h.prefix}
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SlogHandler{logger: h.logger, prefix: h.prefix + name + "."}
}

// attrFields flattens a into key/value pairs, recursing into groups.
// Durations and times stay typed so zerolog formats them its own way.
func attrFields(prefix string, a slog.Attr, dst []any) []any {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, ga := range v.Group() {
			dst = attrFields(inner, ga, dst)
		}
		return dst
	}
	if a.Key == "" {
		return dst
	}
	return append(dst, prefix+a.Key, v.Any())
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level >= slog.LevelError:
		return zerolog.ErrorLevel
	case level >= slog.LevelWarn:
		return zerolog.WarnLevel
	case level >= slog.LevelInfo:
		return zerolog.InfoLevel
	case level >= slog.LevelDebug:
		return zerolog.DebugLevel
	default:
		return zerolog.TraceLevel
	}
}
