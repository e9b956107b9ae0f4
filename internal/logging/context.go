// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey int

const (
	keyCorrelationID ctxKey = iota
	keyRequestID
	keyLogger
	keyJob
)

// job identifies the training run a context belongs to.
type job struct {
	contentType string
	id          string
}

// ContextWithCorrelationID tags ctx so that every line logged through Ctx
// carries correlation_id.
func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyCorrelationID, id)
}

// ContextWithNewCorrelationID tags ctx with a fresh eight character ID.
// Scheduled training and event handling have no request ID, so this is
// what ties their lines together.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, uuid.NewString()[:8])
}

func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyCorrelationID).(string)
	return id
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// ContextWithJob marks ctx as belonging to one training run. Storage code
// called from the run then logs content_type and job_id without having
// them passed in.
func ContextWithJob(ctx context.Context, contentType, jobID string) context.Context {
	return context.WithValue(ctx, keyJob, job{contentType: contentType, id: jobID})
}

// JobFromContext returns the values set by ContextWithJob, if any.
func JobFromContext(ctx context.Context) (contentType, jobID string, ok bool) {
	j, ok := ctx.Value(keyJob).(job)
	return j.contentType, j.id, ok
}

// ContextWithLogger makes logger the base for Ctx. Components that own a
// logger with their own fields use it so those fields survive into
// shared code.
//
//nolint:gocritic // zerolog.Logger is passed by value
func ContextWithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// Ctx returns the context's logger, or the global one, with every ID the
// context carries added as a field. Inside a sampled span that includes
// trace_id and span_id.
//
//	logging.Ctx(ctx).Info().Int("rows", n).Msg("Catalog loaded")
func Ctx(ctx context.Context) *zerolog.Logger {
	base, ok := ctx.Value(keyLogger).(zerolog.Logger)
	if !ok {
		base = Logger()
	}
	c := base.With()

	if id := CorrelationIDFromContext(ctx); id != "" {
		c = c.Str("correlation_id", id)
	}
	if id := RequestIDFromContext(ctx); id != "" {
		c = c.Str("request_id", id)
	}
	if ct, id, ok := JobFromContext(ctx); ok {
		c = c.Str("content_type", ct).Str("job_id", id)
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		c = c.Str("trace_id", sc.TraceID().String()).Str("span_id", sc.SpanID().String())
	}

	l := c.Logger()
	return &l
}
