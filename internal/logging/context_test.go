// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || CorrelationIDFromContext(ctx) != "" {
		t.Fatal("empty context should carry no IDs")
	}

	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	if got := RequestIDFromContext(ctx); got != "req-1" {
		t.Errorf("RequestIDFromContext() = %q, want req-1", got)
	}
	if got := CorrelationIDFromContext(ctx); got != "corr-1" {
		t.Errorf("CorrelationIDFromContext() = %q, want corr-1", got)
	}

	a := CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background()))
	b := CorrelationIDFromContext(ContextWithNewCorrelationID(context.Background()))
	if len(a) != 8 || a == b {
		t.Errorf("ContextWithNewCorrelationID() IDs = %q, %q; want distinct 8 char IDs", a, b)
	}

	if _, _, ok := JobFromContext(ctx); ok {
		t.Error("JobFromContext() ok without a job")
	}
	ctx = ContextWithJob(ctx, "shows", "job-7")
	if ct, id, ok := JobFromContext(ctx); !ok || ct != "shows" || id != "job-7" {
		t.Errorf("JobFromContext() = %q, %q, %v", ct, id, ok)
	}
}

func TestCtx(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRequestID(ctx, "req-42")
	ctx = ContextWithCorrelationID(ctx, "abcd1234")
	ctx = ContextWithJob(ctx, "movies", "7f3c")

	Ctx(ctx).Info().Msg("handled")

	out := buf.String()
	for _, want := range []string{
		`"request_id":"req-42"`,
		`"correlation_id":"abcd1234"`,
		`"content_type":"movies"`,
		`"job_id":"7f3c"`,
		"handled",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output: %s", want, out)
		}
	}
	if strings.Contains(out, "trace_id") {
		t.Errorf("trace_id logged without a span: %s", out)
	}
}

func TestCtx_SpanContext(t *testing.T) {
	var buf bytes.Buffer
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	ctx = ContextWithLogger(ctx, NewTestLogger(&buf))

	Ctx(ctx).Info().Msg("traced")

	out := buf.String()
	if !strings.Contains(out, `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`) {
		t.Errorf("expected trace_id in output: %s", out)
	}
	if !strings.Contains(out, `"span_id":"00f067aa0ba902b7"`) {
		t.Errorf("expected span_id in output: %s", out)
	}
}

func TestCtx_FallsBackToGlobal(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Service: "reelmatch", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })

	Ctx(ContextWithRequestID(context.Background(), "req-9")).Info().Msg("global")

	out := buf.String()
	for _, want := range []string{`"app":"reelmatch"`, `"request_id":"req-9"`, "global"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output: %s", want, out)
		}
	}
}
