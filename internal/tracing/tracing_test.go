// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package tracing

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
)

func TestInitDisabled(t *testing.T) {
	shutdown, err := Init(context.Background(), &config.TracingConfig{Enabled: false}, "test", logging.NewTestLogger(io.Discard))
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown: %v", err)
	}
}

func TestStdoutProviderExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.TracingConfig{Enabled: true, Exporter: "stdout", SamplerRatio: 1, ServiceName: "reelmatch-test"}

	tp, err := NewProvider(context.Background(), cfg, "test", &buf)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	_, span := tp.Tracer("tracing_test").Start(context.Background(), "recommend.Train")
	span.End()

	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	out := buf.String()
	for _, want := range []string{`"Name":"recommend.Train"`, "reelmatch-test"} {
		if !strings.Contains(out, want) {
			t.Errorf("exported spans missing %s:\n%s", want, out)
		}
	}
}

func TestSamplerRatioZeroDropsSpans(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.TracingConfig{Enabled: true, Exporter: "stdout", SamplerRatio: 0}

	tp, err := NewProvider(context.Background(), cfg, "test", &buf)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	_, span := tp.Tracer("tracing_test").Start(context.Background(), "dropped")
	span.End()
	if err := tp.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no exported spans, got %s", buf.String())
	}
}

func TestUnknownExporter(t *testing.T) {
	_, err := NewProvider(context.Background(), &config.TracingConfig{Enabled: true, Exporter: "zipkin"}, "test", io.Discard)
	if err == nil {
		t.Fatal("expected error for unknown exporter")
	}
}
