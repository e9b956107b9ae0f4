// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package tracing configures the OpenTelemetry tracer provider. Training
// runs, artifact I/O and recommendation batches create spans through
// otel.Tracer; without Init those spans go to the global no-op provider.
package tracing

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/tomtom215/reelmatch/internal/config"
)

// ShutdownFunc flushes pending spans and stops the exporter.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Init installs a global tracer provider for cfg. When tracing is disabled
// nothing is installed and the returned ShutdownFunc is a no-op.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Init(ctx context.Context, cfg *config.TracingConfig, environment string, logger zerolog.Logger) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	tp, err := NewProvider(ctx, cfg, environment, os.Stdout)
	if err != nil {
		return noopShutdown, err
	}
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info().
		Str("exporter", cfg.Exporter).
		Str("endpoint", cfg.Endpoint).
		Float64("sampler_ratio", cfg.SamplerRatio).
		Msg("OpenTelemetry tracing initialized")
	return tp.Shutdown, nil
}

// NewProvider builds a tracer provider without installing it. The stdout
// exporter writes to w.
func NewProvider(ctx context.Context, cfg *config.TracingConfig, environment string, w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := newExporter(ctx, cfg, w)
	if err != nil {
		return nil, err
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "reelmatch"
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", environment),
	)

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SamplerRatio))),
		sdktrace.WithResource(res),
	), nil
}

func newExporter(ctx context.Context, cfg *config.TracingConfig, w io.Writer) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("create stdout exporter: %w", err)
		}
		return exp, nil
	case "otlp":
		exp, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.Endpoint))
		if err != nil {
			return nil, fmt.Errorf("create OTLP exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", cfg.Exporter)
	}
}
