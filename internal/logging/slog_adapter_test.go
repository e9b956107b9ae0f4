// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestSlogHandler_Levels(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, `"level":"debug"`},
		{slog.LevelInfo, `"level":"info"`},
		{slog.LevelWarn, `"level":"warn"`},
		{slog.LevelError, `"level":"error"`},
	}
	Init(Config{Level: "trace", Output: io.Discard})
	t.Cleanup(func() { Init(DefaultConfig()) })

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))
			logger.Log(context.Background(), tt.level, "service event")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %s in output: %s", tt.want, buf.String())
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(zerolog.WarnLevel))
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true for a warn-level logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false for a warn-level logger")
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf))).
		With("supervisor", "reelmatch").
		WithGroup("event")

	logger.Info("service restarted",
		"service", "train-service",
		"attempt", 2,
		"backoff", 15*time.Second,
		"failing", true,
		slog.Group("cause", "kind", "panic"),
	)

	out := buf.String()
	for _, want := range []string{
		`"supervisor":"reelmatch"`,
		`"event.service":"train-service"`,
		`"event.attempt":2`,
		`"event.failing":true`,
		`"event.cause.kind":"panic"`,
		`"event.backoff"`,
		`"message":"service restarted"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output: %s", want, out)
		}
	}
}

func TestZerologLevel(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want zerolog.Level
	}{
		{slog.LevelDebug - 4, zerolog.TraceLevel},
		{slog.LevelDebug, zerolog.DebugLevel},
		{slog.LevelInfo, zerolog.InfoLevel},
		{slog.LevelWarn, zerolog.WarnLevel},
		{slog.LevelError, zerolog.ErrorLevel},
		{slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		if got := zerologLevel(tt.in); got != tt.want {
			t.Errorf("zerologLevel(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
