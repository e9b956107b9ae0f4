// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package services

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/reelmatch/internal/logging"
)

func TestCleanupServiceSweepsUntilCanceled(t *testing.T) {
	var sweeps atomic.Int32
	svc := NewCleanupService("auth-failures", 5*time.Millisecond, func() int {
		sweeps.Add(1)
		return 1
	}, logging.NewTestLogger(io.Discard))

	if svc.String() != "auth-failures" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for sweeps.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if sweeps.Load() < 3 {
		t.Errorf("sweeps = %d, want at least 3", sweeps.Load())
	}
}

func TestCleanupServiceDefaultInterval(t *testing.T) {
	svc := NewCleanupService("x", 0, func() int { return 0 }, logging.NewTestLogger(io.Discard))
	if svc.interval != time.Minute {
		t.Errorf("interval = %s, want 1m", svc.interval)
	}
}
