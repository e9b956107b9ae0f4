// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

//go:build integration

package testinfra

import (
	"context"
	"os/exec"
	"testing"
	"time"
)

// dockerAvailable reports whether "docker info" succeeds within 5s.
func dockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// StartFakeGCS starts a fake-gcs-server holding buckets and terminates it
// when t finishes. The test is skipped when there is no Docker daemon.
func StartFakeGCS(t *testing.T, buckets ...string) *FakeGCSContainer {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("docker not available")
	}

	ctx := context.Background()
	gcs, err := NewFakeGCSContainer(ctx, WithBuckets(buckets...))
	if err != nil {
		t.Fatalf("start fake-gcs-server: %v", err)
	}
	t.Cleanup(func() {
		if err := gcs.Terminate(ctx); err != nil {
			t.Logf("terminate fake-gcs-server: %v", err)
		}
	})
	return gcs
}
