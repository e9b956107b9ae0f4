// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

//go:build integration

package storage_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tomtom215/reelmatch/internal/recommend/storage"
	"github.com/tomtom215/reelmatch/internal/testinfra"
)

type gcsState struct {
	Weights []float64
}

func TestGCSBackendAgainstEmulator(t *testing.T) {
	gcs := testinfra.StartFakeGCS(t, "reelmatch-artifacts")
	ctx := context.Background()

	backend, err := storage.NewGCSBackend(ctx, storage.GCSConfig{
		Bucket:       "reelmatch-artifacts",
		EmulatorHost: gcs.URL,
	})
	if err != nil {
		t.Fatalf("NewGCSBackend: %v", err)
	}
	b := storage.NewBreakerBackend(backend, storage.BreakerConfig{})
	defer b.Close()

	t.Run("crud", func(t *testing.T) {
		if err := b.Put(ctx, "a/one.bin", []byte("one")); err != nil {
			t.Fatalf("Put: %v", err)
		}
		got, err := b.Get(ctx, "a/one.bin")
		if err != nil || string(got) != "one" {
			t.Fatalf("Get = %q, %v", got, err)
		}
		keys, err := b.List(ctx, "a/")
		if err != nil || len(keys) != 1 || keys[0] != "a/one.bin" {
			t.Fatalf("List = %v, %v", keys, err)
		}
		if err := b.Delete(ctx, "a/one.bin"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := b.Get(ctx, "a/one.bin"); !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Get after delete = %v, want ErrNotFound", err)
		}
		if b.State() != "closed" {
			t.Errorf("breaker state = %s after not-found reads", b.State())
		}
	})

	t.Run("store round trip", func(t *testing.T) {
		s := storage.NewStore(b, "models")
		jobID := "202610181200-gcs"

		infos, err := s.SaveArtifacts(ctx, "movies", jobID, map[string]any{
			storage.ArtifactIndex: &gcsState{Weights: []float64{0.5, 1.5}},
		})
		if err != nil {
			t.Fatalf("SaveArtifacts: %v", err)
		}
		if uri := infos[storage.ArtifactIndex].URI; !strings.HasPrefix(uri, "gs://reelmatch-artifacts/models/") {
			t.Errorf("URI = %s", uri)
		}

		var got gcsState
		if err := s.LoadArtifact(ctx, "movies", jobID, storage.ArtifactIndex, &got); err != nil {
			t.Fatalf("LoadArtifact: %v", err)
		}
		if len(got.Weights) != 2 || got.Weights[1] != 1.5 {
			t.Errorf("Weights = %v", got.Weights)
		}

		if _, err := s.SaveManifest(ctx, &storage.Manifest{JobID: jobID, ContentType: "movies", Artifacts: infos}); err != nil {
			t.Fatalf("SaveManifest: %v", err)
		}
		jobs, err := s.ListJobs(ctx, "movies")
		if err != nil || len(jobs) != 1 || jobs[0] != jobID {
			t.Errorf("ListJobs = %v, %v", jobs, err)
		}
	})
}
