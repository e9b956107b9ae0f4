// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

const moviesCSV = `id,title,showType,overview,genres,cast,directors,episodeCount,seasonCount
m1,Heat,movie,A detective hunts a thief across Los Angeles,"['Crime', 'Thriller']","['Al Pacino']","['Michael Mann']",,
m2,Collateral,movie,A cab driver is taken hostage in Los Angeles,"['Crime', 'Thriller']","['Tom Cruise']","['Michael Mann']",,
m3,Toy Story,movie,Toys come to life,"['Animation', 'Comedy']","['Tom Hanks']","['John Lasseter']",,
m4,Finding Nemo,movie,A fish searches the ocean for his son,"['Animation', 'Family']","['Albert Brooks']","['Andrew Stanton']",,
`

func testConfig(t *testing.T, backend string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	dataset := filepath.Join(dir, "titles.csv")
	if err := os.WriteFile(dataset, []byte(moviesCSV), 0o600); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	artifactDir := filepath.Join(dir, "artifacts")
	if backend == "badger" {
		artifactDir = ""
	}
	return &config.Config{
		Database: config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB", RegistrySchema: "mlops"},
		Dataset:  config.DatasetConfig{Source: "csv", Path: dataset},
		Artifacts: config.ArtifactsConfig{
			Backend:         backend,
			Dir:             artifactDir,
			Prefix:          "models",
			BreakerFailures: 5,
			BreakerTimeout:  time.Second,
		},
		Recommend: config.RecommendConfig{
			NNeighbors:   2,
			Metric:       "cosine",
			ContentTypes: []string{"movies", "shows"},
			TrainTimeout: time.Minute,
			MaxBatch:     10,
		},
	}
}

func TestNewTrainAndRecommend(t *testing.T) {
	for _, backend := range []string{"file", "badger"} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			a, err := New(ctx, testConfig(t, backend), logging.NewTestLogger(io.Discard))
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer func() {
				if err := a.Close(); err != nil {
					t.Errorf("Close: %v", err)
				}
			}()

			if len(a.ContentTypes) != 2 || a.ContentTypes[0] != recommend.Movies {
				t.Errorf("ContentTypes = %v", a.ContentTypes)
			}

			res, err := a.Trainer.Train(ctx, recommend.Movies, nil)
			if err != nil {
				t.Fatalf("Train: %v", err)
			}
			if res.Rows != 4 || res.Parameters.NNeighbors != 2 {
				t.Errorf("TrainResult = %+v", res)
			}

			out, err := a.Recommender.Recommend(ctx, recommend.Movies, []recommend.CatalogItem{
				{Title: "Heat", Genres: "['Crime']", Directors: "['Michael Mann']", Overview: "Los Angeles thief"},
			})
			if err != nil {
				t.Fatalf("Recommend: %v", err)
			}
			if out.JobID != res.JobID || len(out.Recommendations) != 1 {
				t.Fatalf("Recommend = %+v", out)
			}
		})
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"unknown backend", func(c *config.Config) { c.Artifacts.Backend = "s3" }},
		{"unknown content type", func(c *config.Config) { c.Recommend.ContentTypes = []string{"podcasts"} }},
		{"bad metric", func(c *config.Config) { c.Recommend.Metric = "hamming" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, "file")
			tt.mutate(cfg)
			a, err := New(context.Background(), cfg, logging.NewTestLogger(io.Discard))
			if err == nil {
				_ = a.Close()
				t.Fatal("New should fail")
			}
		})
	}
}
