// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/reelmatch/internal/recommend/features"
)

func disjointMovies() []CatalogItem {
	return []CatalogItem{
		{ID: "a", Title: "Vault", ShowType: "movie", Genres: "['Crime']", Cast: "['Ana Reyes']", Overview: "bank robbers plan a heist downtown"},
		{ID: "b", Title: "Ice Floe", ShowType: "movie", Genres: "['Documentary']", Cast: "['Ben Okafor']", Overview: "penguins migrate over frozen antarctic water"},
		{ID: "c", Title: "Harbor Job", ShowType: "movie", Genres: "['Comedy']", Cast: "['Cleo Marsh']", Overview: "bank robbers plan a heist offshore"},
	}
}

func TestBuildModelDisjointGenres(t *testing.T) {
	res, err := BuildModel(context.Background(), Movies, "job", time.Now(), disjointMovies(), Params{NNeighbors: 2, Metric: "cosine"}, 0)
	if err != nil {
		t.Fatalf("BuildModel: %v", err)
	}
	if res.Evaluation.MAPAtK != 0 {
		t.Errorf("MAP@K = %v, want 0 for disjoint genres", res.Evaluation.MAPAtK)
	}
	if res.Evaluation.MAPRows != 3 {
		t.Errorf("MAP rows = %d, want 3 (movies count zero-relevance rows)", res.Evaluation.MAPRows)
	}

	tests := []struct {
		query, want string
	}{
		{"Vault", "Harbor Job"},
		{"Harbor Job", "Vault"},
	}
	items := disjointMovies()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var query CatalogItem
			for _, it := range items {
				if it.Title == tt.query {
					query = it
				}
			}
			recs, err := res.Model.RecommendItem(query)
			if err != nil {
				t.Fatalf("RecommendItem: %v", err)
			}
			if len(recs) != 1 {
				t.Fatalf("got %d recommendations, want 1", len(recs))
			}
			if recs[0].Title != tt.want {
				t.Errorf("nearest = %q, want %q", recs[0].Title, tt.want)
			}
		})
	}
}

func TestBuildModelIdenticalItems(t *testing.T) {
	twin := func(id, title string) CatalogItem {
		return CatalogItem{ID: id, Title: title, ShowType: "movie", Genres: "['Drama']", Cast: "['Iris Vale']", Directors: "['Otto Lind']", Overview: "two sisters run a lighthouse"}
	}
	items := []CatalogItem{twin("1", "Beacon"), twin("2", "Beacon Remastered")}

	for _, k := range []int{1, 2, 5} {
		res, err := BuildModel(context.Background(), Movies, "job", time.Now(), items, Params{NNeighbors: k, Metric: "cosine"}, 0)
		if err != nil {
			t.Fatalf("k=%d BuildModel: %v", k, err)
		}
		if res.Evaluation.Coverage != 1 {
			t.Errorf("k=%d coverage = %v, want 1", k, res.Evaluation.Coverage)
		}

		ix := res.Model.Index
		nb, err := ix.KNeighbors(ix.Row(0), 2)
		if err != nil {
			t.Fatalf("KNeighbors: %v", err)
		}
		for _, n := range nb {
			if math.Abs(n.Distance) > 1e-12 {
				t.Errorf("k=%d distance to row %d = %v, want 0", k, n.Index, n.Distance)
			}
		}
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	h := newHarness(t, staticCatalog(fixtureCatalog()))
	ctx := context.Background()

	first, err := h.trainer.Train(ctx, Shows, nil)
	if err != nil {
		t.Fatalf("first Train: %v", err)
	}
	second, err := h.trainer.Train(ctx, Shows, nil)
	if err != nil {
		t.Fatalf("second Train: %v", err)
	}
	if first.JobID == second.JobID {
		t.Fatal("runs share a job id")
	}
	if first.MAPAtK != second.MAPAtK || first.Coverage != second.Coverage || first.ILS != second.ILS {
		t.Errorf("metrics differ: %+v vs %+v", first, second)
	}

	a, err := h.rec.LoadModel(ctx, Shows, first.JobID)
	if err != nil {
		t.Fatalf("LoadModel(%s): %v", first.JobID, err)
	}
	b, err := h.rec.LoadModel(ctx, Shows, second.JobID)
	if err != nil {
		t.Fatalf("LoadModel(%s): %v", second.JobID, err)
	}
	if !reflect.DeepEqual(a.Vectorizer.Terms, b.Vectorizer.Terms) {
		t.Errorf("vocabularies differ:\n%v\n%v", a.Vectorizer.Terms, b.Vectorizer.Terms)
	}
	if a.Index.Len() != b.Index.Len() || a.Index.Dim() != b.Index.Dim() {
		t.Errorf("matrix shape %dx%d vs %dx%d", a.Index.Len(), a.Index.Dim(), b.Index.Len(), b.Index.Dim())
	}

	for _, it := range fixtureCatalog() {
		if it.ShowType != "series" {
			continue
		}
		ra, errA := a.RecommendItem(it)
		rb, errB := b.RecommendItem(it)
		if (errA == nil) != (errB == nil) {
			t.Errorf("%q: errors differ: %v vs %v", it.Title, errA, errB)
			continue
		}
		if !reflect.DeepEqual(ra, rb) {
			t.Errorf("%q: rankings differ:\n%+v\n%+v", it.Title, ra, rb)
		}
	}
}

func TestServeFeaturizationMatchesTraining(t *testing.T) {
	h := newHarness(t, staticCatalog(fixtureCatalog()))
	ctx := context.Background()

	for _, ct := range []ContentType{Movies, Shows} {
		t.Run(string(ct), func(t *testing.T) {
			res, err := h.trainer.Train(ctx, ct, nil)
			if err != nil {
				t.Fatalf("Train: %v", err)
			}
			m, err := h.rec.LoadModel(ctx, ct, res.JobID)
			if err != nil {
				t.Fatalf("LoadModel: %v", err)
			}

			byTitle := make(map[string]CatalogItem)
			for _, it := range fixtureCatalog() {
				byTitle[it.Title] = it
			}
			for i, md := range m.Metadata {
				trained := byTitle[md.Title]

				// Serve-time items arrive as JSON request bodies.
				body, err := json.Marshal(trained)
				if err != nil {
					t.Fatal(err)
				}
				var served CatalogItem
				if err := json.Unmarshal(body, &served); err != nil {
					t.Fatal(err)
				}

				if got, want := features.BuildTextFeatures(served), features.BuildTextFeatures(trained); got != want {
					t.Errorf("%q: serve-time text %q, train-time %q", md.Title, got, want)
				}
				q, err := m.Featurize(served)
				if err != nil {
					t.Fatalf("%q: Featurize: %v", md.Title, err)
				}
				if row := m.Index.Row(i); q.Dim != row.Dim || !reflect.DeepEqual(q.Dense(), row.Dense()) {
					t.Errorf("%q: serve-time vector differs from training row %d", md.Title, i)
				}
			}
		})
	}
}
