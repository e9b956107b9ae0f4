// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testState struct {
	Weights []float64
	Labels  map[string]int
}

func newBackends(t *testing.T) map[string]Backend {
	t.Helper()
	fb, err := NewFileBackend(filepath.Join(t.TempDir(), "models"))
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}
	bb, err := OpenBadgerBackend("")
	if err != nil {
		t.Fatalf("OpenBadgerBackend() error = %v", err)
	}
	t.Cleanup(func() { _ = bb.Close() })
	return map[string]Backend{
		"file":    fb,
		"badger":  bb,
		"breaker": NewBreakerBackend(fb, BreakerConfig{}),
	}
}

func TestBackendCRUD(t *testing.T) {
	for name, b := range newBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := b.Put(ctx, "a/b/one.bin", []byte("one")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if err := b.Put(ctx, "a/two.bin", []byte("two")); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			got, err := b.Get(ctx, "a/b/one.bin")
			if err != nil || string(got) != "one" {
				t.Fatalf("Get() = %q, %v", got, err)
			}
			keys, err := b.List(ctx, "a/")
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(keys) != 2 || keys[0] != "a/b/one.bin" || keys[1] != "a/two.bin" {
				t.Errorf("List() = %v", keys)
			}
			if err := b.Delete(ctx, "a/two.bin"); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := b.Get(ctx, "a/two.bin"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get() after delete error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestFileBackendRejectsEscapingKeys(t *testing.T) {
	fb, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"../evil", "", "/abs/path"} {
		if err := fb.Put(context.Background(), key, []byte("x")); err == nil {
			t.Errorf("Put(%q) should fail", key)
		}
	}
}

func TestEncodeDecode(t *testing.T) {
	in := &testState{Weights: []float64{0.5, 1.5}, Labels: map[string]int{"drama": 3}}
	data, checksum, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(checksum) != 64 {
		t.Errorf("checksum length = %d, want 64", len(checksum))
	}
	var out testState
	if err := Decode(data, &out); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if out.Weights[1] != 1.5 || out.Labels["drama"] != 3 {
		t.Errorf("Decode() = %+v", out)
	}
	if err := Decode([]byte("garbage"), &out); err == nil {
		t.Error("Decode() of garbage should fail")
	}
}

func TestStoreSaveLoadRun(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fb, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	s := NewStore(fb, "/models/")
	jobID := "202610181200-abc"

	infos, err := s.SaveArtifacts(ctx, "shows", jobID, map[string]any{
		ArtifactVectorizer: &testState{Weights: []float64{1}},
		ArtifactIndex:      &testState{Weights: []float64{2}},
	})
	if err != nil {
		t.Fatalf("SaveArtifacts() error = %v", err)
	}
	wantKey := "models/netflix-shows/" + jobID + "/model/vectorizer.gob.gz"
	if infos[ArtifactVectorizer].Key != wantKey {
		t.Errorf("key = %s, want %s", infos[ArtifactVectorizer].Key, wantKey)
	}
	if !strings.HasPrefix(infos[ArtifactIndex].URI, "file://") {
		t.Errorf("URI = %s, want file:// prefix", infos[ArtifactIndex].URI)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(wantKey))); err != nil {
		t.Errorf("artifact file missing: %v", err)
	}

	var got testState
	if err := s.LoadArtifact(ctx, "shows", jobID, ArtifactIndex, &got); err != nil {
		t.Fatalf("LoadArtifact() error = %v", err)
	}
	if got.Weights[0] != 2 {
		t.Errorf("Weights = %v, want [2]", got.Weights)
	}
	if err := s.LoadArtifact(ctx, "shows", jobID, ArtifactScaler, &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing artifact error = %v, want ErrNotFound", err)
	}

	m := &Manifest{
		JobID:       jobID,
		ContentType: "shows",
		CreatedAt:   time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Parameters:  map[string]string{"k": "10", "metric": "cosine"},
		Rows:        42,
		Artifacts:   infos,
	}
	if _, err := s.SaveManifest(ctx, m); err != nil {
		t.Fatalf("SaveManifest() error = %v", err)
	}
	loaded, err := s.LoadManifest(ctx, "shows", jobID)
	if err != nil {
		t.Fatalf("LoadManifest() error = %v", err)
	}
	if loaded.Rows != 42 || loaded.Parameters["metric"] != "cosine" || !loaded.CreatedAt.Equal(m.CreatedAt) {
		t.Errorf("LoadManifest() = %+v", loaded)
	}
}

func TestStoreListJobsNewestFirst(t *testing.T) {
	ctx := context.Background()
	bb, err := OpenBadgerBackend("")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = bb.Close() }()
	s := NewStore(bb, "models")

	for _, job := range []string{"202601010000-a", "202612310000-c", "202606150000-b"} {
		if _, err := s.SaveManifest(ctx, &Manifest{JobID: job, ContentType: "movies"}); err != nil {
			t.Fatal(err)
		}
	}
	// an artifact without manifest is not a completed run
	if _, err := s.SaveArtifacts(ctx, "movies", "209901010000-z", map[string]any{"x": &testState{}}); err != nil {
		t.Fatal(err)
	}

	jobs, err := s.ListJobs(ctx, "movies")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"202612310000-c", "202606150000-b", "202601010000-a"}
	if len(jobs) != len(want) {
		t.Fatalf("ListJobs() = %v, want %v", jobs, want)
	}
	for i := range want {
		if jobs[i] != want[i] {
			t.Errorf("jobs[%d] = %s, want %s", i, jobs[i], want[i])
		}
	}

	if err := s.DeleteRun(ctx, "movies", "202601010000-a"); err != nil {
		t.Fatal(err)
	}
	jobs, _ = s.ListJobs(ctx, "movies")
	if len(jobs) != 2 {
		t.Errorf("after DeleteRun ListJobs() = %v", jobs)
	}
}

type failingBackend struct {
	FileBackend
	calls int
}

func (f *failingBackend) Get(context.Context, string) ([]byte, error) {
	f.calls++
	return nil, errors.New("connection reset")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &failingBackend{}
	b := NewBreakerBackend(inner, BreakerConfig{FailureThreshold: 2, Timeout: time.Minute})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := b.Get(ctx, "k"); err == nil {
			t.Fatal("expected error")
		}
	}
	if b.State() != "open" {
		t.Fatalf("State() = %s, want open", b.State())
	}
	if _, err := b.Get(ctx, "k"); err == nil {
		t.Fatal("expected breaker error")
	}
	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (breaker should short-circuit)", inner.calls)
	}
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	fb, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	b := NewBreakerBackend(fb, BreakerConfig{FailureThreshold: 1})
	for i := 0; i < 3; i++ {
		if _, err := b.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get() error = %v, want ErrNotFound", err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("State() = %s, want closed", b.State())
	}
}

func TestParseGCSURI(t *testing.T) {
	tests := []struct {
		uri       string
		bucket    string
		key       string
		wantError bool
	}{
		{"gs://bkt/data/netflix.csv", "bkt", "data/netflix.csv", false},
		{"gs://bkt/", "", "", true},
		{"s3://bkt/x", "", "", true},
		{"gs://bkt", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			b, k, err := ParseGCSURI(tt.uri)
			if (err != nil) != tt.wantError {
				t.Fatalf("error = %v, wantError %v", err, tt.wantError)
			}
			if b != tt.bucket || k != tt.key {
				t.Errorf("got (%s, %s), want (%s, %s)", b, k, tt.bucket, tt.key)
			}
		})
	}
}
