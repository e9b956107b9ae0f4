// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/tomtom215/reelmatch/internal/recommend/storage")

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Artifact names inside a run directory.
const (
	ArtifactVectorizer = "vectorizer"
	ArtifactScaler     = "scaler"
	ArtifactIndex      = "knn_model"
	ArtifactMetadata   = "metadata"

	artifactExt  = ".gob.gz"
	manifestFile = "manifest.json"
)

// ArtifactInfo describes one written artifact.
type ArtifactInfo struct {
	Key       string `json:"key"`
	URI       string `json:"uri"`
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"size_bytes"`
}

// Manifest summarises a run directory.
type Manifest struct {
	JobID          string                  `json:"job_id"`
	ContentType    string                  `json:"content_type"`
	ModelName      string                  `json:"model_name"`
	CreatedAt      time.Time               `json:"created_at"`
	Parameters     map[string]string       `json:"parameters"`
	Rows           int                     `json:"rows"`
	VocabularySize int                     `json:"vocabulary_size"`
	Dimensions     int                     `json:"dimensions"`
	Metrics        map[string]float64      `json:"metrics,omitempty"`
	Artifacts      map[string]ArtifactInfo `json:"artifacts"`
}

// Store reads and writes run artifacts on a Backend.
type Store struct {
	backend Backend
	prefix  string

	// guards concurrent writes to the same run directory
	mu sync.Mutex
}

// NewStore returns a Store rooted at prefix.
func NewStore(backend Backend, prefix string) *Store {
	return &Store{backend: backend, prefix: strings.Trim(prefix, "/")}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend { return s.backend }

// ContentDir returns "{prefix}/netflix-{contentType}".
func (s *Store) ContentDir(contentType string) string {
	return path.Join(s.prefix, "netflix-"+contentType)
}

// RunDir returns the artifact directory of a job.
func (s *Store) RunDir(contentType, jobID string) string {
	return path.Join(s.ContentDir(contentType), jobID, "model")
}

// ArtifactKey returns the key of a named artifact in a run directory.
func (s *Store) ArtifactKey(contentType, jobID, name string) string {
	return path.Join(s.RunDir(contentType, jobID), name+artifactExt)
}

// ManifestKey returns the key of a run manifest.
func (s *Store) ManifestKey(contentType, jobID string) string {
	return path.Join(s.RunDir(contentType, jobID), manifestFile)
}

// URI renders a key for the run registry.
func (s *Store) URI(key string) string { return s.backend.URI(key) }

// SaveArtifacts encodes and writes every named value concurrently. Nothing
// is returned until all writes finish; on error the partial run directory
// is left for DeleteRun.
func (s *Store) SaveArtifacts(ctx context.Context, contentType, jobID string, values map[string]any) (_ map[string]ArtifactInfo, err error) {
	ctx, span := tracer.Start(ctx, "storage.SaveArtifacts", trace.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.String("job_id", jobID),
		attribute.Int("artifacts", len(values)),
	))
	defer func() { endSpan(span, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]ArtifactInfo, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			data, checksum, err := Encode(values[name])
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			key := s.ArtifactKey(contentType, jobID, name)
			if err := s.backend.Put(gctx, key, data); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			infos[i] = ArtifactInfo{Key: key, URI: s.backend.URI(key), Checksum: checksum, SizeBytes: int64(len(data))}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("save artifacts: %w", err)
	}

	out := make(map[string]ArtifactInfo, len(names))
	var total int64
	for i, name := range names {
		out[name] = infos[i]
		total += infos[i].SizeBytes
	}
	span.SetAttributes(attribute.Int64("bytes", total))
	return out, nil
}

// LoadArtifact reads and decodes one artifact into target.
func (s *Store) LoadArtifact(ctx context.Context, contentType, jobID, name string, target any) (err error) {
	ctx, span := tracer.Start(ctx, "storage.LoadArtifact", trace.WithAttributes(
		attribute.String("content_type", contentType),
		attribute.String("job_id", jobID),
		attribute.String("artifact", name),
	))
	defer func() { endSpan(span, err) }()

	data, err := s.backend.Get(ctx, s.ArtifactKey(contentType, jobID, name))
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	span.SetAttributes(attribute.Int("bytes", len(data)))
	if err := Decode(data, target); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return nil
}

// SaveManifest writes m as JSON and returns its key.
func (s *Store) SaveManifest(ctx context.Context, m *Manifest) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	key := s.ManifestKey(m.ContentType, m.JobID)
	if err := s.backend.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("save manifest: %w", err)
	}
	return key, nil
}

// LoadManifest reads the manifest of a job.
func (s *Store) LoadManifest(ctx context.Context, contentType, jobID string) (*Manifest, error) {
	data, err := s.backend.Get(ctx, s.ManifestKey(contentType, jobID))
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// ListJobs returns the job ids with a manifest for contentType, newest
// first. Job ids start with a UTC timestamp so lexicographic order is
// chronological.
func (s *Store) ListJobs(ctx context.Context, contentType string) ([]string, error) {
	dir := s.ContentDir(contentType) + "/"
	keys, err := s.backend.List(ctx, dir)
	if err != nil {
		return nil, err
	}
	var jobs []string
	for _, k := range keys {
		rest := strings.TrimPrefix(k, dir)
		job, tail, ok := strings.Cut(rest, "/")
		if ok && tail == "model/"+manifestFile {
			jobs = append(jobs, job)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(jobs)))
	return jobs, nil
}

// DeleteRun removes every object of a job.
func (s *Store) DeleteRun(ctx context.Context, contentType, jobID string) error {
	keys, err := s.backend.List(ctx, s.RunDir(contentType, jobID)+"/")
	if err != nil {
		return err
	}
	for _, k := range keys {
		if err := s.backend.Delete(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the backend.
func (s *Store) Close() error { return s.backend.Close() }
