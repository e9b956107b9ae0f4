// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotFound is returned when an object does not exist.
var ErrNotFound = errors.New("object not found")

// Backend is a flat key/value object store. Keys use "/" as separator
// regardless of platform.
type Backend interface {
	// Name identifies the backend in logs and metrics.
	Name() string
	Put(ctx context.Context, key string, data []byte) error
	// Get returns ErrNotFound (possibly wrapped) for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	// List returns the keys under prefix in lexicographic order.
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
	// URI renders a key as a location string for the run registry.
	URI(key string) string
	Close() error
}

// FileBackend stores objects as files under a base directory.
type FileBackend struct {
	baseDir string
}

// NewFileBackend creates the base directory if needed.
func NewFileBackend(baseDir string) (*FileBackend, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &FileBackend{baseDir: baseDir}, nil
}

// Name implements Backend.
func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(b.baseDir, clean), nil
}

// Put writes data atomically through a temp file and rename.
func (b *FileBackend) Put(_ context.Context, key string, data []byte) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return fmt.Errorf("create object directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()           //nolint:errcheck // write error already being returned
		_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("close object: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		return fmt.Errorf("rename object: %w", err)
	}
	return nil
}

// Get implements Backend.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	p, err := b.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p) //nolint:gosec // path is confined to baseDir
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// List implements Backend.
func (b *FileBackend) List(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(b.baseDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(b.baseDir, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete implements Backend. Deleting a missing key is not an error.
func (b *FileBackend) Delete(_ context.Context, key string) error {
	p, err := b.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// URI implements Backend.
func (b *FileBackend) URI(key string) string {
	return "file://" + filepath.ToSlash(filepath.Join(b.baseDir, filepath.FromSlash(key)))
}

// Close implements Backend.
func (b *FileBackend) Close() error { return nil }
