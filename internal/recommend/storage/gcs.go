// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSConfig configures a GCSBackend.
type GCSConfig struct {
	Bucket string

	// EmulatorHost points the client at a fake-gcs-server, e.g.
	// "http://127.0.0.1:4443". Authentication is disabled in that mode.
	EmulatorHost string

	// CredentialsFile is an optional service-account JSON key. When empty
	// Application Default Credentials are used.
	CredentialsFile string
}

// GCSBackend stores objects in a Cloud Storage bucket.
type GCSBackend struct {
	client *storage.Client
	bucket string
}

// NewGCSBackend creates a storage client for cfg.
func NewGCSBackend(ctx context.Context, cfg GCSConfig) (*GCSBackend, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("gcs backend: bucket is required")
	}
	client, err := NewGCSClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &GCSBackend{client: client, bucket: cfg.Bucket}, nil
}

// NewGCSClient builds a Cloud Storage client honouring the emulator and
// credentials settings in cfg.
func NewGCSClient(ctx context.Context, cfg GCSConfig) (*storage.Client, error) {
	var opts []option.ClientOption
	if host := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/"); host != "" {
		// The client library reads the emulator host from the environment.
		if err := os.Setenv("STORAGE_EMULATOR_HOST", host); err != nil {
			return nil, fmt.Errorf("set emulator host: %w", err)
		}
		opts = append(opts, option.WithoutAuthentication(), option.WithEndpoint(host+"/storage/v1/"))
	} else {
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		if cfg.CredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		}
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return client, nil
}

// Name implements Backend.
func (b *GCSBackend) Name() string { return "gcs" }

// Put implements Backend.
func (b *GCSBackend) Put(ctx context.Context, key string, data []byte) error {
	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentTypeFor(key)
	if _, err := w.Write(data); err != nil {
		_ = w.Close() //nolint:errcheck // write error already being returned
		return fmt.Errorf("upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize upload %s: %w", key, err)
	}
	return nil
}

// Get implements Backend.
func (b *GCSBackend) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := b.client.Bucket(b.bucket).Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%s: %w", b.URI(key), ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer func() { _ = r.Close() }() //nolint:errcheck // error on close after read is not actionable

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return data, nil
}

// List implements Backend.
func (b *GCSBackend) List(ctx context.Context, prefix string) ([]string, error) {
	it := b.client.Bucket(b.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var keys []string
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}

// Delete implements Backend.
func (b *GCSBackend) Delete(ctx context.Context, key string) error {
	err := b.client.Bucket(b.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// URI implements Backend.
func (b *GCSBackend) URI(key string) string {
	return "gs://" + b.bucket + "/" + key
}

// Close implements Backend.
func (b *GCSBackend) Close() error { return b.client.Close() }

// ParseGCSURI splits "gs://bucket/path/to/object" into bucket and key.
func ParseGCSURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("not a gs:// uri: %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("gs uri needs bucket and object: %q", uri)
	}
	return bucket, key, nil
}

func contentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".gz"):
		return "application/gzip"
	default:
		return "application/octet-stream"
	}
}
