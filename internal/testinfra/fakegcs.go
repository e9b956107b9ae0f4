// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"google.golang.org/api/option"
)

const (
	// DefaultFakeGCSImage is the fake-gcs-server image.
	DefaultFakeGCSImage = "fsouza/fake-gcs-server:1.52"

	// DefaultFakeGCSPort is the emulator's HTTP port.
	DefaultFakeGCSPort = "4443"

	fakeGCSProject = "reelmatch-test"
)

// FakeGCSContainer is a running fake-gcs-server. URL is suitable for
// STORAGE_EMULATOR_HOST.
type FakeGCSContainer struct {
	testcontainers.Container
	URL string
}

// FakeGCSOption configures the emulator container.
type FakeGCSOption func(*fakeGCSConfig)

type fakeGCSConfig struct {
	image        string
	buckets      []string
	startTimeout time.Duration
}

// WithBuckets creates the named buckets once the emulator is up.
func WithBuckets(names ...string) FakeGCSOption {
	return func(c *fakeGCSConfig) { c.buckets = append(c.buckets, names...) }
}

// NewFakeGCSContainer starts an in-memory fake-gcs-server.
func NewFakeGCSContainer(ctx context.Context, opts ...FakeGCSOption) (*FakeGCSContainer, error) {
	cfg := &fakeGCSConfig{
		image:        DefaultFakeGCSImage,
		startTimeout: 60 * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	req := testcontainers.ContainerRequest{
		Image:        cfg.image,
		ExposedPorts: []string{DefaultFakeGCSPort + "/tcp"},
		Cmd:          []string{"-scheme", "http", "-port", DefaultFakeGCSPort, "-backend", "memory"},
		WaitingFor: wait.ForHTTP("/storage/v1/b").
			WithPort(DefaultFakeGCSPort + "/tcp").
			WithStartupTimeout(cfg.startTimeout),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create fake-gcs-server container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, DefaultFakeGCSPort)
	if err != nil {
		container.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get mapped port: %w", err)
	}

	c := &FakeGCSContainer{
		Container: container,
		URL:       fmt.Sprintf("http://%s:%s", host, port.Port()),
	}
	for _, b := range cfg.buckets {
		if err := c.CreateBucket(ctx, b); err != nil {
			container.Terminate(ctx) //nolint:errcheck
			return nil, err
		}
	}
	return c, nil
}

// CreateBucket creates a bucket in the emulator.
func (c *FakeGCSContainer) CreateBucket(ctx context.Context, name string) error {
	client, err := storage.NewClient(ctx,
		option.WithoutAuthentication(),
		option.WithEndpoint(c.URL+"/storage/v1/"),
	)
	if err != nil {
		return fmt.Errorf("create storage client: %w", err)
	}
	defer client.Close()

	if err := client.Bucket(name).Create(ctx, fakeGCSProject, nil); err != nil {
		return fmt.Errorf("create bucket %s: %w", name, err)
	}
	return nil
}
