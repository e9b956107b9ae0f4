// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package storage

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/reelmatch/internal/metrics"
)

// BreakerConfig configures NewBreakerBackend.
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker. Default: 5
	FailureThreshold uint32

	// Timeout is how long the breaker stays open before probing.
	// Default: 30s
	Timeout time.Duration

	// OnStateChange is called on every transition.
	OnStateChange func(name string, from, to gobreaker.State)
}

// BreakerBackend wraps a Backend with a circuit breaker. ErrNotFound does
// not count as a failure.
type BreakerBackend struct {
	Backend
	cb *gobreaker.CircuitBreaker[[]byte]
}

// NewBreakerBackend wraps inner.
func NewBreakerBackend(inner Backend, cfg BreakerConfig) *BreakerBackend {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	settings := gobreaker.Settings{
		Name:        "artifacts-" + inner.Name(),
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: cfg.OnStateChange,
	}
	return &BreakerBackend{Backend: inner, cb: gobreaker.NewCircuitBreaker[[]byte](settings)}
}

// State reports the breaker state ("closed", "open", "half-open").
func (b *BreakerBackend) State() string { return b.cb.State().String() }

// Put implements Backend.
func (b *BreakerBackend) Put(ctx context.Context, key string, data []byte) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.Backend.Put(ctx, key, data)
	})
	b.record("put", err)
	return err
}

// Get implements Backend.
func (b *BreakerBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.cb.Execute(func() ([]byte, error) {
		return b.Backend.Get(ctx, key)
	})
	b.record("get", err)
	return data, err
}

// List implements Backend.
func (b *BreakerBackend) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	_, err := b.cb.Execute(func() ([]byte, error) {
		var err error
		keys, err = b.Backend.List(ctx, prefix)
		return nil, err
	})
	b.record("list", err)
	return keys, err
}

// Delete implements Backend.
func (b *BreakerBackend) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() ([]byte, error) {
		return nil, b.Backend.Delete(ctx, key)
	})
	b.record("delete", err)
	return err
}

// record counts the call; a missing object is a normal outcome.
func (b *BreakerBackend) record(op string, err error) {
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	metrics.RecordArtifactOperation(b.Backend.Name(), op, err)
}
