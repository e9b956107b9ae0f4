// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/reelmatch/internal/recommend/index"
)

// Config contains the trainer and recommender settings.
type Config struct {
	// Defaults are applied to parameters a training request leaves unset.
	Defaults Params `json:"defaults"`

	// ModelName is recorded in the run registry.
	ModelName string `json:"model_name"`

	// MaxBatch caps the number of query items per request (0 = unlimited).
	MaxBatch int `json:"max_batch"`

	// EvalWorkers bounds evaluation parallelism (0 = unbounded).
	EvalWorkers int `json:"eval_workers"`

	// TrainTimeout bounds one training run.
	TrainTimeout time.Duration `json:"train_timeout"`

	// LoadTimeout bounds a shared model load (0 = 2m).
	LoadTimeout time.Duration `json:"load_timeout"`
}

const defaultLoadTimeout = 2 * time.Minute

func (c *Config) loadTimeout() time.Duration {
	if c.LoadTimeout > 0 {
		return c.LoadTimeout
	}
	return defaultLoadTimeout
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Defaults:     Params{NNeighbors: 10, Metric: string(index.Cosine)},
		ModelName:    "KNearestNeighbors",
		MaxBatch:     100,
		TrainTimeout: 30 * time.Minute,
		LoadTimeout:  defaultLoadTimeout,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, err := c.ResolveParams(nil); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	if c.MaxBatch < 0 {
		return fmt.Errorf("max_batch must be non-negative, got %d", c.MaxBatch)
	}
	if c.EvalWorkers < 0 {
		return fmt.Errorf("eval_workers must be non-negative, got %d", c.EvalWorkers)
	}
	if c.TrainTimeout <= 0 {
		return fmt.Errorf("train_timeout must be positive, got %s", c.TrainTimeout)
	}
	return nil
}

// ResolveParams fills unset fields of p from the defaults and validates
// the result.
func (c *Config) ResolveParams(p *Params) (Params, error) {
	out := c.Defaults
	if p != nil {
		if p.NNeighbors != 0 {
			out.NNeighbors = p.NNeighbors
		}
		if p.Metric != "" {
			out.Metric = p.Metric
		}
	}
	if out.NNeighbors < 1 {
		return Params{}, &InputValidationError{Field: "n_neighbors", Message: fmt.Sprintf("must be at least 1, got %d", out.NNeighbors)}
	}
	m, err := index.ParseMetric(out.Metric)
	if err != nil {
		return Params{}, &InputValidationError{Field: "metric", Message: err.Error()}
	}
	out.Metric = string(m)
	return out, nil
}
