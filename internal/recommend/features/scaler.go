// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"errors"
	"fmt"
	"math"
)

// StandardScaler centers columns on their mean and scales them by their
// population standard deviation. Columns with zero variance get scale 1.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

// Fit computes per-column mean and scale.
func (s *StandardScaler) Fit(rows [][]float64) error {
	if len(rows) == 0 {
		return errors.New("fit scaler: no rows")
	}
	width := len(rows[0])
	mean := make([]float64, width)
	for i, r := range rows {
		if len(r) != width {
			return fmt.Errorf("fit scaler: row %d has %d columns, want %d", i, len(r), width)
		}
		for j, v := range r {
			mean[j] += v
		}
	}
	n := float64(len(rows))
	for j := range mean {
		mean[j] /= n
	}
	scale := make([]float64, width)
	for _, r := range rows {
		for j, v := range r {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / n)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	s.Mean, s.Scale = mean, scale
	return nil
}

// Transform scales one row with the fitted parameters.
func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("scale row: got %d columns, want %d", len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out, nil
}
