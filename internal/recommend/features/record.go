// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package features turns catalog records into the feature representation
// used by the similarity index: a text feature string vectorized with
// TF-IDF and, for series, two standardized numeric columns.
//
// The same functions run at train time and at serve time, so a record
// featurized by the recommender lands in the same space as the rows the
// index was fitted on.
package features

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Show types as they appear in the catalog.
const (
	ShowTypeMovie  = "movie"
	ShowTypeSeries = "series"
)

// Record is one catalog row. List-like and numeric fields keep the raw
// value read from the source (string, number, nil) because the
// normalization rules depend on the raw type.
type Record struct {
	ID           string `json:"id,omitempty"`
	Title        string `json:"title"`
	ShowType     string `json:"showType,omitempty"`
	Overview     any    `json:"overview,omitempty"`
	Genres       any    `json:"genres,omitempty"`
	Cast         any    `json:"cast,omitempty"`
	Directors    any    `json:"directors,omitempty"`
	EpisodeCount any    `json:"episodeCount,omitempty"`
	SeasonCount  any    `json:"seasonCount,omitempty"`
}

// ErrInvalidNumeric is returned when a series count cannot be coerced.
var ErrInvalidNumeric = errors.New("invalid numeric feature")

// NormalizeListField flattens a list-like catalog field into a
// space-separated token string.
//
// Values such as "['Drama', 'Crime']" or "['genre: Drama']" become
// "Drama Crime" and "Drama". Any non-string value yields "".
func NormalizeListField(raw any) string {
	s, ok := raw.(string)
	if !ok {
		return ""
	}
	s = strings.NewReplacer("[", "", "]", "").Replace(s)
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if i := strings.LastIndex(p, ":"); i >= 0 {
			p = p[i+1:]
		}
		p = strings.TrimSpace(p)
		p = strings.Trim(p, `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// Text returns the field as a string, or "" when it is not one.
func Text(raw any) string {
	s, _ := raw.(string)
	return s
}

// BuildTextFeatures returns genres, cast, directors and overview joined by
// single spaces, in that order.
func BuildTextFeatures(r Record) string {
	return NormalizeListField(r.Genres) + " " +
		NormalizeListField(r.Cast) + " " +
		NormalizeListField(r.Directors) + " " +
		Text(r.Overview)
}

// GenreTokens returns the set of genre tokens used for relevance.
func GenreTokens(raw any) map[string]struct{} {
	fields := strings.Fields(NormalizeListField(raw))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// BuildNumericFeatures returns [episodeCount, seasonCount] for a series
// row. Missing or non-numeric values are an error, never zero.
func BuildNumericFeatures(r Record) ([]float64, error) {
	ep, err := ToFloat(r.EpisodeCount)
	if err != nil {
		return nil, fmt.Errorf("episodeCount: %w", err)
	}
	se, err := ToFloat(r.SeasonCount)
	if err != nil {
		return nil, fmt.Errorf("seasonCount: %w", err)
	}
	return []float64{ep, se}, nil
}

// ToFloat coerces a raw catalog value into a finite float64. Every Go
// integer width is accepted, as are the big numbers DuckDB returns for
// HUGEINT columns.
func ToFloat(raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return 0, fmt.Errorf("%w: missing", ErrInvalidNumeric)
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case *big.Int:
		if v == nil {
			return 0, fmt.Errorf("%w: missing", ErrInvalidNumeric)
		}
		f, _ = new(big.Float).SetInt(v).Float64()
	case *big.Float:
		if v == nil {
			return 0, fmt.Errorf("%w: missing", ErrInvalidNumeric)
		}
		f, _ = v.Float64()
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumeric, v.String())
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumeric, v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidNumeric, raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: not finite", ErrInvalidNumeric)
	}
	return f, nil
}
