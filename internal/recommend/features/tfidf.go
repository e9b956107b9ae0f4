// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/tomtom215/reelmatch/internal/recommend/vector"
)

// tokenPattern matches runs of two or more word characters.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}\p{M}_]{2,}`)

// ErrEmptyVocabulary is returned by Fit when no document contains a
// non-stop-word token.
var ErrEmptyVocabulary = errors.New("empty vocabulary: documents contain only stop words or no tokens")

// Tokenize lowercases text and returns its tokens with stop words removed.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if !IsStopWord(tok) {
			out = append(out, tok)
		}
	}
	return out
}

// TFIDFVectorizer maps text to L2-normalized TF-IDF vectors.
//
// Term frequency is the raw count, IDF is smoothed as
// ln((1+n)/(1+df)) + 1, and column order is the lexicographic order of the
// vocabulary. Fields are exported for gob.
type TFIDFVectorizer struct {
	Terms      []string
	Vocabulary map[string]int
	IDF        []float64
}

// Fit learns the vocabulary and IDF weights from docs.
func (v *TFIDFVectorizer) Fit(docs []string) error {
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, tok := range Tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return ErrEmptyVocabulary
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.Terms = terms
	v.Vocabulary = make(map[string]int, len(terms))
	v.IDF = make([]float64, len(terms))
	for i, t := range terms {
		v.Vocabulary[t] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return nil
}

// FitTransform fits on docs and returns their vectors.
func (v *TFIDFVectorizer) FitTransform(docs []string) ([]vector.Sparse, error) {
	if err := v.Fit(docs); err != nil {
		return nil, err
	}
	out := make([]vector.Sparse, len(docs))
	for i, d := range docs {
		out[i] = v.Transform(d)
	}
	return out, nil
}

// Transform vectorizes text using the fitted vocabulary. Unknown tokens
// are ignored.
func (v *TFIDFVectorizer) Transform(text string) vector.Sparse {
	counts := make(map[int]float64)
	for _, tok := range Tokenize(text) {
		if idx, ok := v.Vocabulary[tok]; ok {
			counts[idx]++
		}
	}
	for idx, c := range counts {
		counts[idx] = c * v.IDF[idx]
	}
	return vector.FromMap(len(v.Terms), counts).Normalize()
}

// Size returns the vocabulary size.
func (v *TFIDFVectorizer) Size() int { return len(v.Terms) }
