// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package features

import (
	"encoding/json"
	"errors"
	"math"
	"math/big"
	"testing"
)

func TestNormalizeListField(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"python list", "['Drama', 'Crime']", "Drama Crime"},
		{"double quotes", `["Sci-Fi", "Thriller"]`, "Sci-Fi Thriller"},
		{"key value", "['genre: Drama', 'genre: Crime']", "Drama Crime"},
		{"plain", "Comedy", "Comedy"},
		{"empty list", "[]", ""},
		{"empty string", "", ""},
		{"nil", nil, ""},
		{"number", 42.0, ""},
		{"int", 7, ""},
		{"trailing comma", "['A', ]", "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeListField(tt.in); got != tt.want {
				t.Errorf("NormalizeListField(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeListFieldIdempotent(t *testing.T) {
	for _, in := range []string{"['Drama', 'Crime']", "['k: x']", "Drama Crime", "A, B"} {
		once := NormalizeListField(in)
		if twice := NormalizeListField(once); twice != once {
			t.Errorf("normalize(normalize(%q)) = %q, want %q", in, twice, once)
		}
	}
}

func TestBuildTextFeatures(t *testing.T) {
	r := Record{
		Title:     "X",
		Genres:    "['Drama']",
		Cast:      "['Ann Lee', 'Bo']",
		Directors: nil,
		Overview:  "A story.",
	}
	want := "Drama Ann Lee Bo  A story."
	if got := BuildTextFeatures(r); got != want {
		t.Errorf("BuildTextFeatures = %q, want %q", got, want)
	}

	r.Overview = nil
	if got := BuildTextFeatures(r); got != "Drama Ann Lee Bo  " {
		t.Errorf("BuildTextFeatures with nil overview = %q", got)
	}
}

func TestGenreTokens(t *testing.T) {
	got := GenreTokens("['Drama', 'Crime']")
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	for _, g := range []string{"Drama", "Crime"} {
		if _, ok := got[g]; !ok {
			t.Errorf("missing %q", g)
		}
	}
	if len(GenreTokens(nil)) != 0 {
		t.Error("nil genres should produce no tokens")
	}
}

func TestBuildNumericFeatures(t *testing.T) {
	tests := []struct {
		name    string
		ep, se  any
		want    []float64
		wantErr bool
	}{
		{"floats", 10.0, 2.0, []float64{10, 2}, false},
		{"ints", 8, 1, []float64{8, 1}, false},
		{"strings", " 12 ", "3", []float64{12, 3}, false},
		{"json number", json.Number("5"), json.Number("1"), []float64{5, 1}, false},
		{"smallint and tinyint", int16(26), int8(3), []float64{26, 3}, false},
		{"unsigned", uint16(201), uint32(9), []float64{201, 9}, false},
		{"utinyint and uint", uint8(7), uint(1), []float64{7, 1}, false},
		{"hugeint", big.NewInt(62), big.NewInt(5), []float64{62, 5}, false},
		{"big float", big.NewFloat(12.5), big.NewFloat(2), []float64{12.5, 2}, false},
		{"nil hugeint", (*big.Int)(nil), 1.0, nil, true},
		{"unsupported", struct{}{}, 1.0, nil, true},
		{"non numeric", "many", 2.0, nil, true},
		{"missing", nil, 2.0, nil, true},
		{"nan", math.NaN(), 1.0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildNumericFeatures(Record{EpisodeCount: tt.ep, SeasonCount: tt.se})
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidNumeric) {
					t.Errorf("err = %v, want ErrInvalidNumeric", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got[0] != tt.want[0] || got[1] != tt.want[1] {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("The Crown: a Royal DRAMA, of 2 x 24 episodes")
	want := []string{"crown", "royal", "drama", "24", "episodes"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTFIDFMatchesSmoothIDF(t *testing.T) {
	docs := []string{"space opera", "space western", "western"}
	var v TFIDFVectorizer
	vecs, err := v.FitTransform(docs)
	if err != nil {
		t.Fatalf("FitTransform: %v", err)
	}

	wantTerms := []string{"opera", "space", "western"}
	for i, term := range wantTerms {
		if v.Terms[i] != term {
			t.Errorf("Terms[%d] = %q, want %q", i, v.Terms[i], term)
		}
	}

	// idf(space) = ln(4/3)+1, idf(opera) = ln(4/2)+1
	idfOpera := math.Log(4.0/2.0) + 1
	idfSpace := math.Log(4.0/3.0) + 1
	if math.Abs(v.IDF[0]-idfOpera) > 1e-12 || math.Abs(v.IDF[1]-idfSpace) > 1e-12 {
		t.Errorf("IDF = %v", v.IDF)
	}

	d0 := vecs[0].Dense()
	norm := math.Hypot(idfOpera, idfSpace)
	if math.Abs(d0[0]-idfOpera/norm) > 1e-12 || math.Abs(d0[1]-idfSpace/norm) > 1e-12 || d0[2] != 0 {
		t.Errorf("doc0 = %v", d0)
	}
	if math.Abs(vecs[2].Norm()-1) > 1e-12 {
		t.Errorf("doc2 norm = %v, want 1", vecs[2].Norm())
	}
}

func TestTFIDFTransformIgnoresUnknownTerms(t *testing.T) {
	var v TFIDFVectorizer
	if err := v.Fit([]string{"heist thriller", "romantic comedy"}); err != nil {
		t.Fatal(err)
	}
	if got := v.Transform("zombie musical"); got.NNZ() != 0 {
		t.Errorf("NNZ = %d, want 0", got.NNZ())
	}
	a := v.Transform("heist thriller")
	b := v.Transform("heist thriller")
	for i := range a.Values {
		if a.Values[i] != b.Values[i] {
			t.Fatal("Transform is not deterministic")
		}
	}
}

func TestTFIDFEmptyVocabulary(t *testing.T) {
	var v TFIDFVectorizer
	if err := v.Fit([]string{"the a of", ""}); !errors.Is(err, ErrEmptyVocabulary) {
		t.Errorf("err = %v, want ErrEmptyVocabulary", err)
	}
}

func TestStandardScaler(t *testing.T) {
	var s StandardScaler
	if err := s.Fit([][]float64{{10, 1}, {20, 1}, {30, 1}}); err != nil {
		t.Fatal(err)
	}
	if s.Mean[0] != 20 || s.Mean[1] != 1 {
		t.Errorf("Mean = %v", s.Mean)
	}
	if s.Scale[1] != 1 {
		t.Errorf("zero-variance scale = %v, want 1", s.Scale[1])
	}
	got, err := s.Transform([]float64{30, 1})
	if err != nil {
		t.Fatal(err)
	}
	want := 10 / math.Sqrt(200.0/3.0)
	if math.Abs(got[0]-want) > 1e-12 || got[1] != 0 {
		t.Errorf("Transform = %v, want [%v 0]", got, want)
	}
	if _, err := s.Transform([]float64{1}); err == nil {
		t.Error("expected width mismatch error")
	}
}
