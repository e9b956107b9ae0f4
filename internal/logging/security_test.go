// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSanitizers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"empty token", SanitizeToken(""), ""},
		{"short token", SanitizeToken("abc"), "***"},
		{"long token", SanitizeToken("eyJhbGciOiJIUzI1NiJ9.payload"), "eyJh...load"},
		{"short subject", SanitizeSubject("admin"), "***"},
		{"long subject", SanitizeSubject("ops-pipeline-42"), "ops-...e-42"},
		{"secret error", SanitizeError("invalid bearer token signature"), "authentication error"},
		{"plain error", SanitizeError("content type not found"), "content type not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestSanitizeError_LongError(t *testing.T) {
	got := SanitizeError(strings.Repeat("x", 300))
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("SanitizeError() length = %d, want truncated to 200 plus ellipsis", len(got))
	}
}

func TestSecurityLogger_LogAdminAction(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
		wantLevel  string
	}{
		{"success", nil, `"status":"success"`, `"level":"info"`},
		{"failure", errors.New("training already in progress"), `"status":"failed"`, `"level":"warn"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewSecurityLoggerWithLogger(NewTestLogger(&buf))
			l.LogAdminAction("train", "ops-pipeline-42", "shows", "10.0.0.1", tt.err)

			out := buf.String()
			for _, want := range []string{tt.wantStatus, tt.wantLevel, `"event":"train"`, `"content_type":"shows"`, `"component":"audit"`, `"subject":"ops-...e-42"`} {
				if !strings.Contains(out, want) {
					t.Errorf("expected %s in output: %s", want, out)
				}
			}
		})
	}
}

func TestSecurityLogger_LogAuthRejected(t *testing.T) {
	var buf bytes.Buffer
	l := NewSecurityLoggerWithLogger(NewTestLogger(&buf))
	l.LogAuthRejected("10.0.0.2", "/api/v1/movies/train", "token expired")

	out := buf.String()
	if !strings.Contains(out, `"event":"auth_rejected"`) || !strings.Contains(out, `"error":"authentication error"`) {
		t.Errorf("unexpected audit record: %s", out)
	}
}
