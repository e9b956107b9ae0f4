// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/reelmatch/internal/config"
)

const testSecret = "this_is_a_very_long_secret_key_for_testing_purposes_12345"

func newTestManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{JWTSecret: testSecret, TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	return m
}

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		wantErr bool
	}{
		{"valid secret", &config.SecurityConfig{JWTSecret: testSecret, TokenTTL: time.Hour}, false},
		{"zero ttl defaults", &config.SecurityConfig{JWTSecret: testSecret}, false},
		{"empty secret", &config.SecurityConfig{}, true},
		{"short secret", &config.SecurityConfig{JWTSecret: "short"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewJWTManager(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewJWTManager() unexpected error = %v", err)
			}
			if m.ttl <= 0 {
				t.Errorf("ttl = %v, want positive", m.ttl)
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestManager(t)

	tests := []struct {
		username string
		role     string
		admin    bool
	}{
		{"ops", RoleAdmin, true},
		{"dashboard", "viewer", false},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			token, err := m.GenerateToken(tt.username, tt.role)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}
			claims, err := m.ValidateToken(token)
			if err != nil {
				t.Fatalf("ValidateToken() error = %v", err)
			}
			if claims.Username != tt.username || claims.Subject != tt.username {
				t.Errorf("username = %q subject = %q, want %q", claims.Username, claims.Subject, tt.username)
			}
			if claims.IsAdmin() != tt.admin {
				t.Errorf("IsAdmin() = %v, want %v", claims.IsAdmin(), tt.admin)
			}
			if claims.ID == "" {
				t.Error("token id not set")
			}
		})
	}
}

func TestValidateTokenRejects(t *testing.T) {
	m := newTestManager(t)
	other, err := NewJWTManager(&config.SecurityConfig{JWTSecret: strings.Repeat("x", 40), TokenTTL: time.Hour})
	if err != nil {
		t.Fatal(err)
	}

	expired := newTestManager(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed := func(mgr *JWTManager) string {
		tok, err := mgr.GenerateToken("ops", RoleAdmin)
		if err != nil {
			t.Fatal(err)
		}
		return tok
	}

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Username: "ops",
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}

	foreignIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "ops",
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"wrong secret", signed(other)},
		{"expired", signed(expired)},
		{"alg none", noneToken},
		{"foreign issuer", foreignIssuer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.ValidateToken(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
