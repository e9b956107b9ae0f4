// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/tomtom215/reelmatch/internal/config"
)

// RoleAdmin is the role required by train, reload and schema routes.
const RoleAdmin = "admin"

// issuer is set on issued tokens and required on validated ones.
const issuer = "reelmatch"

// minSecretLength matches the JWT_SECRET check in config validation.
const minSecretLength = 32

// ErrInvalidToken wraps every token validation failure.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the claims carry the admin role.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

// JWTManager issues and validates HS256 tokens.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewJWTManager creates a JWTManager from the security configuration.
// The secret must be at least 32 characters.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if len(cfg.JWTSecret) < minSecretLength {
		return nil, fmt.Errorf("JWT_SECRET must be at least %d characters", minSecretLength)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// GenerateToken signs a token for username with the given role.
func (m *JWTManager) GenerateToken(username, role string) (string, error) {
	now := m.now()
	claims := &Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    issuer,
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, algorithm, issuer and time claims.
// Errors wrap ErrInvalidToken.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	return claims, nil
}
