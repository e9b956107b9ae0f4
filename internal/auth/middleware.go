// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package auth

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/reelmatch/internal/logging"
)

type contextKey string

// ClaimsContextKey holds the validated *Claims of an admin request.
const ClaimsContextKey contextKey = "claims"

// Auth modes accepted by NewMiddleware.
const (
	ModeNone = "none"
	ModeJWT  = "jwt"
)

// Failed attempts allowed per client before requests are refused, and
// the rate at which that allowance refills.
const (
	failureBurst  = 5
	failureRefill = 12 * time.Second
)

// Middleware guards admin routes.
type Middleware struct {
	jwt      *JWTManager
	mode     string
	audit    *logging.SecurityLogger
	failures *FailureLimiter
}

// NewMiddleware creates the admin guard. jwtManager may be nil when mode
// is ModeNone.
func NewMiddleware(jwtManager *JWTManager, mode string, audit *logging.SecurityLogger) *Middleware {
	if audit == nil {
		audit = logging.NewSecurityLogger()
	}
	return &Middleware{
		jwt:      jwtManager,
		mode:     mode,
		audit:    audit,
		failures: NewFailureLimiter(failureBurst, failureRefill),
	}
}

// Enabled reports whether admin routes require a token.
func (m *Middleware) Enabled() bool {
	return m.mode != ModeNone
}

// RequireAdmin rejects requests without a valid admin bearer token.
// Clients that keep presenting bad tokens get 429 until their failure
// allowance refills.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		ip := clientIP(r)
		if m.failures.Blocked(ip) {
			m.audit.LogAuthRejected(ip, r.URL.Path, "too many failed attempts")
			writeAuthError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many failed authentication attempts")
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			m.reject(w, r, ip, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Debug().Err(err).Msg("Token validation failed")
			m.reject(w, r, ip, http.StatusUnauthorized, "invalid token")
			return
		}
		if !claims.IsAdmin() {
			m.reject(w, r, ip, http.StatusForbidden, "admin role required")
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) reject(w http.ResponseWriter, r *http.Request, ip string, status int, reason string) {
	m.failures.Fail(ip)
	m.audit.LogAuthRejected(ip, r.URL.Path, reason)
	code := "UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "FORBIDDEN"
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="reelmatch"`)
	writeAuthError(w, r, status, code, reason)
}

// ClaimsFromContext returns the claims stored by RequireAdmin.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return c, ok
}

// SubjectFromContext returns the authenticated username, or "anonymous".
func SubjectFromContext(ctx context.Context) string {
	if c, ok := ClaimsFromContext(ctx); ok && c.Username != "" {
		return c.Username
	}
	return "anonymous"
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// clientIP strips the port from RemoteAddr. chi's RealIP middleware has
// already applied X-Forwarded-For / X-Real-IP when mounted.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type authErrorBody struct {
	Success bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeAuthError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var body authErrorBody
	body.Error.Code = code
	body.Error.Message = message

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to write auth error")
	}
}

// FailureLimiter tracks failed authentication attempts per client with a
// token bucket each. Idle buckets are dropped by Cleanup.
type FailureLimiter struct {
	mu      sync.Mutex
	buckets map[string]*failureEntry
	limit   rate.Limit
	burst   int
}

type failureEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewFailureLimiter allows burst failures, refilling one per interval.
func NewFailureLimiter(burst int, interval time.Duration) *FailureLimiter {
	return &FailureLimiter{
		buckets: make(map[string]*failureEntry),
		limit:   rate.Every(interval),
		burst:   burst,
	}
}

func (f *FailureLimiter) entry(key string) *failureEntry {
	e, ok := f.buckets[key]
	if !ok {
		e = &failureEntry{limiter: rate.NewLimiter(f.limit, f.burst)}
		f.buckets[key] = e
	}
	e.lastAccess = time.Now()
	return e
}

// Fail consumes one token for key.
func (f *FailureLimiter) Fail(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entry(key).limiter.Allow()
}

// Blocked reports whether key has exhausted its allowance.
func (f *FailureLimiter) Blocked(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.buckets[key]
	if !ok {
		return false
	}
	return e.limiter.Tokens() < 1
}

// Cleanup drops buckets idle for longer than maxIdle.
func (f *FailureLimiter) Cleanup(maxIdle time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	threshold := time.Now().Add(-maxIdle)
	removed := 0
	for key, e := range f.buckets {
		if e.lastAccess.Before(threshold) {
			delete(f.buckets, key)
			removed++
		}
	}
	return removed
}

// Failures exposes the limiter so the owner can schedule Cleanup.
func (m *Middleware) Failures() *FailureLimiter {
	return m.failures
}
