// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// SecurityEvent is an audit record for an admin operation or an
// authentication decision.
type SecurityEvent struct {
	// Event names the operation, e.g. "train", "model_reload", "auth_rejected".
	Event string
	// Subject is the token subject, if known.
	Subject string
	// ContentType is the pipeline the operation targets, if any.
	ContentType string
	// IPAddress is the client's IP address.
	IPAddress string
	// Path is the request path.
	Path string
	// Success indicates if the operation was allowed and succeeded.
	Success bool
	// Error is the failure reason.
	Error string
}

// SecurityLogger writes audit records for admin routes. Subjects and
// errors are sanitized before logging.
type SecurityLogger struct {
	logger zerolog.Logger
}

// NewSecurityLogger creates a security logger on the global logger.
func NewSecurityLogger() *SecurityLogger {
	return NewSecurityLoggerWithLogger(Logger())
}

// NewSecurityLoggerWithLogger creates a security logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewSecurityLoggerWithLogger(logger zerolog.Logger) *SecurityLogger {
	return &SecurityLogger{
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// LogEvent logs a security event.
func (l *SecurityLogger) LogEvent(event *SecurityEvent) {
	var e *zerolog.Event
	if event.Success {
		e = l.logger.Info().Str("status", "success")
	} else {
		e = l.logger.Warn().Str("status", "failed")
	}
	e = e.Str("event", event.Event)

	if event.Subject != "" {
		e = e.Str("subject", SanitizeSubject(event.Subject))
	}
	if event.ContentType != "" {
		e = e.Str("content_type", event.ContentType)
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.Path != "" {
		e = e.Str("path", truncateString(event.Path, 200))
	}
	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}
	e.Msg("audit")
}

// LogAuthRejected records a refused admin request.
func (l *SecurityLogger) LogAuthRejected(ip, path, reason string) {
	l.LogEvent(&SecurityEvent{Event: "auth_rejected", IPAddress: ip, Path: path, Error: reason})
}

// LogAdminAction records an admin operation and its outcome.
func (l *SecurityLogger) LogAdminAction(action, subject, contentType, ip string, err error) {
	ev := &SecurityEvent{
		Event:       action,
		Subject:     subject,
		ContentType: contentType,
		IPAddress:   ip,
		Success:     err == nil,
	}
	if err != nil {
		ev.Error = err.Error()
	}
	l.LogEvent(ev)
}

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..." -> "eyJh...kpXV"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeSubject masks a token subject.
// Example: "ops-pipeline-42" -> "ops-...e-42"
func SanitizeSubject(subject string) string {
	if subject == "" {
		return ""
	}
	if len(subject) <= 8 {
		return "***"
	}
	return subject[:4] + "..." + subject[len(subject)-4:]
}

// SanitizeError replaces messages that mention credentials with a
// generic one and truncates the rest.
func SanitizeError(err string) string {
	sensitivePatterns := []string{
		"password",
		"secret",
		"token",
		"key",
		"bearer",
		"authorization",
	}

	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			return "authentication error"
		}
	}
	return truncateString(err, 200)
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
