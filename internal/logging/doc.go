// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package logging owns the process-wide zerolog logger shared by the
// server and the reelmatch CLI.
//
//	logging.Init(logging.Config{
//	    Level:       cfg.Logging.Level,
//	    Format:      cfg.Logging.Format,
//	    Service:     "reelmatch",
//	    Environment: cfg.Server.Environment,
//	})
//
// Components receive a zerolog.Logger in their constructor and add their
// own fields. Code that is shared between requests and training runs logs
// through Ctx, which picks up whatever the context carries:
//
//   - request_id and correlation_id, set by the HTTP middleware
//   - correlation_id alone, for scheduled training and model events
//   - content_type and job_id, set by the trainer via ContextWithJob
//   - trace_id and span_id inside a sampled OpenTelemetry span
//
// LOG_LEVEL, LOG_FORMAT and LOG_CALLER are read by the config package.
//
// SlogHandler bridges to log/slog for the supervisor tree, and
// SecurityLogger writes the audit lines for admin routes with secrets
// redacted.
package logging
