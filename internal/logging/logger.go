// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Config controls the process-wide logger.
type Config struct {
	// Level is trace, debug, info, warn, error, fatal, panic or disabled.
	// Unknown values fall back to info.
	Level string

	// Format is json (default) or console.
	Format string

	// Caller adds file:line to every line.
	Caller bool

	// Timestamp adds a "time" field.
	Timestamp bool

	// Service and Environment, when set, are stamped on every line as
	// "app" and "env" so server and CLI logs can share one sink.
	Service     string
	Environment string

	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig is what the package uses before Init runs.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Timestamp: true, Output: os.Stderr}
}

var global atomic.Pointer[zerolog.Logger]

//nolint:gochecknoinits // packages log before main calls Init
func init() {
	Init(DefaultConfig())
}

// Init replaces the global logger. It may be called again at any time,
// for example when a CLI flag overrides the configured level.
func Init(cfg Config) {
	l := build(cfg)
	global.Store(&l)
}

func build(cfg Config) zerolog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if strings.EqualFold(cfg.Format, "console") {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	c := zerolog.New(out).With()
	if cfg.Timestamp {
		c = c.Timestamp()
	}
	if cfg.Caller {
		c = c.Caller()
	}
	if cfg.Service != "" {
		c = c.Str("app", cfg.Service)
	}
	if cfg.Environment != "" {
		c = c.Str("env", cfg.Environment)
	}
	return c.Logger()
}

func parseLevel(level string) zerolog.Level {
	s := strings.ToLower(strings.TrimSpace(level))
	if s == "warning" {
		s = "warn"
	}
	if s == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Logger returns a copy of the global logger. Components keep the copy
// and derive their own fields from it.
func Logger() zerolog.Logger {
	return *global.Load()
}

func Debug() *zerolog.Event { return global.Load().Debug() }

func Info() *zerolog.Event { return global.Load().Info() }

func Warn() *zerolog.Event { return global.Load().Warn() }

func Error() *zerolog.Event { return global.Load().Error() }

// Fatal logs and then exits with status 1.
func Fatal() *zerolog.Event { return global.Load().Fatal() }

// NewTestLogger writes JSON lines to w at every level.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
