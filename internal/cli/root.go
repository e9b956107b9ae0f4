// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package cli implements the reelmatch command line tool. It shares its
// configuration and wiring with the server, so a model trained here is
// served by any server pointed at the same registry and artifact store.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/app"
	"github.com/tomtom215/reelmatch/internal/config"
	"github.com/tomtom215/reelmatch/internal/logging"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

// ConfigLoader returns the configuration a command runs with.
type ConfigLoader func() (*config.Config, error)

// state is shared by the subcommands. PersistentPreRunE fills it.
type state struct {
	load     ConfigLoader
	logLevel string
	cfg      *config.Config
	logger   zerolog.Logger
}

// RootCommand creates the reelmatch command tree.
func RootCommand(load ConfigLoader) *cobra.Command {
	if load == nil {
		load = config.LoadWithKoanf
	}
	st := &state{load: load}

	rootCmd := &cobra.Command{
		Use:           "reelmatch",
		Short:         "Train and query content-based recommendation models",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "Override LOG_LEVEL (trace, debug, info, warn, error)")

	tokenCmd := tokenCommand(st)
	rootCmd.AddCommand(
		trainCommand(st),
		recommendCommand(st),
		runsCommand(st),
		schemaCommand(st),
		tokenCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := st.load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		level := cfg.Logging.Level
		if st.logLevel != "" {
			level = st.logLevel
		}
		// Logs go to stderr; stdout carries command output only.
		logging.Init(logging.Config{
			Level:     level,
			Format:    cfg.Logging.Format,
			Caller:    cfg.Logging.Caller,
			Timestamp: true,
			Service:   "reelmatch-cli",
			Output:    cmd.ErrOrStderr(),
		})
		st.cfg = cfg
		st.logger = logging.Logger().With().Str("command", cmd.Name()).Logger()
		return nil
	}

	return rootCmd
}

// withApp opens the shared components for the duration of fn.
func (st *state) withApp(ctx context.Context, fn func(*app.App) error) error {
	a, err := app.New(ctx, st.cfg, st.logger)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.Close(); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func contentTypeFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "content-type", "c", string(recommend.Movies), "Pipeline: movies or shows")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
