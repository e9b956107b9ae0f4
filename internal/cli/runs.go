// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/database"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

func runsCommand(st *state) *cobra.Command {
	var (
		contentType string
		limit       int
		latest      bool
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded training runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := recommend.ParseContentType(contentType)
			if err != nil {
				return err
			}
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1")
			}
			ctx := cmd.Context()
			return st.withRegistry(ctx, func(reg *database.Registry) error {
				if latest {
					run, err := reg.LatestRun(ctx, ct)
					if err != nil {
						return err
					}
					return writeJSON(cmd.OutOrStdout(), run)
				}
				runs, err := reg.ListRuns(ctx, ct, limit)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), runs)
			})
		},
	}

	contentTypeFlag(cmd, &contentType)
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs, newest first")
	cmd.Flags().BoolVar(&latest, "latest", false, "Print only the run that would be served")
	return cmd
}

// withRegistry opens only the database; listing runs does not need the
// artifact store.
func (st *state) withRegistry(ctx context.Context, fn func(*database.Registry) error) error {
	db, err := database.New(&st.cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	return fn(database.NewRegistry(db))
}
