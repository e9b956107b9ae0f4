// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package cli

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/database"
)

type schemaStatus struct {
	Schema  string `json:"schema"`
	Version int    `json:"version"`
}

func schemaCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Create or migrate the run registry schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := database.New(&st.cfg.Database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			version, err := db.GetCurrentSchemaVersion(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), schemaStatus{Schema: db.Schema(), Version: version})
		},
	}
}
