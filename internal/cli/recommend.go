// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/app"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

func recommendCommand(st *state) *cobra.Command {
	var (
		contentType string
		file        string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend similar titles for a JSON array of catalog items",
		Long: `Recommend reads a JSON array of catalog items from --file, or from
stdin when --file is "-" or empty, and prints the neighbours found by the
best recorded model of the content type.`,
		Example: `  echo '[{"title":"Heat","showType":"movie","overview":"..."}]' | reelmatch recommend -c movies`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := recommend.ParseContentType(contentType)
			if err != nil {
				return err
			}
			items, err := readItems(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			return st.withApp(ctx, func(a *app.App) error {
				res, err := a.Recommender.Recommend(ctx, ct, items)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	contentTypeFlag(cmd, &contentType)
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON file with the query items (default: stdin)")
	return cmd
}

func readItems(stdin io.Reader, path string) ([]recommend.CatalogItem, error) {
	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(path) //nolint:gosec // path is an operator-supplied flag
		if err != nil {
			return nil, fmt.Errorf("failed to open items file: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var items []recommend.CatalogItem
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("no items to recommend for")
	}
	return items, nil
}
