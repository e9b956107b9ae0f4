// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/app"
	"github.com/tomtom215/reelmatch/internal/events"
	"github.com/tomtom215/reelmatch/internal/recommend"
)

func trainCommand(st *state) *cobra.Command {
	var (
		contentType string
		nNeighbors  int
		metric      string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run one training job and record it in the registry",
		Long: `Train runs the full pipeline for one content type: load the catalog,
build TF-IDF features, fit the nearest-neighbour index, evaluate MAP@K,
coverage and intra-list similarity, write artifacts and record the run.

With EVENTS_BACKEND=nats the new model is announced so running servers
reload it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := recommend.ParseContentType(contentType)
			if err != nil {
				return err
			}
			var params *recommend.Params
			if cmd.Flags().Changed("n-neighbors") || cmd.Flags().Changed("metric") {
				params = &recommend.Params{NNeighbors: nNeighbors, Metric: metric}
			}

			ctx := cmd.Context()
			return st.withApp(ctx, func(a *app.App) error {
				if st.cfg.Events.Backend != "memory" {
					bus, err := events.Open(&st.cfg.Events, st.logger)
					if err != nil {
						return fmt.Errorf("failed to open event bus: %w", err)
					}
					defer func() {
						if err := bus.Close(); err != nil {
							st.logger.Warn().Err(err).Msg("failed to close event bus")
						}
					}()
					a.Trainer.SetPublisher(bus)
				}

				res, err := a.Trainer.Train(ctx, ct, params)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	contentTypeFlag(cmd, &contentType)
	cmd.Flags().IntVarP(&nNeighbors, "n-neighbors", "k", 0, "Neighbours per item (default: RECOMMEND_N_NEIGHBORS)")
	cmd.Flags().StringVar(&metric, "metric", "", "cosine, euclidean or manhattan (default: RECOMMEND_METRIC)")
	return cmd
}
