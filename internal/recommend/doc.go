// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package recommend trains and serves content-based recommendations for a
// streaming catalog.
//
// # Architecture
//
// Movies and shows are two independent pipelines that share one code path:
//
//   - Trainer: filters the catalog, fits a TF-IDF vectorizer (plus a
//     standard scaler over episode/season counts for shows), fits an exact
//     k-nearest-neighbour index, evaluates MAP@k, coverage and intra-list
//     similarity, persists the artifacts and records the run.
//   - Recommender: resolves the latest run for a content type, loads its
//     artifacts once, and answers batch recommendation queries.
//
// # Usage
//
//	trainer := recommend.NewTrainer(cfg, catalog, store, registry, logger)
//	res, err := trainer.Train(ctx, recommend.Shows, nil)
//
//	rec := recommend.NewRecommender(cfg, store, registry, logger)
//	out, err := rec.Recommend(ctx, recommend.Shows, items)
//
// # Thread Safety
//
// A loaded Model is immutable and shared by all requests without locking.
// Reload swaps the active model atomically; requests already in flight
// keep the model they started with. Only one training run per content type
// executes at a time within a process.
package recommend
