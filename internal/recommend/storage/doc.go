// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package storage persists fitted model artifacts.
//
// Artifacts are gob-encoded, checksummed with SHA-256 and gzip-compressed
// before they are written to a Backend. Three backends are provided:
//
//   - FileBackend: a directory on local disk
//   - GCSBackend: a Google Cloud Storage bucket (or the fake-gcs emulator)
//   - BadgerBackend: an embedded BadgerDB key-value store
//
// Any backend can be wrapped with NewBreakerBackend so that a failing
// object store trips a circuit breaker instead of stalling every caller.
//
// # Layout
//
// Each training run writes its artifacts under one directory:
//
//	{prefix}/netflix-{movies|shows}/{job_id}/model/
//	    vectorizer.gob.gz
//	    scaler.gob.gz        (shows only)
//	    knn_model.gob.gz
//	    metadata.gob.gz
//	    manifest.json
//
// The manifest is plain JSON so that operators can inspect a run without
// decoding the binary artifacts.
package storage
