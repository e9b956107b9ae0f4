// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package testinfra starts throwaway containers for integration tests.
//
// Everything here is behind the integration build tag and needs a Docker
// daemon. StartFakeGCS skips the test when Docker is missing and stops
// the container in t.Cleanup.
//
//	func TestGCSBackend(t *testing.T) {
//	    gcs := testinfra.StartFakeGCS(t, "artifacts")
//	    backend, err := storage.NewGCSBackend(context.Background(), storage.GCSConfig{
//	        Bucket:       "artifacts",
//	        EmulatorHost: gcs.URL,
//	    })
//	    // ...
//	}
//
// Run with:
//
//	go test -tags=integration ./...
package testinfra
