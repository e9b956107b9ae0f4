// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package services adapts reelmatch components to suture.Service.

  - HTTPServerService serves the API and shuts it down gracefully when the
    supervisor stops.
  - TrainService trains every enabled content type on startup and on a
    fixed interval. Each cycle carries its own correlation ID.
  - ReloadService consumes model events and reloads the announced model,
    rate limited so a burst of events cannot thrash the artifact store.

Services that have nothing left to do return suture.ErrDoNotRestart.
*/
package services
