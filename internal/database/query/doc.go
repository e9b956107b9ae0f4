// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

// Package query provides SQL query building utilities for the database package.
//
// Only values are parameterized. Column and table names passed to the
// builder are written into the SQL text and must come from code, never
// from request input.
package query
