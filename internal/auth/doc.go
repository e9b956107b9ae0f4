// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

/*
Package auth guards the administrative routes of the Reelmatch API.

Training, model reload and schema creation change shared state, so with
AUTH_MODE=jwt they require an HS256 bearer token whose role claim is
"admin". Read routes (recommend, predict, model info, runs) stay open.

Tokens are minted with the CLI:

	reelmatch token --user ops --role admin

Rejections are written to the audit log through logging.SecurityLogger.
A client that presents five bad tokens in a row is answered with 429
until its failure allowance refills (one attempt per 12 seconds).
*/
package auth
