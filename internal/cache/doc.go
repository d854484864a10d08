// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package cache stores Semantic Scholar responses behind a pluggable backend.
//
// Every backend holds Records keyed by endpoint string ("/paper/<id>",
// "/author/<id>"). A Record is valid while its Expiration date is today or
// later; the fetch client refetches anything else. Backends never expire
// records on their own schedule in a way that changes that rule: badger's
// TTL is set past the record's expiration so garbage collection only removes
// records that are already stale.
//
// Engines:
//
//   - memory: process-local map, lost on exit
//   - badger: embedded key-value store on local disk
//   - duckdb: embedded SQL file, one row per endpoint
//   - mysql:  shared networked store through GORM
//
// All engines give read-after-write visibility inside one process. Nothing
// is promised across processes beyond what the engine itself provides.
package cache
