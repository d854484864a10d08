// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package main is the entry point for the digestrec recommender.
//
// The recommender pulls candidate articles and users from the arXivDigest
// platform, resolves both sides against Semantic Scholar and ranks articles
// per user with the configured strategy. Ranked, explained recommendations
// are submitted back to the platform in batches.
//
// # Startup Order
//
//  1. Configuration (Koanf v2: defaults, config.yaml, environment)
//  2. Semantic Scholar response cache (badger, duckdb, mysql or memory)
//  3. Semantic Scholar client with sliding-window limiter and circuit breaker
//  4. Venue vocabulary, author store and explainer
//  5. Search index (hybrid strategy only)
//  6. arXivDigest client and recommendation engine
//  7. Supervisor tree with the recommend service and the metrics server
//
// # Run Modes
//
// With RECOMMEND_RUN_ONCE=true the process performs one pass and exits with
// status 1 when the pass failed. Otherwise a pass runs at startup and then
// every RECOMMEND_INTERVAL until SIGINT or SIGTERM.
//
// # Example Usage
//
//	export ARXIVDIGEST_API_KEY=your-platform-key
//	export S2_API_KEY=your-partner-key
//	export RECOMMENDER=venue_copub
//	export RECOMMEND_RUN_ONCE=true
//	./recommender
package main
