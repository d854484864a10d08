// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package recommend ranks candidate arXiv papers for arXivDigest users.
//
// # Architecture
//
// An Engine pulls candidate articles and users from a Platform, asks the
// active Strategy to score every (user, article) pair and submits the best
// few per user back to the platform.
//
// Strategies share per-author state that is built lazily and kept for the
// life of the process:
//
//   - venue profiles (venue.Profile) for co-publication and influence scoring
//   - citation tables (cited author id to count) for citation scoring
//   - collaborator lists for collaborator citation scoring
//
// # Strategies
//
//   - venue_copub: cosine similarity between the user's venue vector and the
//     most similar author of the paper
//   - prev_cited: how often the user cited the paper's most-cited author
//   - prev_cited_collab: the same, counted over the user's co-authors
//   - weighted_inf: venue similarity weighted by the author's influence at
//     venues the user publishes at
//   - hybrid: topic search relevance times previous citations
//   - frequent_venues: how often the user published at the paper's venue
//
// Ties between authors resolve to the first author in paper order.
//
// # Thread Safety
//
// Engine, Explainer and all strategies are safe for concurrent use. Users in
// a batch and candidates for a user are scored concurrently; outbound
// concurrency is bounded by the metadata client.
package recommend
