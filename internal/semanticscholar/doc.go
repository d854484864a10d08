// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

/*
Package semanticscholar is the metadata fetch client for the Semantic Scholar
v1 REST API.

Every lookup goes through the same pipeline:

 1. A failed endpoint is remembered for the life of the process and fails fast.
 2. A per-endpoint lock makes concurrent callers for the same resource wait for
    the first one instead of issuing duplicate requests.
 3. A valid cache record answers without touching the network.
 4. On a miss the caller takes a concurrency token, then waits for the sliding
    window limiter, then issues the HTTP GET through a circuit breaker.
 5. A successful payload is cached with a per-kind lifetime (papers 30 days,
    authors 7 days by default). Without a configured backend the client keeps
    payloads in a process-local memory cache so step 2 still deduplicates.

Usage:

	client := semanticscholar.New(semanticscholar.Options{
	    Cache:   backend,
	    Limiter: ratelimit.NewSlidingWindow(100, 5*time.Minute),
	})
	paper, err := client.ArxivPaper(ctx, "2101.00001")
	papers, err := client.AuthorPapers(ctx, "1741101", 5)

Breaker rejections, cancelled contexts and cache read failures are returned to
the caller but never memoized.
*/
package semanticscholar
