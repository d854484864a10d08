// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

/*
Package middleware provides HTTP middleware for the status server.

  - RequestID: propagates or generates a UUID request id
  - PrometheusMetrics: request counts, latency and in-flight gauge

Both follow the standard func(http.Handler) http.Handler shape so they
compose with chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)

Metrics are labelled with the chi route pattern rather than the raw path,
which keeps label cardinality bounded. Requests that match no route are
labelled "unmatched".
*/
package middleware
