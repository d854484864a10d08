// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

/*
Package api serves the recommender's operational HTTP surface.

Routes:
  - GET /healthz                  liveness plus circuit breaker states
  - GET /metrics                  Prometheus exposition
  - GET /api/v1/runs/last         summary of the most recent recommendation run
  - GET /api/v1/venues            the discovered venue vocabulary

The router is built on go-chi/chi. Every request gets a request id and
Prometheus instrumentation from internal/middleware plus chi's RealIP and
Recoverer. /healthz and the /api/v1 routes are rate limited per client IP
with go-chi/httprate.

	handler := api.NewRouter(api.Options{
	    Status:    engine,
	    Venues:    vocab,
	    Breakers:  map[string]api.StateFunc{"semantic_scholar": s2State},
	    RateLimit: 120,
	})
	server := &http.Server{Addr: ":9090", Handler: handler}
*/
package api
