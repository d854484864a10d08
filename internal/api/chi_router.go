// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/digestrec/internal/middleware"
	"github.com/tomtom215/digestrec/internal/recommend"
)

// StatusSource reports recommendation run history.
type StatusSource interface {
	Runs() int64
	LastRun() *recommend.RunSummary
}

// VenueSource exposes the venue vocabulary.
type VenueSource interface {
	Snapshot() []string
}

// StateFunc returns a circuit breaker state name such as "closed" or "open".
type StateFunc func() string

// Options configures the router. Nil sources disable their routes.
type Options struct {
	Status   StatusSource
	Venues   VenueSource
	Breakers map[string]StateFunc

	// RateLimit is requests per minute per client IP. 0 disables it.
	RateLimit int

	Version string
}

// Handler serves the API routes.
type Handler struct {
	status    StatusSource
	venues    VenueSource
	breakers  map[string]StateFunc
	version   string
	startTime time.Time
}

// NewRouter builds the chi router.
func NewRouter(opts Options) http.Handler {
	h := &Handler{
		status:    opts.Status,
		venues:    opts.Venues,
		breakers:  opts.Breakers,
		version:   opts.Version,
		startTime: time.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(RequestLogger())

	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(RateLimitByIP(opts.RateLimit))
		r.Get("/healthz", h.Health)
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/runs/last", h.LastRun)
			r.Get("/venues", h.Venues)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found")
	})
	return r
}
