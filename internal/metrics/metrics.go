// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Semantic Scholar fetch client
	S2Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s2_requests_total",
			Help: "Lookups served by the Semantic Scholar client, by resource kind",
		},
		[]string{"kind"}, // "paper", "author"
	)

	S2CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s2_cache_hits_total",
			Help: "Lookups answered from the metadata cache",
		},
		[]string{"kind"},
	)

	S2CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s2_cache_misses_total",
			Help: "Lookups that required a network call",
		},
		[]string{"kind"},
	)

	S2Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "s2_errors_total",
			Help: "Failed lookups by cause",
		},
		[]string{"kind", "cause"}, // cause: "http", "not_found", "memoized", "cache", "breaker", "cancelled"
	)

	S2RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "s2_request_duration_seconds",
			Help:    "Latency of HTTP calls to Semantic Scholar",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// Sliding window limiter
	RateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ratelimit_wait_seconds",
			Help:    "Time callers spent waiting for admission",
			Buckets: []float64{0.001, 0.01, 0.1, 1, 5, 30, 60, 120, 300},
		},
	)

	// Circuit breakers
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Metadata cache backends
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "metadata_cache_operations_total",
			Help: "Cache backend operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	// Representations
	VenueVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "venue_vocabulary_size",
			Help: "Number of distinct venues discovered in this process",
		},
	)

	AuthorProfilesBuilt = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "author_profiles_built_total",
			Help: "Author representations computed (each author id at most once per process)",
		},
	)

	// Recommendation runs
	RecommendUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_users_total",
			Help: "Users processed per outcome",
		},
		[]string{"strategy", "outcome"}, // outcome: "recommended", "empty", "no_profile", "lookup_failed"
	)

	RecommendationsProduced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_recommendations_total",
			Help: "Recommendations produced after filtering and truncation",
		},
		[]string{"strategy"},
	)

	RecommendRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_run_duration_seconds",
			Help:    "Wall time of a full recommendation run",
			Buckets: []float64{1, 10, 60, 300, 900, 1800, 3600, 7200},
		},
		[]string{"strategy", "result"},
	)

	PlatformRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arxivdigest_requests_total",
			Help: "Calls to the arXivDigest API by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Topic search collaborator calls by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	// Status and metrics HTTP server
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Requests served by the status server, by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of requests served by the status server",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Requests currently in flight on the status server",
		},
	)
)

// RecordS2Lookup records the outcome of one fetch client lookup.
// cause is empty for a successful lookup.
func RecordS2Lookup(kind string, cacheHit bool, cause string) {
	S2Requests.WithLabelValues(kind).Inc()
	if cause != "" {
		S2Errors.WithLabelValues(kind, cause).Inc()
		return
	}
	if cacheHit {
		S2CacheHits.WithLabelValues(kind).Inc()
	}
}

// RecordS2Miss records a cache miss that led to a network call.
func RecordS2Miss(kind string, duration time.Duration) {
	S2CacheMisses.WithLabelValues(kind).Inc()
	S2RequestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCacheOperation records one backend call.
func RecordCacheOperation(backend, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	CacheOperations.WithLabelValues(backend, operation, result).Inc()
}

// RecordUserOutcome records what happened to one user in a batch.
func RecordUserOutcome(strategy, outcome string, recommendations int) {
	RecommendUsers.WithLabelValues(strategy, outcome).Inc()
	if recommendations > 0 {
		RecommendationsProduced.WithLabelValues(strategy).Add(float64(recommendations))
	}
}

// RecordRun records a completed recommendation run.
func RecordRun(strategy string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	RecommendRunDuration.WithLabelValues(strategy, result).Observe(duration.Seconds())
}

// RecordPlatformRequest records one arXivDigest API call.
func RecordPlatformRequest(endpoint, status string) {
	PlatformRequests.WithLabelValues(endpoint, status).Inc()
}

// RecordSearch records one search collaborator call.
func RecordSearch(backend, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	SearchRequests.WithLabelValues(backend, operation, result).Inc()
}

// RecordHTTPRequest records one request served by the status server.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		HTTPActiveRequests.Inc()
		return
	}
	HTTPActiveRequests.Dec()
}
