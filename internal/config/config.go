// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package config

import "time"

// Strategy names accepted by recommend.strategy.
const (
	StrategyVenueCopub      = "venue_copub"
	StrategyPrevCited       = "prev_cited"
	StrategyPrevCitedCollab = "prev_cited_collab"
	StrategyWeightedInf     = "weighted_inf"
	StrategyHybrid          = "hybrid"
	StrategyFrequentVenues  = "frequent_venues"
)

// Config is the complete process configuration.
type Config struct {
	Logging         LoggingConfig         `koanf:"logging"`
	ArxivDigest     ArxivDigestConfig     `koanf:"arxivdigest"`
	SemanticScholar SemanticScholarConfig `koanf:"semantic_scholar"`
	Cache           CacheConfig           `koanf:"cache"`
	Search          SearchConfig          `koanf:"search"`
	Recommend       RecommendConfig       `koanf:"recommend"`
	Metrics         MetricsConfig         `koanf:"metrics"`
}

// LoggingConfig configures internal/logging.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// ArxivDigestConfig points at the arXivDigest platform API.
type ArxivDigestConfig struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	APIKey  string `koanf:"api_key"`

	// RequestsPerSecond throttles calls to the platform. 0 disables throttling.
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Timeout           time.Duration `koanf:"timeout"`
}

// SemanticScholarConfig configures the metadata fetch client.
type SemanticScholarConfig struct {
	// APIKey switches the client to the partner endpoint and sends x-api-key.
	APIKey string `koanf:"api_key"`

	// BaseURL overrides the endpoint chosen from APIKey.
	BaseURL string `koanf:"base_url" validate:"omitempty,url"`

	MaxConcurrentRequests int           `koanf:"max_concurrent_requests" validate:"min=1"`
	MaxRequests           int           `koanf:"max_requests" validate:"min=1"`
	WindowSize            time.Duration `koanf:"window_size"`
	Timeout               time.Duration `koanf:"timeout"`

	// CacheResponses keeps metadata in process memory only when false.
	CacheResponses bool `koanf:"cache_responses"`

	// Cache lifetimes in days.
	PaperCacheExpiration  int `koanf:"paper_cache_expiration" validate:"min=0"`
	AuthorCacheExpiration int `koanf:"author_cache_expiration" validate:"min=0"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker"`
}

// CircuitBreakerConfig tunes the gobreaker wrapped around outbound calls.
type CircuitBreakerConfig struct {
	Enabled             bool          `koanf:"enabled"`
	ConsecutiveFailures uint32        `koanf:"consecutive_failures"`
	Interval            time.Duration `koanf:"interval"`
	Timeout             time.Duration `koanf:"timeout"`
}

// CacheConfig selects the metadata cache backend.
type CacheConfig struct {
	// Backend is memory, badger, duckdb or mysql.
	Backend string `koanf:"backend" validate:"oneof=memory badger duckdb mysql"`

	// Path is the directory (badger) or database file (duckdb).
	Path string `koanf:"path"`

	// DSN is the MySQL data source name.
	DSN string `koanf:"dsn"`
}

// SearchConfig selects the topic search collaborator used by the hybrid strategy.
type SearchConfig struct {
	Backend string        `koanf:"backend" validate:"oneof=memory elasticsearch"`
	URL     string        `koanf:"url"`
	Index   string        `koanf:"index" validate:"required"`
	Timeout time.Duration `koanf:"timeout"`
}

// RecommendConfig configures scoring, explanations and the run schedule.
type RecommendConfig struct {
	Strategy string `koanf:"strategy" validate:"oneof=venue_copub prev_cited prev_cited_collab weighted_inf hybrid frequent_venues"`

	// MaxPaperAge bounds, in years, which of a person's papers count.
	MaxPaperAge          int      `koanf:"max_paper_age" validate:"min=1"`
	MaxExplanationVenues int      `koanf:"max_explanation_venues" validate:"min=1"`
	MaxExplanationTopics int      `koanf:"max_explanation_topics" validate:"min=1"`
	MinInfluence         int      `koanf:"min_influence" validate:"min=0"`
	MaxRecommendations   int      `koanf:"max_recommendations" validate:"min=1"`
	VenueBlacklist       []string `koanf:"venue_blacklist"`

	// UserConcurrency bounds how many users of a batch are ranked at once.
	UserConcurrency int `koanf:"user_concurrency" validate:"min=1"`

	// Submit sends recommendations to the platform. Disable for dry runs.
	Submit bool `koanf:"submit"`

	// RunOnce performs a single pass and exits instead of running on Interval.
	RunOnce  bool          `koanf:"run_once"`
	Interval time.Duration `koanf:"interval"`

	// Seed fixes explanation sampling. 0 seeds from the clock.
	Seed int64 `koanf:"seed"`
}

// MetricsConfig controls the Prometheus/health listener.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Address   string `koanf:"address"`
	RateLimit int    `koanf:"rate_limit" validate:"min=0"`
}
