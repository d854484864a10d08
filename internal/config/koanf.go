// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"~/.config/digestrec/config.yaml",
	"/etc/digestrec/config.yaml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvFile is loaded into the environment when present.
const DotEnvFile = ".env"

func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		ArxivDigest: ArxivDigestConfig{
			BaseURL:           "https://api.arxivdigest.org/",
			RequestsPerSecond: 5,
			Timeout:           60 * time.Second,
		},
		SemanticScholar: SemanticScholarConfig{
			MaxConcurrentRequests: 100,
			MaxRequests:           100,
			WindowSize:            300 * time.Second,
			Timeout:               30 * time.Second,
			CacheResponses:        true,
			PaperCacheExpiration:  30,
			AuthorCacheExpiration: 7,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:             true,
				ConsecutiveFailures: 10,
				Interval:            time.Minute,
				Timeout:             30 * time.Second,
			},
		},
		Cache: CacheConfig{
			Backend: "badger",
			Path:    "data/s2cache",
		},
		Search: SearchConfig{
			Backend: "elasticsearch",
			URL:     "http://127.0.0.1:9200",
			Index:   "arxivdigest_papers",
			Timeout: 30 * time.Second,
		},
		Recommend: RecommendConfig{
			Strategy:             StrategyVenueCopub,
			MaxPaperAge:          5,
			MaxExplanationVenues: 3,
			MaxExplanationTopics: 3,
			MinInfluence:         20,
			MaxRecommendations:   10,
			VenueBlacklist:       []string{"arxiv"},
			UserConcurrency:      16,
			Submit:               true,
			RunOnce:              false,
			Interval:             24 * time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Address:   ":9090",
			RateLimit: 60,
		},
	}
}

// LoadWithKoanf loads configuration from defaults, an optional YAML file and
// the environment, then validates it.
func LoadWithKoanf() (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv reads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		p = expandHome(p)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[2:])
}

// sliceConfigPaths are parsed from comma-separated strings when set via env.
var sliceConfigPaths = []string{
	"recommend.venue_blacklist",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := make([]string, 0)
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// normalize lowercases the blacklist so lookups can compare case-insensitively.
func (c *Config) normalize() {
	for i, v := range c.Recommend.VenueBlacklist {
		c.Recommend.VenueBlacklist[i] = strings.ToLower(strings.TrimSpace(v))
	}
	c.Logging.Format = strings.ToLower(c.Logging.Format)
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"arxivdigest_base_url":            "arxivdigest.base_url",
	"arxivdigest_api_key":             "arxivdigest.api_key",
	"arxivdigest_requests_per_second": "arxivdigest.requests_per_second",
	"arxivdigest_timeout":             "arxivdigest.timeout",

	"s2_api_key":                 "semantic_scholar.api_key",
	"s2_base_url":                "semantic_scholar.base_url",
	"s2_max_concurrent_requests": "semantic_scholar.max_concurrent_requests",
	"s2_max_requests":            "semantic_scholar.max_requests",
	"s2_window_size":             "semantic_scholar.window_size",
	"s2_timeout":                 "semantic_scholar.timeout",
	"s2_cache_responses":         "semantic_scholar.cache_responses",
	"s2_paper_cache_expiration":  "semantic_scholar.paper_cache_expiration",
	"s2_author_cache_expiration": "semantic_scholar.author_cache_expiration",
	"s2_breaker_enabled":         "semantic_scholar.circuit_breaker.enabled",
	"s2_breaker_failures":        "semantic_scholar.circuit_breaker.consecutive_failures",
	"s2_breaker_timeout":         "semantic_scholar.circuit_breaker.timeout",

	"cache_backend": "cache.backend",
	"cache_path":    "cache.path",
	"cache_dsn":     "cache.dsn",

	"search_backend":    "search.backend",
	"elasticsearch_url": "search.url",
	"search_index":      "search.index",
	"search_timeout":    "search.timeout",

	"recommender":            "recommend.strategy",
	"max_paper_age":          "recommend.max_paper_age",
	"max_explanation_venues": "recommend.max_explanation_venues",
	"max_explanation_topics": "recommend.max_explanation_topics",
	"min_influence":          "recommend.min_influence",
	"max_recommendations":    "recommend.max_recommendations",
	"venue_blacklist":        "recommend.venue_blacklist",
	"user_concurrency":       "recommend.user_concurrency",
	"recommend_submit":       "recommend.submit",
	"recommend_run_once":     "recommend.run_once",
	"recommend_interval":     "recommend.interval",
	"recommend_seed":         "recommend.seed",

	"metrics_enabled":    "metrics.enabled",
	"metrics_address":    "metrics.address",
	"metrics_rate_limit": "metrics.rate_limit",
}

func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
