// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// isolate runs the test in an empty directory so no stray config.yaml or .env
// from the repository is picked up.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HOME", t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.SemanticScholar.MaxConcurrentRequests != 100 {
		t.Errorf("MaxConcurrentRequests = %d, want 100", cfg.SemanticScholar.MaxConcurrentRequests)
	}
	if cfg.SemanticScholar.MaxRequests != 100 {
		t.Errorf("MaxRequests = %d, want 100", cfg.SemanticScholar.MaxRequests)
	}
	if cfg.SemanticScholar.WindowSize != 300*time.Second {
		t.Errorf("WindowSize = %v, want 5m", cfg.SemanticScholar.WindowSize)
	}
	if cfg.SemanticScholar.PaperCacheExpiration != 30 || cfg.SemanticScholar.AuthorCacheExpiration != 7 {
		t.Errorf("cache expirations = %d/%d, want 30/7",
			cfg.SemanticScholar.PaperCacheExpiration, cfg.SemanticScholar.AuthorCacheExpiration)
	}
	if cfg.Recommend.MaxPaperAge != 5 {
		t.Errorf("MaxPaperAge = %d, want 5", cfg.Recommend.MaxPaperAge)
	}
	if cfg.Recommend.MaxExplanationVenues != 3 {
		t.Errorf("MaxExplanationVenues = %d, want 3", cfg.Recommend.MaxExplanationVenues)
	}
	if cfg.Recommend.MinInfluence != 20 {
		t.Errorf("MinInfluence = %d, want 20", cfg.Recommend.MinInfluence)
	}
	if !reflect.DeepEqual(cfg.Recommend.VenueBlacklist, []string{"arxiv"}) {
		t.Errorf("VenueBlacklist = %v, want [arxiv]", cfg.Recommend.VenueBlacklist)
	}
	if cfg.Search.Index != "arxivdigest_papers" {
		t.Errorf("Search.Index = %q, want arxivdigest_papers", cfg.Search.Index)
	}
}

func TestLoadWithKoanf_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ARXIVDIGEST_API_KEY", "secret")
	t.Setenv("S2_MAX_REQUESTS", "250")
	t.Setenv("S2_WINDOW_SIZE", "60s")
	t.Setenv("RECOMMENDER", "weighted_inf")
	t.Setenv("VENUE_BLACKLIST", "arXiv, CoRR ,")
	t.Setenv("CACHE_BACKEND", "memory")
	t.Setenv("RECOMMEND_SUBMIT", "false")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.SemanticScholar.MaxRequests != 250 {
		t.Errorf("MaxRequests = %d, want 250", cfg.SemanticScholar.MaxRequests)
	}
	if cfg.SemanticScholar.WindowSize != time.Minute {
		t.Errorf("WindowSize = %v, want 1m", cfg.SemanticScholar.WindowSize)
	}
	if cfg.Recommend.Strategy != StrategyWeightedInf {
		t.Errorf("Strategy = %q, want weighted_inf", cfg.Recommend.Strategy)
	}
	if want := []string{"arxiv", "corr"}; !reflect.DeepEqual(cfg.Recommend.VenueBlacklist, want) {
		t.Errorf("VenueBlacklist = %v, want %v", cfg.Recommend.VenueBlacklist, want)
	}
	if cfg.Recommend.Submit {
		t.Error("Submit should be false after RECOMMEND_SUBMIT=false")
	}
}

func TestLoadWithKoanf_YAMLFile(t *testing.T) {
	isolate(t)

	content := `
arxivdigest:
  api_key: from-file
semantic_scholar:
  max_concurrent_requests: 7
cache:
  backend: duckdb
  path: cache.duckdb
recommend:
  strategy: hybrid
  max_recommendations: 25
  venue_blacklist: [ArXiv, bioRxiv]
`
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("MAX_RECOMMENDATIONS", "12")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.ArxivDigest.APIKey != "from-file" {
		t.Errorf("APIKey = %q, want from-file", cfg.ArxivDigest.APIKey)
	}
	if cfg.SemanticScholar.MaxConcurrentRequests != 7 {
		t.Errorf("MaxConcurrentRequests = %d, want 7", cfg.SemanticScholar.MaxConcurrentRequests)
	}
	if cfg.Cache.Backend != "duckdb" || cfg.Cache.Path != "cache.duckdb" {
		t.Errorf("Cache = %+v, want duckdb at cache.duckdb", cfg.Cache)
	}
	// env wins over file
	if cfg.Recommend.MaxRecommendations != 12 {
		t.Errorf("MaxRecommendations = %d, want 12", cfg.Recommend.MaxRecommendations)
	}
	if want := []string{"arxiv", "biorxiv"}; !reflect.DeepEqual(cfg.Recommend.VenueBlacklist, want) {
		t.Errorf("VenueBlacklist = %v, want %v", cfg.Recommend.VenueBlacklist, want)
	}
}

func TestLoadWithKoanf_DotEnv(t *testing.T) {
	isolate(t)

	if err := os.WriteFile(DotEnvFile, []byte("ARXIVDIGEST_API_KEY=dotenv-key\nMAX_PAPER_AGE=3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("ARXIVDIGEST_API_KEY")
		os.Unsetenv("MAX_PAPER_AGE")
	})

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.ArxivDigest.APIKey != "dotenv-key" {
		t.Errorf("APIKey = %q, want dotenv-key", cfg.ArxivDigest.APIKey)
	}
	if cfg.Recommend.MaxPaperAge != 3 {
		t.Errorf("MaxPaperAge = %d, want 3", cfg.Recommend.MaxPaperAge)
	}
}

func TestLoadWithKoanf_MissingAPIKey(t *testing.T) {
	isolate(t)
	t.Setenv("ARXIVDIGEST_API_KEY", "")

	_, err := LoadWithKoanf()
	if err == nil {
		t.Fatal("expected error when submitting without an API key")
	}
	if !strings.Contains(err.Error(), "ARXIVDIGEST_API_KEY") {
		t.Errorf("error = %v, want mention of ARXIVDIGEST_API_KEY", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"S2_API_KEY", "semantic_scholar.api_key"},
		{"RECOMMENDER", "recommend.strategy"},
		{"CACHE_DSN", "cache.dsn"},
		{"ELASTICSEARCH_URL", "search.url"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envTransformFunc(tt.in); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
