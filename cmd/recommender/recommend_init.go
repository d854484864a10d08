// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/digestrec/internal/api"
	"github.com/tomtom215/digestrec/internal/arxivdigest"
	"github.com/tomtom215/digestrec/internal/breaker"
	"github.com/tomtom215/digestrec/internal/cache"
	"github.com/tomtom215/digestrec/internal/config"
	"github.com/tomtom215/digestrec/internal/ratelimit"
	"github.com/tomtom215/digestrec/internal/recommend"
	"github.com/tomtom215/digestrec/internal/search"
	"github.com/tomtom215/digestrec/internal/semanticscholar"
	"github.com/tomtom215/digestrec/internal/venue"
)

var _ recommend.MetadataSource = (*semanticscholar.Client)(nil)

// components holds everything a recommendation pass needs.
type components struct {
	cache    cache.Backend
	scholar  *semanticscholar.Client
	platform *arxivdigest.Client
	vocab    *venue.Vocabulary
	engine   *recommend.Engine

	scholarBreaker  *breaker.Breaker[[]byte]
	platformBreaker *breaker.Breaker[[]byte]
}

// Close releases the response cache.
func (c *components) Close() error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Close()
}

// purger returns the cache as a purger when the backend supports it.
func (c *components) purger() cache.Purger {
	if c.cache == nil {
		return nil
	}
	p, ok := c.cache.(cache.Purger)
	if !ok {
		return nil
	}
	return p
}

// breakers reports breaker states for the health endpoint.
func (c *components) breakers() map[string]api.StateFunc {
	return map[string]api.StateFunc{
		"semantic_scholar": func() string { return breaker.StateString(c.scholarBreaker.State()) },
		"arxivdigest":      func() string { return breaker.StateString(c.platformBreaker.State()) },
	}
}

// initRecommend builds the engine and its collaborators from cfg.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*components, error) {
	c := &components{}

	if cfg.SemanticScholar.CacheResponses {
		backend, err := cache.Open(ctx, cache.Options{
			Backend: cfg.Cache.Backend,
			Path:    cfg.Cache.Path,
			DSN:     cfg.Cache.DSN,
		})
		if err != nil {
			return nil, fmt.Errorf("open response cache: %w", err)
		}
		c.cache = backend
		logger.Info().
			Str("backend", backend.Name()).
			Str("path", cfg.Cache.Path).
			Msg("response cache opened")
	} else {
		// Concurrent lookups still wait on a filled cache entry instead of
		// repeating the request; nothing outlives the process.
		c.cache = cache.NewMemory()
		logger.Info().Msg("persistent response caching disabled (S2_CACHE_RESPONSES=false), using memory")
	}

	s2 := cfg.SemanticScholar
	if s2.CircuitBreaker.Enabled {
		c.scholarBreaker = semanticscholar.NewBreaker(breaker.Settings{
			ConsecutiveFailures: s2.CircuitBreaker.ConsecutiveFailures,
			Interval:            s2.CircuitBreaker.Interval,
			Timeout:             s2.CircuitBreaker.Timeout,
		})
		c.platformBreaker = arxivdigest.NewBreaker(breaker.Settings{
			ConsecutiveFailures: s2.CircuitBreaker.ConsecutiveFailures,
			Interval:            s2.CircuitBreaker.Interval,
			Timeout:             s2.CircuitBreaker.Timeout,
		})
	}

	c.scholar = semanticscholar.New(semanticscholar.Options{
		BaseURL:               s2.BaseURL,
		APIKey:                s2.APIKey,
		HTTPClient:            &http.Client{Timeout: s2.Timeout},
		Cache:                 c.cache,
		Limiter:               ratelimit.NewSlidingWindow(s2.MaxRequests, s2.WindowSize),
		MaxConcurrentRequests: s2.MaxConcurrentRequests,
		PaperExpiration:       s2.PaperCacheExpiration,
		AuthorExpiration:      s2.AuthorCacheExpiration,
		Breaker:               c.scholarBreaker,
	})

	platform, err := arxivdigest.New(arxivdigest.Options{
		BaseURL:           cfg.ArxivDigest.BaseURL,
		APIKey:            cfg.ArxivDigest.APIKey,
		HTTPClient:        &http.Client{Timeout: cfg.ArxivDigest.Timeout},
		RequestsPerSecond: cfg.ArxivDigest.RequestsPerSecond,
		Breaker:           c.platformBreaker,
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create arxivdigest client: %w", err)
	}
	c.platform = platform

	rc := cfg.Recommend
	blacklist := rc.VenueBlacklist
	if len(blacklist) == 0 {
		blacklist = venue.DefaultBlacklist
	}
	c.vocab = venue.NewVocabulary(blacklist)

	deps := recommend.Dependencies{
		Source:  c.scholar,
		Authors: recommend.NewAuthors(c.scholar, venue.NewBuilder(c.vocab), rc.MaxPaperAge, rc.MinInfluence),
		Explainer: recommend.NewExplainer(c.vocab, recommend.ExplainerOptions{
			MaxVenues:   rc.MaxExplanationVenues,
			MaxTopics:   rc.MaxExplanationTopics,
			MaxPaperAge: rc.MaxPaperAge,
			Seed:        rc.Seed,
		}),
		Articles: platform,
	}

	if rc.Strategy == recommend.StrategyHybrid {
		searcher, err := search.Open(ctx, search.Options{
			Backend: cfg.Search.Backend,
			URL:     cfg.Search.URL,
			Index:   cfg.Search.Index,
			Timeout: cfg.Search.Timeout,
		})
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("open search index: %w", err)
		}
		deps.Searcher = searcher
		logger.Info().
			Str("backend", cfg.Search.Backend).
			Str("index", cfg.Search.Index).
			Msg("search index ready")
	}

	strategy, err := recommend.NewStrategy(rc.Strategy, deps)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.engine, err = recommend.NewEngine(recommend.Options{
		Strategy:           strategy,
		Source:             c.scholar,
		Platform:           platform,
		MaxRecommendations: rc.MaxRecommendations,
		UserConcurrency:    rc.UserConcurrency,
		Submit:             rc.Submit,
	})
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create engine: %w", err)
	}

	logger.Info().
		Str("strategy", rc.Strategy).
		Int("max_recommendations", rc.MaxRecommendations).
		Int("max_paper_age", rc.MaxPaperAge).
		Bool("submit", rc.Submit).
		Bool("breaker", s2.CircuitBreaker.Enabled).
		Msg("recommendation engine initialized")
	return c, nil
}
