// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/digestrec/internal/logging"
	"github.com/tomtom215/digestrec/internal/metrics"
	"github.com/tomtom215/digestrec/internal/semanticscholar"
)

// User outcomes recorded per batch.
const (
	outcomeNoS2ID         = "no_s2_id"
	outcomeAuthorNotFound = "author_lookup_failed"
	outcomePrepareFailed  = "prepare_failed"
	outcomeEmpty          = "empty"
	outcomeRecommended    = "recommended"
)

// Options configures an Engine.
type Options struct {
	Strategy Strategy
	Source   MetadataSource

	// Platform is required by Run only.
	Platform Platform

	// MaxRecommendations per user. Defaults to 10.
	MaxRecommendations int

	// UserConcurrency bounds how many users of a batch are ranked at once.
	// Defaults to 16.
	UserConcurrency int

	// Submit sends each batch to the platform.
	Submit bool
}

// Engine coordinates recommendation runs. It is safe for concurrent use.
type Engine struct {
	strategy Strategy
	source   MetadataSource
	platform Platform
	logger   zerolog.Logger

	maxRecommendations int
	userConcurrency    int
	submit             bool

	runs    atomic.Int64
	lastMu  sync.RWMutex
	lastRun *RunSummary
}

// RunSummary describes one completed Run.
type RunSummary struct {
	RunID           string                `json:"run_id"`
	Strategy        string                `json:"strategy"`
	Articles        int                   `json:"articles"`
	Users           int                   `json:"users"`
	UsersWithRecs   int                   `json:"users_with_recommendations"`
	Recommendations int                   `json:"recommendations"`
	Batches         int                   `json:"batches"`
	Submitted       int                   `json:"submitted_batches"`
	StartedAt       time.Time             `json:"started_at"`
	Duration        time.Duration         `json:"duration"`
	Fetch           semanticscholar.Stats `json:"fetch"`
}

// NewEngine creates an engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Strategy == nil {
		return nil, errors.New("strategy is required")
	}
	if opts.Source == nil {
		return nil, errors.New("metadata source is required")
	}
	if opts.MaxRecommendations <= 0 {
		opts.MaxRecommendations = 10
	}
	if opts.UserConcurrency <= 0 {
		opts.UserConcurrency = 16
	}

	return &Engine{
		strategy:           opts.Strategy,
		source:             opts.Source,
		platform:           opts.Platform,
		logger:             logging.With().Str("component", "recommend").Str("strategy", opts.Strategy.Name()).Logger(),
		maxRecommendations: opts.MaxRecommendations,
		userConcurrency:    opts.UserConcurrency,
		submit:             opts.Submit,
	}, nil
}

// Runs returns how many runs have started.
func (e *Engine) Runs() int64 { return e.runs.Load() }

// LastRun returns the summary of the most recent successful Run, or nil.
func (e *Engine) LastRun() *RunSummary {
	e.lastMu.RLock()
	defer e.lastMu.RUnlock()
	return e.lastRun
}

// log returns the engine logger enriched with the context's run id.
func (e *Engine) log(ctx context.Context) *zerolog.Logger {
	l := e.logger
	if id := logging.RunIDFromContext(ctx); id != "" {
		l = l.With().Str("run_id", id).Logger()
	}
	return &l
}

// RecommendBatch ranks articleIDs for every user. Articles in a user's
// interleaved set and non-positive scores are dropped; each user keeps at
// most MaxRecommendations by descending score. Users without any
// recommendation are left out of the result.
func (e *Engine) RecommendBatch(
	ctx context.Context,
	users map[string]User,
	interleaved map[string]map[string]struct{},
	articleIDs []string,
) (map[string][]ScoredCandidate, error) {
	if p, ok := e.strategy.(Preparer); ok {
		if err := p.Prepare(ctx, articleIDs); err != nil {
			return nil, fmt.Errorf("prepare %s: %w", e.strategy.Name(), err)
		}
	}

	ids := make([]string, 0, len(users))
	for id := range users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var mu sync.Mutex
	out := make(map[string][]ScoredCandidate)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.userConcurrency)
	for _, id := range ids {
		user := users[id]
		if user.ID == "" {
			user.ID = id
		}
		g.Go(func() error {
			recs := e.rankUser(gctx, user, interleaved[id], articleIDs)
			if len(recs) > 0 {
				mu.Lock()
				out[id] = recs
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// rankUser scores every article for one user.
func (e *Engine) rankUser(ctx context.Context, user User, exclude map[string]struct{}, articleIDs []string) []ScoredCandidate {
	log := e.log(ctx).With().Str("user_id", user.ID).Logger()
	strategy := e.strategy.Name()

	user.S2ID = ExtractS2ID(user.ProfileLink)
	if user.S2ID == "" {
		log.Info().Msg("User skipped (no Semantic Scholar ID provided)")
		metrics.RecordUserOutcome(strategy, outcomeNoS2ID, 0)
		return nil
	}

	if _, err := e.source.Author(ctx, user.S2ID); err != nil {
		log.Error().Err(err).Str("s2_id", user.S2ID).Msg("Unable to get author details for user")
		metrics.RecordUserOutcome(strategy, outcomeAuthorNotFound, 0)
		return nil
	}

	if p, ok := e.strategy.(UserPreparer); ok {
		if err := p.PrepareUser(ctx, user); err != nil {
			log.Warn().Err(err).Str("s2_id", user.S2ID).Msg("Unable to prepare user")
			metrics.RecordUserOutcome(strategy, outcomePrepareFailed, 0)
			return nil
		}
	}

	results := make([]*ScoredCandidate, len(articleIDs))
	var g errgroup.Group
	for i, articleID := range articleIDs {
		g.Go(func() error {
			c, err := e.strategy.Score(ctx, user, articleID)
			if err != nil {
				if !errors.Is(err, ErrSkip) && !errors.Is(err, ErrNoAuthors) {
					log.Debug().Err(err).Str("article_id", articleID).Msg("Unable to score article")
				}
				return nil
			}
			results[i] = &c
			return nil
		})
	}
	_ = g.Wait()

	recs := make([]ScoredCandidate, 0, len(results))
	for _, c := range results {
		if c == nil || c.Score <= 0 {
			continue
		}
		if _, shown := exclude[c.ArticleID]; shown {
			continue
		}
		recs = append(recs, *c)
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > e.maxRecommendations {
		recs = recs[:e.maxRecommendations]
	}

	outcome := outcomeRecommended
	if len(recs) == 0 {
		outcome = outcomeEmpty
	}
	metrics.RecordUserOutcome(strategy, outcome, len(recs))
	log.Info().Int("recommendations", len(recs)).Msg("Ranked articles for user")
	return recs
}

// Run performs one full recommendation pass: fetch candidates, page through
// every user, rank each batch and submit it when enabled.
func (e *Engine) Run(ctx context.Context) (_ *RunSummary, err error) {
	if e.platform == nil {
		return nil, errors.New("platform is required to run")
	}

	ctx = logging.ContextWithNewRunID(ctx)
	start := time.Now()
	e.runs.Add(1)
	log := e.log(ctx)

	summary := &RunSummary{
		RunID:     logging.RunIDFromContext(ctx),
		Strategy:  e.strategy.Name(),
		StartedAt: start,
	}
	defer func() {
		metrics.RecordRun(e.strategy.Name(), time.Since(start), err)
	}()

	articleIDs, err := e.platform.ArticleIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("get article ids: %w", err)
	}
	summary.Articles = len(articleIDs)
	log.Info().Int("articles", len(articleIDs)).Msg("Fetched candidate articles")

	total, err := e.platform.UserCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("get user count: %w", err)
	}
	log.Info().Int("users", total).Msg("Recommending articles for users")

	for offset := 0; offset < total; {
		userIDs, err := e.platform.UserIDs(ctx, offset)
		if err != nil {
			return nil, fmt.Errorf("get user ids at offset %d: %w", offset, err)
		}
		if len(userIDs) == 0 {
			break
		}

		users, err := e.platform.UserInfo(ctx, userIDs)
		if err != nil {
			return nil, fmt.Errorf("get user info: %w", err)
		}
		interleaved, err := e.platform.InterleavedArticles(ctx, userIDs)
		if err != nil {
			return nil, fmt.Errorf("get interleaved articles: %w", err)
		}

		batch, err := e.RecommendBatch(ctx, users, interleaved, articleIDs)
		if err != nil {
			return nil, fmt.Errorf("recommend batch at offset %d: %w", offset, err)
		}
		summary.Batches++
		summary.UsersWithRecs += len(batch)
		for _, recs := range batch {
			summary.Recommendations += len(recs)
		}

		if e.submit && len(batch) > 0 {
			if err := e.platform.SendRecommendations(ctx, batch); err != nil {
				return nil, fmt.Errorf("send recommendations: %w", err)
			}
			summary.Submitted++
		}

		offset += len(userIDs)
		summary.Users = offset
		log.Info().Int("processed", offset).Int("total", total).Msg("Processed user batch")
	}

	summary.Fetch = e.source.Stats()
	log.Info().
		Int("users", summary.Users).
		Int("recommendations", summary.Recommendations).
		Int64("cache_hits", summary.Fetch.CacheHits).
		Int64("cache_misses", summary.Fetch.CacheMisses).
		Int64("errors", summary.Fetch.Errors).
		Msg("Finished recommending")

	summary.Duration = time.Since(start)

	// Readers of LastRun get their own copy; summary stays with the caller.
	published := *summary
	e.lastMu.Lock()
	e.lastRun = &published
	e.lastMu.Unlock()
	return summary, nil
}

// ExtractS2ID returns the last path segment of a Semantic Scholar profile
// URL, e.g. "1741101" for https://www.semanticscholar.org/author/Name/1741101.
// It returns "" when the link has no usable id.
func ExtractS2ID(profileLink string) string {
	if profileLink == "" {
		return ""
	}
	u, err := url.Parse(profileLink)
	if err != nil {
		return ""
	}
	p := u.Path
	if i := strings.LastIndex(p, "/"); i >= 0 {
		p = p[i+1:]
	}
	return p
}
