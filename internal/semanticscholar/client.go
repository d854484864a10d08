// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package semanticscholar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/sync/semaphore"

	"github.com/tomtom215/digestrec/internal/breaker"
	"github.com/tomtom215/digestrec/internal/cache"
	"github.com/tomtom215/digestrec/internal/logging"
	"github.com/tomtom215/digestrec/internal/metrics"
)

const (
	// DefaultBaseURL is the public v1 endpoint.
	DefaultBaseURL = "https://api.semanticscholar.org/v1"

	// PartnerBaseURL is used when an API key is configured.
	PartnerBaseURL = "https://partner.semanticscholar.org/v1"

	DefaultMaxConcurrentRequests = 100
	DefaultPaperExpiration       = 30
	DefaultAuthorExpiration      = 7

	kindPaper  = "paper"
	kindAuthor = "author"

	maxBodyBytes  = 32 << 20
	maxErrorBytes = 512
)

// Limiter admits outbound requests. ratelimit.SlidingWindow satisfies it.
type Limiter interface {
	Acquire(ctx context.Context) error
}

// Options configures a Client. Zero values select the defaults.
type Options struct {
	// BaseURL overrides the endpoint chosen from APIKey.
	BaseURL string
	APIKey  string

	HTTPClient *http.Client

	// Cache stores payloads between runs. nil keeps them in process memory.
	Cache cache.Backend

	// Limiter throttles network calls. nil disables throttling.
	Limiter Limiter

	MaxConcurrentRequests int

	// Cache lifetimes in days.
	PaperExpiration  int
	AuthorExpiration int

	// Breaker wraps HTTP calls. nil calls the API directly.
	Breaker *breaker.Breaker[[]byte]

	// Now is the clock used for cache expiry and paper age.
	Now func() time.Time
}

// Client is a rate-limited, cache-backed, deduplicating Semantic Scholar
// client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	cache      cache.Backend
	limiter    Limiter
	sem        *semaphore.Weighted
	breaker    *breaker.Breaker[[]byte]
	now        func() time.Time

	paperExpiration  int
	authorExpiration int

	locks *keyedMutex
	memo  *errorMemo

	requests    atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	errors      atomic.Int64
}

// New creates a client.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
		if opts.APIKey != "" {
			baseURL = PartnerBaseURL
		}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	concurrency := opts.MaxConcurrentRequests
	if concurrency <= 0 {
		concurrency = DefaultMaxConcurrentRequests
	}

	paperExp := opts.PaperExpiration
	if paperExp <= 0 {
		paperExp = DefaultPaperExpiration
	}
	authorExp := opts.AuthorExpiration
	if authorExp <= 0 {
		authorExp = DefaultAuthorExpiration
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	// Deduplication relies on the first caller filling the cache.
	var store cache.Backend = cache.NewMemory()
	if opts.Cache != nil {
		store = opts.Cache
	}

	return &Client{
		baseURL:          baseURL,
		apiKey:           opts.APIKey,
		httpClient:       httpClient,
		cache:            store,
		limiter:          opts.Limiter,
		sem:              semaphore.NewWeighted(int64(concurrency)),
		breaker:          opts.Breaker,
		now:              now,
		paperExpiration:  paperExp,
		authorExpiration: authorExp,
		locks:            newKeyedMutex(),
		memo:             newErrorMemo(),
	}
}

// NewBreaker returns a breaker for Client that ignores 404s and cancellations.
func NewBreaker(s breaker.Settings) *breaker.Breaker[[]byte] {
	s.IsSuccessful = func(err error) bool {
		return err == nil ||
			errors.Is(err, ErrNotFound) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded)
	}
	return breaker.New[[]byte]("semantic_scholar", s)
}

// Paper looks up a paper by Semantic Scholar id.
func (c *Client) Paper(ctx context.Context, id string) (*Paper, error) {
	var p Paper
	if err := c.getJSON(ctx, kindPaper, "/paper/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ArxivPaper looks up a paper by arXiv id.
func (c *Client) ArxivPaper(ctx context.Context, arxivID string) (*Paper, error) {
	var p Paper
	if err := c.getJSON(ctx, kindPaper, "/paper/arXiv:"+url.PathEscape(arxivID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Author looks up an author by Semantic Scholar id.
func (c *Client) Author(ctx context.Context, id string) (*Author, error) {
	var a Author
	if err := c.getJSON(ctx, kindAuthor, "/author/"+url.PathEscape(id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Stats returns the current counter values.
func (c *Client) Stats() Stats {
	return Stats{
		Requests:    c.requests.Load(),
		CacheHits:   c.cacheHits.Load(),
		CacheMisses: c.cacheMisses.Load(),
		Errors:      c.errors.Load(),
	}
}

func (c *Client) getJSON(ctx context.Context, kind, endpoint string, v any) error {
	data, err := c.get(ctx, kind, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// get runs the lookup pipeline for one endpoint and returns the raw payload.
func (c *Client) get(ctx context.Context, kind, endpoint string) ([]byte, error) {
	c.requests.Add(1)

	if err := c.memo.get(endpoint); err != nil {
		metrics.RecordS2Lookup(kind, false, "memoized")
		return nil, err
	}

	unlock, err := c.locks.Lock(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// The lock holder ahead of us may have just failed.
	if err := c.memo.get(endpoint); err != nil {
		metrics.RecordS2Lookup(kind, false, "memoized")
		return nil, err
	}

	rec, err := c.cache.Get(ctx, endpoint)
	switch {
	case err == nil && rec.ValidOn(c.now()):
		c.cacheHits.Add(1)
		metrics.RecordS2Lookup(kind, true, "")
		return rec.Data, nil
	case err != nil && !errors.Is(err, cache.ErrNotFound):
		c.errors.Add(1)
		metrics.RecordS2Lookup(kind, false, "cache")
		return nil, fmt.Errorf("read cache for %s: %w", endpoint, err)
	}

	c.cacheMisses.Add(1)
	data, err := c.fetch(ctx, kind, endpoint)
	if err != nil {
		c.errors.Add(1)
		switch {
		case breaker.IsRejection(err):
			metrics.RecordS2Lookup(kind, false, "breaker")
		case ctx.Err() != nil:
			metrics.RecordS2Lookup(kind, false, "cancelled")
		case errors.Is(err, ErrNotFound):
			c.memo.put(endpoint, err)
			metrics.RecordS2Lookup(kind, false, "not_found")
		default:
			c.memo.put(endpoint, err)
			metrics.RecordS2Lookup(kind, false, "http")
		}
		logging.Ctx(ctx).Debug().Err(err).Str("endpoint", endpoint).Msg("Semantic Scholar lookup failed")
		return nil, err
	}
	metrics.RecordS2Lookup(kind, false, "")

	rec = cache.NewRecord(data, c.now(), c.expiration(kind))
	if err := c.cache.Set(ctx, endpoint, rec); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("endpoint", endpoint).Msg("Failed to cache Semantic Scholar response")
	}
	return data, nil
}

// fetch takes a concurrency token, waits for the limiter and performs the
// HTTP call through the breaker.
func (c *Client) fetch(ctx context.Context, kind, endpoint string) ([]byte, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	if c.limiter != nil {
		if err := c.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	data, err := c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, endpoint)
	})
	metrics.RecordS2Miss(kind, time.Since(start))
	return data, err
}

func (c *Client) do(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       truncate(string(body), maxErrorBytes),
		}
	}
	return body, nil
}

func (c *Client) expiration(kind string) int {
	if kind == kindAuthor {
		return c.authorExpiration
	}
	return c.paperExpiration
}
