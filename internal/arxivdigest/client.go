// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package arxivdigest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/digestrec/internal/breaker"
	"github.com/tomtom215/digestrec/internal/logging"
	"github.com/tomtom215/digestrec/internal/metrics"
)

// DefaultBaseURL is the public arXivDigest API.
const DefaultBaseURL = "https://api.arxivdigest.org/"

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
	maxErrorBytes  = 512
	maxRetries     = 3
)

// APIError is a non-2xx response from the platform.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arxivdigest: %s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// Options configures a Client.
type Options struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client

	// RequestsPerSecond throttles calls. 0 disables throttling.
	RequestsPerSecond float64

	// Breaker guards every call. nil disables it.
	Breaker *breaker.Breaker[[]byte]
}

// Client talks to the arXivDigest API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *breaker.Breaker[[]byte]
}

// New creates a platform client.
func New(opts Options) (*Client, error) {
	base := opts.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}

	c := &Client{
		baseURL:    strings.TrimRight(base, "/"),
		apiKey:     opts.APIKey,
		httpClient: hc,
		breaker:    opts.Breaker,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return c, nil
}

// NewBreaker returns a breaker for platform calls. Client errors other than
// 429 do not count as failures.
func NewBreaker(s breaker.Settings) *breaker.Breaker[[]byte] {
	s.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return true
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests
		}
		return false
	}
	return breaker.New[[]byte]("arxivdigest", s)
}

// request describes one API call.
type request struct {
	method   string
	endpoint string // metrics label, e.g. "user_info"
	path     string
	query    url.Values
	body     any
}

// getJSON performs a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	body, err := c.call(ctx, request{method: http.MethodGet, endpoint: endpoint, path: path, query: query})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

// call throttles, runs the request through the breaker and records metrics.
func (c *Client) call(ctx context.Context, r request) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doWithRetry(ctx, r)
	})
	metrics.RecordPlatformRequest(r.endpoint, statusLabel(err))
	return body, err
}

// doWithRetry retries HTTP 429 responses with exponential backoff, honoring
// Retry-After when the server sends it.
func (c *Client) doWithRetry(ctx context.Context, r request) ([]byte, error) {
	baseDelay := time.Second
	for attempt := 0; ; attempt++ {
		body, retryAfter, err := c.do(ctx, r)
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests || attempt == maxRetries {
			return body, err
		}

		delay := baseDelay * (1 << attempt)
		if retryAfter > 0 {
			delay = retryAfter
		}
		logging.Ctx(ctx).Warn().
			Str("endpoint", r.endpoint).
			Dur("retry_delay", delay).
			Int("attempt", attempt+1).
			Int("max_retries", maxRetries).
			Msg("arXivDigest API rate limited (HTTP 429), retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

func (c *Client) do(ctx context.Context, r request) ([]byte, time.Duration, error) {
	reqURL := c.baseURL + r.path
	if len(r.query) > 0 {
		reqURL += "?" + r.query.Encode()
	}

	var payload io.Reader = http.NoBody
	if r.body != nil {
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, 0, fmt.Errorf("encode %s: %w", r.endpoint, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, reqURL, payload)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s: %w", r.method, r.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", r.endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(body)
		if len(msg) > maxErrorBytes {
			msg = msg[:maxErrorBytes] + "..."
		}
		return nil, retryAfter(resp.Header.Get("Retry-After")), &APIError{
			Method:     r.method,
			Endpoint:   r.path,
			StatusCode: resp.StatusCode,
			Body:       msg,
		}
	}
	return body, 0, nil
}

// retryAfter parses a Retry-After header given in seconds.
func retryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func statusLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return strconv.Itoa(apiErr.StatusCode)
	}
	if breaker.IsRejection(err) {
		return "rejected"
	}
	return "error"
}
