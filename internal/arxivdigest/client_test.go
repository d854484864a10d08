// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package arxivdigest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/tomtom215/digestrec/internal/breaker"
	"github.com/tomtom215/digestrec/internal/metrics"
	"github.com/tomtom215/digestrec/internal/recommend"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// fakePlatform serves canned responses per path and records requests.
type fakePlatform struct {
	routes map[string]string

	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
}

func newFakePlatform(t *testing.T, routes map[string]string) (*fakePlatform, *Client) {
	t.Helper()
	f := &fakePlatform{routes: routes}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/", APIKey: "secret", HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f, c
}

func (f *fakePlatform) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	resp, ok := f.routes[r.Method+" "+r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, resp)
}

func (f *fakePlatform) last() (*http.Request, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.requests)
	return f.requests[n-1], f.bodies[n-1]
}

func TestClient_UserCountAndArticles(t *testing.T) {
	f, c := newFakePlatform(t, map[string]string{
		"GET /":         `{"info":{"total_users":42,"total_articles":7}}`,
		"GET /articles": `{"articles":{"article_ids":["2401.00001","2401.00002"]}}`,
	})
	ctx := context.Background()

	n, err := c.UserCount(ctx)
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if n != 42 {
		t.Errorf("UserCount = %d, want 42", n)
	}
	req, _ := f.last()
	if got := req.Header.Get("api-key"); got != "secret" {
		t.Errorf("api-key header = %q, want secret", got)
	}

	ids, err := c.ArticleIDs(ctx)
	if err != nil {
		t.Fatalf("ArticleIDs: %v", err)
	}
	if want := []string{"2401.00001", "2401.00002"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("ArticleIDs = %v, want %v", ids, want)
	}
}

func TestClient_UserIDs(t *testing.T) {
	f, c := newFakePlatform(t, map[string]string{
		"GET /users": `{"users":{"num":2,"user_ids":[3,17]}}`,
	})

	ids, err := c.UserIDs(context.Background(), 100)
	if err != nil {
		t.Fatalf("UserIDs: %v", err)
	}
	if want := []string{"3", "17"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("UserIDs = %v, want %v", ids, want)
	}
	req, _ := f.last()
	if got := req.URL.Query().Get("offset"); got != "100" {
		t.Errorf("offset = %q, want 100", got)
	}
}

func TestClient_UserInfo(t *testing.T) {
	f, c := newFakePlatform(t, map[string]string{
		"GET /user_info": `{"user_info":{
			"3":{"name":"Ada Lovelace","topics":["graphs","nlp"],"semantic_scholar_profile":"https://www.semanticscholar.org/author/Ada/123"},
			"17":{"first_name":"Alan","last_name":"Turing","topics":[],"semantic_scholar_profile":""}
		}}`,
	})

	users, err := c.UserInfo(context.Background(), []string{"3", "17"})
	if err != nil {
		t.Fatalf("UserInfo: %v", err)
	}
	want := map[string]recommend.User{
		"3": {
			ID:          "3",
			Name:        "Ada Lovelace",
			ProfileLink: "https://www.semanticscholar.org/author/Ada/123",
			Topics:      []string{"graphs", "nlp"},
		},
		"17": {ID: "17", Name: "Alan Turing", Topics: []string{}},
	}
	if !reflect.DeepEqual(users, want) {
		t.Errorf("UserInfo = %+v, want %+v", users, want)
	}
	req, _ := f.last()
	if got := req.URL.Query().Get("ids"); got != "3,17" {
		t.Errorf("ids = %q, want 3,17", got)
	}

	empty, err := c.UserInfo(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("UserInfo(nil) = %v, %v", empty, err)
	}
}

func TestClient_ArticleData(t *testing.T) {
	_, c := newFakePlatform(t, map[string]string{
		"GET /article_data": `{"article_data":{
			"2401.00001":{"title":"Graphs","abstract":"About graphs.","authors":[{"firstname":"Ada","lastname":"Lovelace"}],"date":"2026-03-09"},
			"2401.00002":{"title":"Odd","abstract":"","authors":[],"date":"yesterday"}
		}}`,
	})

	data, err := c.ArticleData(context.Background(), []string{"2401.00001", "2401.00002"})
	if err != nil {
		t.Fatalf("ArticleData: %v", err)
	}
	got := data["2401.00001"]
	if got.Title != "Graphs" || got.Abstract != "About graphs." {
		t.Errorf("article = %+v", got)
	}
	if !reflect.DeepEqual(got.Authors, []string{"Ada Lovelace"}) {
		t.Errorf("Authors = %v", got.Authors)
	}
	if want := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC); !got.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", got.Date, want)
	}
	if !data["2401.00002"].Date.IsZero() {
		t.Errorf("unparseable date should be zero, got %v", data["2401.00002"].Date)
	}
}

func TestClient_InterleavedArticles(t *testing.T) {
	f, c := newFakePlatform(t, map[string]string{
		"GET /recommendations/articles": `{"users":{"3":{"2401.00001":[{"score":1}],"2401.00002":[]},"17":{}}}`,
	})

	got, err := c.InterleavedArticles(context.Background(), []string{"3", "17"})
	if err != nil {
		t.Fatalf("InterleavedArticles: %v", err)
	}
	want := map[string]map[string]struct{}{
		"3":  {"2401.00001": {}, "2401.00002": {}},
		"17": {},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("InterleavedArticles = %v, want %v", got, want)
	}
	req, _ := f.last()
	if got := req.URL.Query().Get("user_id"); got != "3,17" {
		t.Errorf("user_id = %q, want 3,17", got)
	}
}

func TestClient_SendRecommendations(t *testing.T) {
	f, c := newFakePlatform(t, map[string]string{
		"POST /recommendations/articles": `{"success":true}`,
	})

	recs := map[string][]recommend.ScoredCandidate{
		"3": {{ArticleID: "2401.00001", Score: 0.5, Explanation: "Because."}},
	}
	if err := c.SendRecommendations(context.Background(), recs); err != nil {
		t.Fatalf("SendRecommendations: %v", err)
	}

	req, body := f.last()
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var payload struct {
		Recommendations map[string][]struct {
			ArticleID   string  `json:"article_id"`
			Score       float64 `json:"score"`
			Explanation string  `json:"explanation"`
		} `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("decode body %q: %v", body, err)
	}
	got := payload.Recommendations["3"]
	if len(got) != 1 || got[0].ArticleID != "2401.00001" || got[0].Score != 0.5 || got[0].Explanation != "Because." {
		t.Errorf("payload = %+v", payload)
	}
}

func TestClient_APIError(t *testing.T) {
	_, c := newFakePlatform(t, map[string]string{})
	before := testutil.ToFloat64(metrics.PlatformRequests.WithLabelValues("articles", "404"))

	_, err := c.ArticleIDs(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Endpoint != "/articles" {
		t.Errorf("APIError = %+v", apiErr)
	}
	after := testutil.ToFloat64(metrics.PlatformRequests.WithLabelValues("articles", "404"))
	if after-before != 1 {
		t.Errorf("404 counter moved by %v, want 1", after-before)
	}
}

func TestClient_RetriesRateLimited(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"info":{"total_users":5}}`)
	}))
	defer srv.Close()

	c, err := New(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	start := time.Now()
	n, err := c.UserCount(context.Background())
	if err != nil {
		t.Fatalf("UserCount: %v", err)
	}
	if n != 5 || calls.Load() != 2 {
		t.Errorf("n = %d, calls = %d; want 5, 2", n, calls.Load())
	}
	if time.Since(start) > 5*time.Second {
		t.Error("retry did not honor Retry-After")
	}
}

func TestClient_Throttled(t *testing.T) {
	_, base := newFakePlatform(t, map[string]string{"GET /": `{"info":{"total_users":1}}`})
	c, err := New(Options{BaseURL: base.baseURL, HTTPClient: base.httpClient, RequestsPerSecond: 20})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.UserCount(context.Background()); err != nil {
			t.Fatalf("UserCount: %v", err)
		}
	}
	// burst 1 at 20/s: the 2nd and 3rd calls each wait ~50ms
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 calls took %v, want >= 80ms", elapsed)
	}
}

func TestClient_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(Options{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Breaker:    NewBreaker(breaker.Settings{ConsecutiveFailures: 2, Timeout: time.Minute}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := c.ArticleIDs(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	}
	_, err = c.ArticleIDs(context.Background())
	if !breaker.IsRejection(err) {
		t.Errorf("err = %v, want breaker rejection", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls, want 2", calls.Load())
	}
}

func TestNewBreaker_ClientErrorsSucceed(t *testing.T) {
	b := NewBreaker(breaker.Settings{ConsecutiveFailures: 1, Timeout: time.Minute})
	notFound := &APIError{StatusCode: http.StatusNotFound}
	for i := 0; i < 3; i++ {
		_, _ = b.Execute(func() ([]byte, error) { return nil, notFound })
	}
	if _, err := b.Execute(func() ([]byte, error) { return nil, nil }); err != nil {
		t.Errorf("breaker opened on client errors: %v", err)
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2026-03-09", false},
		{"Mon, 09 Mar 2026 00:00:00 GMT", false},
		{"2026-03-09T00:00:00Z", false},
		{"2026-03-09 00:00:00", false},
		{"9 March", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDate(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.in, err)
			}
			if !got.Equal(want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{" 1 ", time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.in); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
