// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/digestrec/internal/recommend"
)

type fakeStatus struct {
	runs int64
	last *recommend.RunSummary
}

func (f *fakeStatus) Runs() int64                    { return f.runs }
func (f *fakeStatus) LastRun() *recommend.RunSummary { return f.last }

type fakeVenues []string

func (f fakeVenues) Snapshot() []string { return f }

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
	req.RemoteAddr = "192.0.2.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp APIResponse
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return rec, resp
}

func TestHealth(t *testing.T) {
	started := time.Date(2026, time.March, 10, 6, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		breakers   map[string]StateFunc
		status     *fakeStatus
		wantStatus string
		wantRuns   float64
		wantLast   bool
	}{
		{
			name:       "no dependencies",
			wantStatus: "healthy",
		},
		{
			name: "closed breakers",
			breakers: map[string]StateFunc{
				"semantic_scholar": func() string { return "closed" },
				"arxivdigest":      func() string { return "half-open" },
			},
			status:     &fakeStatus{runs: 2, last: &recommend.RunSummary{StartedAt: started}},
			wantStatus: "healthy",
			wantRuns:   2,
			wantLast:   true,
		},
		{
			name: "open breaker",
			breakers: map[string]StateFunc{
				"semantic_scholar": func() string { return "open" },
			},
			status:     &fakeStatus{runs: 1},
			wantStatus: "degraded",
			wantRuns:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{Breakers: tt.breakers, Version: "test"}
			if tt.status != nil {
				opts.Status = tt.status
			}
			rec, resp := get(t, NewRouter(opts), "/healthz")

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if !resp.Success {
				t.Fatalf("success = false: %+v", resp.Error)
			}
			data := resp.Data.(map[string]any)
			if data["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", data["status"], tt.wantStatus)
			}
			if runs, _ := data["runs"].(float64); runs != tt.wantRuns {
				t.Errorf("runs = %v, want %v", data["runs"], tt.wantRuns)
			}
			if _, ok := data["last_run_at"]; ok != tt.wantLast {
				t.Errorf("last_run_at present = %v, want %v", ok, tt.wantLast)
			}
			if resp.Meta.RequestID == "" {
				t.Error("missing request id")
			}
			if got := rec.Header().Get("X-Request-ID"); got != resp.Meta.RequestID {
				t.Errorf("X-Request-ID = %q, want %q", got, resp.Meta.RequestID)
			}
		})
	}
}

func TestLastRun(t *testing.T) {
	t.Run("no runs", func(t *testing.T) {
		rec, resp := get(t, NewRouter(Options{Status: &fakeStatus{}}), "/api/v1/runs/last")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
		if resp.Error == nil || resp.Error.Code != "NO_RUNS" {
			t.Errorf("error = %+v, want NO_RUNS", resp.Error)
		}
	})

	t.Run("completed run", func(t *testing.T) {
		status := &fakeStatus{runs: 1, last: &recommend.RunSummary{
			RunID:           "run-1",
			Strategy:        recommend.StrategyVenueCopub,
			Users:           3,
			Recommendations: 12,
		}}
		rec, resp := get(t, NewRouter(Options{Status: status}), "/api/v1/runs/last")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		data := resp.Data.(map[string]any)
		if data["run_id"] != "run-1" || data["strategy"] != "venue_copub" || data["recommendations"] != float64(12) {
			t.Errorf("data = %v", data)
		}
	})

	t.Run("not configured", func(t *testing.T) {
		rec, _ := get(t, NewRouter(Options{}), "/api/v1/runs/last")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestVenues(t *testing.T) {
	rec, resp := get(t, NewRouter(Options{Venues: fakeVenues{"acl", "neurips"}}), "/api/v1/venues")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	data := resp.Data.(map[string]any)
	if data["count"] != float64(2) {
		t.Errorf("count = %v, want 2", data["count"])
	}
}

func TestMetricsAndNotFound(t *testing.T) {
	h := NewRouter(Options{})

	rec, _ := get(t, h, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("/metrics missing default collectors")
	}

	rec, resp := get(t, h, "/nope")
	if rec.Code != http.StatusNotFound || resp.Error == nil || resp.Error.Code != "NOT_FOUND" {
		t.Errorf("unknown route: %d %+v", rec.Code, resp.Error)
	}
}

func TestRateLimitByIP(t *testing.T) {
	h := NewRouter(Options{RateLimit: 2})

	for i := 0; i < 2; i++ {
		if rec, _ := get(t, h, "/healthz"); rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d", i+1, rec.Code)
		}
	}
	rec, resp := get(t, h, "/healthz")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if resp.Error == nil || resp.Error.Code != "RATE_LIMITED" {
		t.Errorf("error = %+v", resp.Error)
	}

	// /metrics is not limited.
	if rec, _ := get(t, h, "/metrics"); rec.Code != http.StatusOK {
		t.Errorf("/metrics status = %d", rec.Code)
	}
}
