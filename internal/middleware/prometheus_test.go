// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/digestrec/internal/metrics"
)

func TestPrometheusMetrics(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/mw-test/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.WriteHeader(http.StatusInternalServerError)
	})
	r.Get("/mw-test/plain", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	tests := []struct {
		name   string
		path   string
		route  string
		status string
	}{
		{"route pattern label", "/mw-test/1", "/mw-test/{id}", "201"},
		{"first status wins", "/mw-test/2", "/mw-test/{id}", "201"},
		{"error status", "/mw-test/missing", "/mw-test/{id}", "404"},
		{"implicit 200", "/mw-test/plain", "/mw-test/plain", "200"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, tt.route, tt.status)
			before := testutil.ToFloat64(counter)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("requests{route=%q,status=%q} delta = %v, want 1", tt.route, tt.status, got)
			}
		})
	}

	if got := testutil.ToFloat64(metrics.HTTPActiveRequests); got != 0 {
		t.Errorf("active requests = %v after all requests finished, want 0", got)
	}
}

func TestRoutePatternWithoutChi(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/bare", nil)
	if got := routePattern(req); got != unmatchedRoute {
		t.Errorf("routePattern() = %q, want %q", got, unmatchedRoute)
	}
}
