// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package breaker

import (
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/digestrec/internal/metrics"
)

var errUpstream = errors.New("upstream 503")
var errNotFound = errors.New("404")

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New[int]("test-trip", Settings{ConsecutiveFailures: 3, Timeout: time.Hour})

	for i := 0; i < 3; i++ {
		if _, err := b.Execute(func() (int, error) { return 0, errUpstream }); !errors.Is(err, errUpstream) {
			t.Fatalf("call %d error = %v, want upstream error", i, err)
		}
	}

	if b.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", StateString(b.State()))
	}

	called := false
	_, err := b.Execute(func() (int, error) { called = true; return 1, nil })
	if !IsRejection(err) {
		t.Fatalf("error = %v, want breaker rejection", err)
	}
	if called {
		t.Error("wrapped function ran while breaker was open")
	}
	if got := testutil.ToFloat64(metrics.CircuitBreakerState.WithLabelValues("test-trip")); got != 2 {
		t.Errorf("state gauge = %v, want 2", got)
	}
}

func TestBreaker_IsSuccessfulIgnoresExpectedErrors(t *testing.T) {
	b := New[string]("test-notfound", Settings{
		ConsecutiveFailures: 2,
		Timeout:             time.Hour,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFound)
		},
	})

	for i := 0; i < 10; i++ {
		_, _ = b.Execute(func() (string, error) { return "", errNotFound })
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed after only not-found errors", StateString(b.State()))
	}
}

func TestBreaker_NilRunsDirectly(t *testing.T) {
	t.Parallel()

	var b *Breaker[int]
	got, err := b.Execute(func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Errorf("Execute() = (%d, %v), want (42, nil)", got, err)
	}
	if b.State() != gobreaker.StateClosed {
		t.Error("nil breaker should report closed")
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := map[gobreaker.State]string{
		gobreaker.StateClosed:   "closed",
		gobreaker.StateHalfOpen: "half-open",
		gobreaker.StateOpen:     "open",
		gobreaker.State(99):     "unknown",
	}
	for state, want := range tests {
		if got := StateString(state); got != want {
			t.Errorf("StateString(%d) = %q, want %q", state, got, want)
		}
	}
}
