// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package breaker wraps sony/gobreaker with logging and Prometheus state
// tracking shared by every outbound client (Semantic Scholar, arXivDigest,
// Elasticsearch).
package breaker

import (
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/digestrec/internal/logging"
	"github.com/tomtom215/digestrec/internal/metrics"
)

// Settings configures a Breaker.
type Settings struct {
	// ConsecutiveFailures trips the breaker. 0 means 5.
	ConsecutiveFailures uint32

	// Interval clears counts while closed. 0 keeps counts until a trip.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing.
	Timeout time.Duration

	// MaxRequests admitted while half-open. 0 means 1.
	MaxRequests uint32

	// IsSuccessful classifies errors that should not count as failures,
	// such as a 404 for an unknown paper. nil counts every error.
	IsSuccessful func(err error) bool
}

// Breaker is a typed circuit breaker. A nil *Breaker runs calls directly.
type Breaker[T any] struct {
	cb   *gobreaker.CircuitBreaker[T]
	name string
}

// New creates a breaker named name and registers its state gauge.
func New[T any](name string, s Settings) *Breaker[T] {
	threshold := s.ConsecutiveFailures
	if threshold == 0 {
		threshold = 5
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().
					Str("breaker", name).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("Opening circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", StateString(from)).
				Str("to", StateString(to)).
				Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, StateString(from), StateString(to)).Inc()
		},
	}
	if s.IsSuccessful != nil {
		st.IsSuccessful = s.IsSuccessful
	}

	return &Breaker[T]{cb: gobreaker.NewCircuitBreaker[T](st), name: name}
}

// Execute runs fn through the breaker.
func (b *Breaker[T]) Execute(fn func() (T, error)) (T, error) {
	if b == nil {
		return fn()
	}
	res, err := b.cb.Execute(fn)
	if err != nil && IsRejection(err) {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return res, err
	}
	if err != nil {
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return res, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	return res, nil
}

// State returns the current state, or closed for a nil breaker.
func (b *Breaker[T]) State() gobreaker.State {
	if b == nil {
		return gobreaker.StateClosed
	}
	return b.cb.State()
}

// IsRejection reports whether err came from the breaker itself rather than
// from the wrapped call.
func IsRejection(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// StateString names a state for logs and metric labels.
func StateString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
