// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/digestrec/internal/metrics"
)

// SlidingWindow is a sliding-window admission limiter.
//
// Grant times are kept in a ring of length capacity. The ring slot at head
// is always the oldest grant, so admission is safe exactly when that grant
// is at least one window old (or the ring is not yet full).
//
// Safe for concurrent use by any number of waiters. No fairness: a waiter
// that wakes late may lose its slot to a newer caller.
type SlidingWindow struct {
	mu       sync.Mutex
	grants   []time.Time
	head     int
	size     int
	capacity int
	window   time.Duration
	now      func() time.Time

	granted atomic.Int64
	waited  atomic.Int64
}

// Stats is a snapshot of limiter activity.
type Stats struct {
	Grants int64 // total admissions
	Waits  int64 // admissions that had to wait at least once
}

// NewSlidingWindow returns a limiter admitting capacity grants per window.
// Non-positive arguments are clamped to 1 grant per second.
func NewSlidingWindow(capacity int, window time.Duration) *SlidingWindow {
	if capacity <= 0 {
		capacity = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &SlidingWindow{
		grants:   make([]time.Time, capacity),
		capacity: capacity,
		window:   window,
		now:      time.Now,
	}
}

// Acquire blocks until a grant is admitted or ctx is done.
func (sw *SlidingWindow) Acquire(ctx context.Context) error {
	start := sw.now()
	waited := false

	for {
		wait, ok := sw.tryGrant()
		if ok {
			sw.granted.Add(1)
			if waited {
				sw.waited.Add(1)
				metrics.RateLimitWait.Observe(sw.now().Sub(start).Seconds())
			}
			return nil
		}

		waited = true
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// tryGrant records a grant if the window has room. Otherwise it returns how
// long until the oldest grant leaves the window.
func (sw *SlidingWindow) tryGrant() (time.Duration, bool) {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	now := sw.now()
	if sw.size < sw.capacity {
		sw.grants[(sw.head+sw.size)%sw.capacity] = now
		sw.size++
		return 0, true
	}

	oldest := sw.grants[sw.head]
	if expiry := oldest.Add(sw.window); now.Before(expiry) {
		return expiry.Sub(now), false
	}

	// Ring is full: overwrite the expired oldest slot and advance head.
	sw.grants[sw.head] = now
	sw.head = (sw.head + 1) % sw.capacity
	return 0, true
}

// InWindow reports how many grants fall inside the trailing window.
func (sw *SlidingWindow) InWindow() int {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	cutoff := sw.now().Add(-sw.window)
	n := 0
	for i := 0; i < sw.size; i++ {
		if sw.grants[(sw.head+i)%sw.capacity].After(cutoff) {
			n++
		}
	}
	return n
}

// Stats returns counters since construction.
func (sw *SlidingWindow) Stats() Stats {
	return Stats{Grants: sw.granted.Load(), Waits: sw.waited.Load()}
}
