// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package ratelimit bounds the number of outbound calls made in any
// trailing time window.
//
// SlidingWindow admits at most N grants in every interval of length W.
// Unlike a token bucket (golang.org/x/time/rate) it never lets a burst of
// N+1 calls land inside one window after an idle period, which is what a
// fixed "100 requests per 5 minutes" quota requires.
//
// Acquire blocks on a timer while the window is saturated. It has no timeout
// of its own: with context.Background() a caller waits until admitted.
package ratelimit
