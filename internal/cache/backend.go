// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package cache

import (
	"context"
	"errors"
	"time"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("cache: key not found")

// Backend is a TTL key-value store for API payloads.
type Backend interface {
	// Exists reports whether key holds a record, valid or not.
	Exists(ctx context.Context, key string) (bool, error)

	// Get returns the record for key or ErrNotFound.
	Get(ctx context.Context, key string) (Record, error)

	// Set inserts or replaces the record for key.
	Set(ctx context.Context, key string, rec Record) error

	// Close releases the engine's resources.
	Close() error

	// Name identifies the engine in logs and metrics.
	Name() string
}

// Record is one cached payload with its expiration date.
type Record struct {
	Expiration time.Time       `json:"expiration"`
	Data       json.RawMessage `json:"data"`
}

// NewRecord wraps data with an expiration maxAgeDays after now's date.
func NewRecord(data []byte, now time.Time, maxAgeDays int) Record {
	return Record{
		Expiration: Day(now).AddDate(0, 0, maxAgeDays),
		Data:       json.RawMessage(data),
	}
}

// ValidOn reports whether the record is still usable on the date of now.
// Records expiring today are valid.
func (r Record) ValidOn(now time.Time) bool {
	return !Day(r.Expiration).Before(Day(now))
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
