// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/digestrec/internal/metrics"
)

// Options selects and locates a backend.
type Options struct {
	Backend string // memory, badger, duckdb, mysql
	Path    string
	DSN     string
}

// Purger is implemented by backends that can drop expired records.
type Purger interface {
	Purge(ctx context.Context, now time.Time) (int64, error)
}

// Open constructs the configured backend wrapped with metrics.
// An unreachable or unopenable backend is returned as an error; callers
// treat it as a startup failure.
func Open(ctx context.Context, opts Options) (Backend, error) {
	var (
		b   Backend
		err error
	)
	switch opts.Backend {
	case "", "memory":
		b = NewMemory()
	case "badger":
		b, err = OpenBadger(opts.Path)
	case "duckdb":
		b, err = OpenDuckDB(ctx, opts.Path)
	case "mysql":
		b, err = OpenMySQL(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(b), nil
}

// Instrument wraps b so every call is counted in metrics.
func Instrument(b Backend) Backend {
	if _, ok := b.(*instrumented); ok {
		return b
	}
	return &instrumented{Backend: b}
}

type instrumented struct {
	Backend
}

func (i *instrumented) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := i.Backend.Exists(ctx, key)
	metrics.RecordCacheOperation(i.Name(), "exists", err)
	return ok, err
}

func (i *instrumented) Get(ctx context.Context, key string) (Record, error) {
	rec, err := i.Backend.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		metrics.RecordCacheOperation(i.Name(), "get", nil)
	} else {
		metrics.RecordCacheOperation(i.Name(), "get", err)
	}
	return rec, err
}

func (i *instrumented) Set(ctx context.Context, key string, rec Record) error {
	err := i.Backend.Set(ctx, key, rec)
	metrics.RecordCacheOperation(i.Name(), "set", err)
	return err
}

// Purge forwards to the wrapped backend when it supports purging.
func (i *instrumented) Purge(ctx context.Context, now time.Time) (int64, error) {
	p, ok := i.Backend.(Purger)
	if !ok {
		return 0, nil
	}
	n, err := p.Purge(ctx, now)
	metrics.RecordCacheOperation(i.Name(), "purge", err)
	return n, err
}
