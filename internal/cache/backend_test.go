// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecordValidOn(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

	tests := []struct {
		name       string
		expiration time.Time
		want       bool
	}{
		{"expires today", time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), true},
		{"expires tomorrow", time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"expired yesterday", time.Date(2026, 3, 13, 0, 0, 0, 0, time.UTC), false},
		{"expired yesterday late", time.Date(2026, 3, 13, 23, 59, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{Expiration: tt.expiration}
			if got := rec.ValidOn(today); got != tt.want {
				t.Errorf("ValidOn() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewRecord(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 30, 18, 0, 0, 0, time.UTC)
	rec := NewRecord([]byte(`{"paperId":"p1"}`), now, 30)

	want := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	if !rec.Expiration.Equal(want) {
		t.Errorf("Expiration = %v, want %v", rec.Expiration, want)
	}
	if !rec.ValidOn(now.AddDate(0, 0, 30)) {
		t.Error("record should be valid on its expiration date")
	}
	if rec.ValidOn(now.AddDate(0, 0, 31)) {
		t.Error("record should be invalid the day after expiration")
	}
}

// backendFactories lists the engines that run without external services.
func backendFactories(t *testing.T) map[string]func() Backend {
	t.Helper()
	return map[string]func() Backend{
		"memory": func() Backend { return NewMemory() },
		"badger": func() Backend {
			b, err := OpenBadger("")
			if err != nil {
				t.Fatalf("OpenBadger() error = %v", err)
			}
			return b
		},
		"badger-dir": func() Backend {
			b, err := OpenBadger(t.TempDir())
			if err != nil {
				t.Fatalf("OpenBadger() error = %v", err)
			}
			return b
		},
		"duckdb": func() Backend {
			b, err := OpenDuckDB(context.Background(), "")
			if err != nil {
				t.Fatalf("OpenDuckDB() error = %v", err)
			}
			return b
		},
	}
}

func TestBackends_RoundTrip(t *testing.T) {
	for name, open := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := Instrument(open())
			defer b.Close()

			exists, err := b.Exists(ctx, "/paper/p1")
			if err != nil || exists {
				t.Fatalf("Exists() on empty backend = (%v, %v), want (false, nil)", exists, err)
			}
			if _, err := b.Get(ctx, "/paper/p1"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get() on empty backend error = %v, want ErrNotFound", err)
			}

			exp := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
			first := Record{Expiration: exp, Data: []byte(`{"paperId":"p1","venue":"ICML"}`)}
			if err := b.Set(ctx, "/paper/p1", first); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			exists, err = b.Exists(ctx, "/paper/p1")
			if err != nil || !exists {
				t.Fatalf("Exists() after Set = (%v, %v), want (true, nil)", exists, err)
			}

			got, err := b.Get(ctx, "/paper/p1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !got.Expiration.Equal(exp) {
				t.Errorf("Expiration = %v, want %v", got.Expiration, exp)
			}
			if string(got.Data) != string(first.Data) {
				t.Errorf("Data = %s, want %s", got.Data, first.Data)
			}

			// Upsert replaces both fields.
			second := Record{Expiration: exp.AddDate(0, 0, 7), Data: []byte(`{"paperId":"p1","venue":"NeurIPS"}`)}
			if err := b.Set(ctx, "/paper/p1", second); err != nil {
				t.Fatalf("second Set() error = %v", err)
			}
			got, err = b.Get(ctx, "/paper/p1")
			if err != nil {
				t.Fatalf("Get() after upsert error = %v", err)
			}
			if string(got.Data) != string(second.Data) || !got.Expiration.Equal(second.Expiration) {
				t.Errorf("Get() after upsert = %+v, want %+v", got, second)
			}
		})
	}
}

func TestBackends_StaleRecordReadable(t *testing.T) {
	for name, open := range backendFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := open()
			defer b.Close()

			stale := Record{Expiration: Day(time.Now()).AddDate(0, 0, -3), Data: []byte(`{}`)}
			if err := b.Set(ctx, "/author/a1", stale); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			got, err := b.Get(ctx, "/author/a1")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.ValidOn(time.Now()) {
				t.Error("stale record reported valid")
			}
		})
	}
}

func TestPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	duck, err := OpenDuckDB(ctx, "")
	if err != nil {
		t.Fatalf("OpenDuckDB() error = %v", err)
	}
	backends := map[string]Backend{"memory": NewMemory(), "duckdb": duck}

	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			defer b.Close()
			p := Instrument(b).(Purger)

			_ = b.Set(ctx, "old", Record{Expiration: Day(now).AddDate(0, 0, -1), Data: []byte(`1`)})
			_ = b.Set(ctx, "today", Record{Expiration: Day(now), Data: []byte(`2`)})

			n, err := p.Purge(ctx, now)
			if err != nil {
				t.Fatalf("Purge() error = %v", err)
			}
			if n != 1 {
				t.Errorf("Purge() removed %d, want 1", n)
			}
			if ok, _ := b.Exists(ctx, "old"); ok {
				t.Error("expired record survived Purge")
			}
			if ok, _ := b.Exists(ctx, "today"); !ok {
				t.Error("record expiring today was purged")
			}
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, Options{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if b.Name() != "memory" {
		t.Errorf("Name() = %q, want memory", b.Name())
	}
	b.Close()

	b, err = Open(ctx, Options{Backend: "duckdb", Path: t.TempDir() + "/cache.duckdb"})
	if err != nil {
		t.Fatalf("Open(duckdb) error = %v", err)
	}
	b.Close()

	if _, err := Open(ctx, Options{Backend: "mongodb"}); err == nil {
		t.Error("Open(mongodb) error = nil, want unknown backend error")
	}
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	data := []byte(`{"a":1}`)
	_ = m.Set(ctx, "k", Record{Expiration: time.Now(), Data: data})
	data[2] = 'b'

	got, _ := m.Get(ctx, "k")
	if string(got.Data) != `{"a":1}` {
		t.Errorf("stored record mutated through caller slice: %s", got.Data)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}
