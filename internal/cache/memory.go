// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package cache

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// Memory is an in-process Backend. Records live until the process exits.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

// Exists implements Backend.
func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[key]
	return ok, nil
}

// Get implements Backend. The returned payload is a copy.
func (m *Memory) Get(_ context.Context, key string) (Record, error) {
	m.mu.RLock()
	rec, ok := m.records[key]
	m.mu.RUnlock()
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Data = bytes.Clone(rec.Data)
	return rec, nil
}

// Set implements Backend.
func (m *Memory) Set(_ context.Context, key string, rec Record) error {
	rec.Data = bytes.Clone(rec.Data)
	m.mu.Lock()
	m.records[key] = rec
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Purge implements Purger.
func (m *Memory) Purge(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, rec := range m.records {
		if !rec.ValidOn(now) {
			delete(m.records, k)
			n++
		}
	}
	return n, nil
}

// Close implements Backend.
func (m *Memory) Close() error { return nil }

// Name implements Backend.
func (m *Memory) Name() string { return "memory" }
