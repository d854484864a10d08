// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package search

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/tomtom215/digestrec/internal/metrics"
)

// Memory is an in-process TF-IDF index. Scores are the cosine similarity
// between the topic and each document's TF-IDF vector.
type Memory struct {
	now func() time.Time

	mu      sync.RWMutex
	docs    map[string]Document
	vectors map[string]map[string]float64
	idf     map[string]float64
	dirty   bool
}

// NewMemory creates an empty index. now defaults to time.Now.
func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		now:  now,
		docs: make(map[string]Document),
	}
}

// Name implements Searcher.
func (m *Memory) Name() string { return "memory" }

// EnsureIndex implements Searcher.
func (m *Memory) EnsureIndex(context.Context) error { return nil }

// Index implements Searcher.
func (m *Memory) Index(_ context.Context, docs []Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	m.dirty = true
	metrics.RecordSearch(m.Name(), "index", nil)
	return nil
}

// Len returns the number of indexed documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Search implements Searcher.
func (m *Memory) Search(_ context.Context, topic string) ([]Hit, error) {
	m.rebuild()

	m.mu.RLock()
	defer m.mu.RUnlock()

	query := m.queryVector(tokenize(topic))
	if len(query) == 0 {
		metrics.RecordSearch(m.Name(), "search", nil)
		return nil, nil
	}

	cutoff := m.now().Add(-RecentWindow)
	var hits []Hit
	for id, vec := range m.vectors {
		if m.docs[id].Date.Before(cutoff) {
			continue
		}
		if s := cosine(query, vec); s > 0 {
			hits = append(hits, Hit{ID: id, Score: s})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	metrics.RecordSearch(m.Name(), "search", nil)
	return hits, nil
}

// rebuild recomputes IDF and document vectors after Index.
func (m *Memory) rebuild() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty && m.vectors != nil {
		return
	}

	terms := make(map[string][]string, len(m.docs))
	df := make(map[string]int)
	for id, d := range m.docs {
		tokens := tokenize(d.text())
		terms[id] = tokens
		seen := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			if _, ok := seen[t]; !ok {
				df[t]++
				seen[t] = struct{}{}
			}
		}
	}

	n := float64(len(m.docs))
	m.idf = make(map[string]float64, len(df))
	for t, c := range df {
		m.idf[t] = math.Log(n/float64(c)) + 1
	}

	m.vectors = make(map[string]map[string]float64, len(terms))
	for id, tokens := range terms {
		m.vectors[id] = m.weigh(tokens)
	}
	m.dirty = false
}

func (m *Memory) queryVector(tokens []string) map[string]float64 {
	known := tokens[:0:0]
	for _, t := range tokens {
		if _, ok := m.idf[t]; ok {
			known = append(known, t)
		}
	}
	return m.weigh(known)
}

// weigh builds a TF-IDF vector. Terms without an IDF are dropped.
func (m *Memory) weigh(tokens []string) map[string]float64 {
	if len(tokens) == 0 {
		return nil
	}
	tf := make(map[string]int)
	for _, t := range tokens {
		tf[t]++
	}
	vec := make(map[string]float64, len(tf))
	for t, c := range tf {
		if idf, ok := m.idf[t]; ok {
			vec[t] = float64(c) / float64(len(tokens)) * idf
		}
	}
	return vec
}

func cosine(a, b map[string]float64) float64 {
	var dot, na, nb float64
	for t, w := range a {
		dot += w * b[t]
		na += w * w
	}
	for _, w := range b {
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func (d Document) text() string {
	parts := make([]string, 0, 2+len(d.FieldsOfStudy)+len(d.Topics))
	parts = append(parts, d.Title, d.Abstract)
	parts = append(parts, d.FieldsOfStudy...)
	parts = append(parts, d.Topics...)
	return strings.Join(parts, " ")
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
