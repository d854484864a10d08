// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package search is the free-text topic search used by the hybrid
// recommender. Candidate articles are indexed once per run and each user
// topic is then searched against them.
package search

import (
	"context"
	"fmt"
	"time"
)

// Document is one indexed candidate article.
type Document struct {
	ID            string    `json:"-"`
	Title         string    `json:"title"`
	Abstract      string    `json:"abstract"`
	FieldsOfStudy []string  `json:"fieldsOfStudy"`
	Topics        []string  `json:"topics"`
	Date          time.Time `json:"date"`
}

// Hit is a matching document and its relevance score.
type Hit struct {
	ID    string
	Score float64
}

// Searcher indexes documents and runs topic queries over documents dated
// within the last week.
type Searcher interface {
	// EnsureIndex creates the index if it does not exist.
	EnsureIndex(ctx context.Context) error

	// Index adds or replaces documents by ID.
	Index(ctx context.Context, docs []Document) error

	// Search returns matching documents ordered by descending score.
	Search(ctx context.Context, topic string) ([]Hit, error)

	// Name identifies the engine in logs and metrics.
	Name() string
}

// RecentWindow bounds which document dates are searchable.
const RecentWindow = 7 * 24 * time.Hour

// Options selects and configures a Searcher.
type Options struct {
	Backend string
	URL     string
	Index   string
	Timeout time.Duration
}

// Open returns the configured Searcher with its index created.
func Open(ctx context.Context, opts Options) (Searcher, error) {
	var s Searcher
	switch opts.Backend {
	case "", "memory":
		s = NewMemory(nil)
	case "elasticsearch":
		es, err := NewElasticsearch(ElasticsearchOptions{
			URL:     opts.URL,
			Index:   opts.Index,
			Timeout: opts.Timeout,
		})
		if err != nil {
			return nil, err
		}
		s = es
	default:
		return nil, fmt.Errorf("unknown search backend %q", opts.Backend)
	}
	if err := s.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure %s index: %w", s.Name(), err)
	}
	return s, nil
}
