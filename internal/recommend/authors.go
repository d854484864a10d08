// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/digestrec/internal/semanticscholar"
	"github.com/tomtom215/digestrec/internal/venue"
)

// lazyStore builds each key's value once and keeps it for the life of the
// process. Concurrent callers for the same key wait for the first build.
// Failed builds are not kept.
type lazyStore[T any] struct {
	mu      sync.Mutex
	entries map[string]*lazyEntry[T]
}

type lazyEntry[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func newLazyStore[T any]() *lazyStore[T] {
	return &lazyStore[T]{entries: make(map[string]*lazyEntry[T])}
}

func (s *lazyStore[T]) get(ctx context.Context, key string, build func(context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok {
		s.mu.Unlock()
		select {
		case <-e.done:
			return e.value, e.err
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
	e = &lazyEntry[T]{done: make(chan struct{})}
	s.entries[key] = e
	s.mu.Unlock()

	defer close(e.done)
	e.value, e.err = build(ctx)
	if e.err != nil {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
	}
	return e.value, e.err
}

func (s *lazyStore[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Authors holds the per-author state shared by all strategies.
type Authors struct {
	source       MetadataSource
	builder      *venue.Builder
	maxPaperAge  int
	minInfluence int

	profiles      *lazyStore[venue.Profile]
	citations     *lazyStore[map[string]int]
	collaborators *lazyStore[[]semanticscholar.AuthorRef]
}

// NewAuthors creates the per-author stores. Only papers from the last
// maxPaperAge years count.
func NewAuthors(source MetadataSource, builder *venue.Builder, maxPaperAge, minInfluence int) *Authors {
	return &Authors{
		source:        source,
		builder:       builder,
		maxPaperAge:   maxPaperAge,
		minInfluence:  minInfluence,
		profiles:      newLazyStore[venue.Profile](),
		citations:     newLazyStore[map[string]int](),
		collaborators: newLazyStore[[]semanticscholar.AuthorRef](),
	}
}

// Profile returns the author's venue representation and influence.
func (a *Authors) Profile(ctx context.Context, authorID string) (venue.Profile, error) {
	return a.profiles.get(ctx, authorID, func(ctx context.Context) (venue.Profile, error) {
		papers, err := a.source.AuthorPapers(ctx, authorID, a.maxPaperAge)
		if err != nil {
			return venue.Profile{}, fmt.Errorf("papers of %s: %w", authorID, err)
		}
		return a.builder.BuildProfile(papers, a.minInfluence), nil
	})
}

// Citations returns how many times the author cited each other author in
// the reference lists of their recent papers.
func (a *Authors) Citations(ctx context.Context, authorID string) (map[string]int, error) {
	return a.citations.get(ctx, authorID, func(ctx context.Context) (map[string]int, error) {
		papers, err := a.source.AuthorPapers(ctx, authorID, a.maxPaperAge)
		if err != nil {
			return nil, fmt.Errorf("papers of %s: %w", authorID, err)
		}
		counts := make(map[string]int)
		for _, p := range papers {
			for _, ref := range p.References {
				for _, cited := range ref.Authors {
					if cited.AuthorID != "" {
						counts[cited.AuthorID]++
					}
				}
			}
		}
		return counts, nil
	})
}

// Collaborators returns the author's recent co-authors in order of first
// appearance.
func (a *Authors) Collaborators(ctx context.Context, authorID string) ([]semanticscholar.AuthorRef, error) {
	return a.collaborators.get(ctx, authorID, func(ctx context.Context) ([]semanticscholar.AuthorRef, error) {
		papers, err := a.source.AuthorPapers(ctx, authorID, a.maxPaperAge)
		if err != nil {
			return nil, fmt.Errorf("papers of %s: %w", authorID, err)
		}
		seen := make(map[string]struct{})
		var out []semanticscholar.AuthorRef
		for _, p := range papers {
			for _, co := range p.Authors {
				if co.AuthorID == "" || co.AuthorID == authorID {
					continue
				}
				if _, ok := seen[co.AuthorID]; ok {
					continue
				}
				seen[co.AuthorID] = struct{}{}
				out = append(out, co)
			}
		}
		return out, nil
	})
}

// mostCited returns the first author with the highest count in counts.
func mostCited(authors []semanticscholar.AuthorRef, counts map[string]int) (semanticscholar.AuthorRef, int) {
	best := authors[0]
	bestCount := counts[best.AuthorID]
	for _, au := range authors[1:] {
		if c := counts[au.AuthorID]; c > bestCount {
			best, bestCount = au, c
		}
	}
	return best, bestCount
}
