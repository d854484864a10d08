// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package venue

import (
	"github.com/tomtom215/digestrec/internal/metrics"
	"github.com/tomtom215/digestrec/internal/semanticscholar"
)

// Builder builds representations against a shared Vocabulary.
type Builder struct {
	vocab *Vocabulary
}

// NewBuilder creates a builder over vocab.
func NewBuilder(vocab *Vocabulary) *Builder {
	return &Builder{vocab: vocab}
}

// Vocabulary returns the shared vocabulary.
func (b *Builder) Vocabulary() *Vocabulary {
	return b.vocab
}

// Build counts papers per venue, growing the vocabulary with venues seen for
// the first time. Papers without a venue and blacklisted venues are skipped.
// The result has one entry per vocabulary venue at the end of the build.
func (b *Builder) Build(papers []*semanticscholar.Paper) Representation {
	b.vocab.mu.Lock()
	defer b.vocab.mu.Unlock()
	return b.buildLocked(papers)
}

// BuildProfile builds the representation and the per-venue influence in one
// pass under the vocabulary lock. Venues whose summed influence is below
// minInfluence are left out of the influence map.
func (b *Builder) BuildProfile(papers []*semanticscholar.Paper, minInfluence int) Profile {
	b.vocab.mu.Lock()
	defer b.vocab.mu.Unlock()

	rep := b.buildLocked(papers)

	sums := make(map[int]int)
	for _, p := range papers {
		if p == nil || p.Venue == "" {
			continue
		}
		if i, ok := b.vocab.index[p.Venue]; ok {
			sums[i] += p.InfluentialCitationCount
		}
	}

	inf := make(Influence, len(sums))
	for i, total := range sums {
		if total >= minInfluence {
			inf[i] = total
		}
	}

	metrics.AuthorProfilesBuilt.Inc()
	return Profile{Representation: rep, Influence: inf}
}

func (b *Builder) buildLocked(papers []*semanticscholar.Paper) Representation {
	v := b.vocab
	var counts []int
	for _, p := range papers {
		if p == nil || p.Venue == "" || v.Blacklisted(p.Venue) {
			continue
		}
		i := v.indexLocked(p.Venue)
		if i >= len(counts) {
			counts = append(counts, make([]int, i+1-len(counts))...)
		}
		counts[i]++
	}

	size := len(v.venues)
	if len(counts) < size {
		counts = append(counts, make([]int, size-len(counts))...)
	}
	return Representation{Counts: counts, VocabSize: size}
}
