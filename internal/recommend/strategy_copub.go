// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"context"
	"sync"

	"github.com/tomtom215/digestrec/internal/semanticscholar"
	"github.com/tomtom215/digestrec/internal/venue"
)

// CoPubStrategy scores a paper by the venue similarity between the user and
// the paper's most similar author.
type CoPubStrategy struct {
	deps Dependencies
}

func (s *CoPubStrategy) Name() string { return StrategyVenueCopub }

// PrepareUser builds the user's venue profile.
func (s *CoPubStrategy) PrepareUser(ctx context.Context, user User) error {
	_, err := s.deps.Authors.Profile(ctx, user.S2ID)
	return err
}

func (s *CoPubStrategy) Score(ctx context.Context, user User, articleID string) (ScoredCandidate, error) {
	me, err := s.deps.Authors.Profile(ctx, user.S2ID)
	if err != nil {
		return ScoredCandidate{}, err
	}
	paper, err := candidatePaper(ctx, s.deps.Source, articleID)
	if err != nil {
		return ScoredCandidate{}, err
	}

	profiles := authorProfiles(ctx, s.deps.Authors, paper.Authors)

	found := false
	var best float64
	var bestName string
	var bestRep venue.Representation
	for i, p := range profiles {
		if p == nil {
			continue
		}
		sim := PaddedCosine(me.Representation.Counts, p.Representation.Counts)
		if !found || sim > best {
			found = true
			best, bestName, bestRep = sim, paper.Authors[i].Name, p.Representation
		}
	}
	if !found {
		return ScoredCandidate{}, ErrSkip
	}

	return scored(articleID, best, func() string {
		return s.deps.Explainer.CoPublication(me.Representation, bestRep, bestName)
	}), nil
}

// authorProfiles loads the profiles of a paper's resolvable authors
// concurrently. Entries are nil for unresolved or failed authors.
func authorProfiles(ctx context.Context, authors *Authors, refs []semanticscholar.AuthorRef) []*venue.Profile {
	out := make([]*venue.Profile, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		if ref.AuthorID == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := authors.Profile(ctx, ref.AuthorID)
			if err == nil {
				out[i] = &p
			}
		}()
	}
	wg.Wait()
	return out
}
