// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import "context"

// FrequentVenueStrategy scores a paper by how often the user published at
// its venue.
type FrequentVenueStrategy struct {
	deps Dependencies
}

func (s *FrequentVenueStrategy) Name() string { return StrategyFrequentVenues }

// PrepareUser builds the user's venue profile.
func (s *FrequentVenueStrategy) PrepareUser(ctx context.Context, user User) error {
	_, err := s.deps.Authors.Profile(ctx, user.S2ID)
	return err
}

func (s *FrequentVenueStrategy) Score(ctx context.Context, user User, articleID string) (ScoredCandidate, error) {
	me, err := s.deps.Authors.Profile(ctx, user.S2ID)
	if err != nil {
		return ScoredCandidate{}, err
	}
	paper, err := candidatePaper(ctx, s.deps.Source, articleID)
	if err != nil {
		return ScoredCandidate{}, err
	}
	if paper.Venue == "" {
		return ScoredCandidate{}, ErrSkip
	}
	i, ok := s.deps.Authors.builder.Vocabulary().Index(paper.Venue)
	if !ok {
		return ScoredCandidate{}, ErrSkip
	}

	count := me.Representation.At(i)
	return scored(articleID, float64(count), func() string {
		return s.deps.Explainer.FrequentVenue(paper.Venue, count)
	}), nil
}
