// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"context"

	"github.com/tomtom215/digestrec/internal/venue"
)

// InfluenceStrategy weights venue similarity by the author's influence at
// the venues the user publishes at.
type InfluenceStrategy struct {
	deps Dependencies
}

func (s *InfluenceStrategy) Name() string { return StrategyWeightedInf }

// PrepareUser builds the user's venue profile.
func (s *InfluenceStrategy) PrepareUser(ctx context.Context, user User) error {
	_, err := s.deps.Authors.Profile(ctx, user.S2ID)
	return err
}

func (s *InfluenceStrategy) Score(ctx context.Context, user User, articleID string) (ScoredCandidate, error) {
	me, err := s.deps.Authors.Profile(ctx, user.S2ID)
	if err != nil {
		return ScoredCandidate{}, err
	}
	paper, err := candidatePaper(ctx, s.deps.Source, articleID)
	if err != nil {
		return ScoredCandidate{}, err
	}
	if paper.AuthoredBy(user.S2ID) {
		return ScoredCandidate{}, ErrSkip
	}

	myVenues := me.Representation.NonZero()
	profiles := authorProfiles(ctx, s.deps.Authors, paper.Authors)

	var best float64
	var bestName string
	var bestProfile venue.Profile
	for i, p := range profiles {
		if p == nil {
			continue
		}
		score := float64(p.Influence.Sum(myVenues)) * PaddedCosine(me.Representation.Counts, p.Representation.Counts)
		if score > best {
			best, bestName, bestProfile = score, paper.Authors[i].Name, *p
		}
	}

	return scored(articleID, best, func() string {
		return s.deps.Explainer.Influence(me.Representation, bestProfile.Representation, bestName, bestProfile.Influence)
	}), nil
}
