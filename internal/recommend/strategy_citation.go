// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"context"

	"github.com/tomtom215/digestrec/internal/semanticscholar"
)

// CitationStrategy scores a paper by how often the user cited its most
// cited author.
type CitationStrategy struct {
	deps Dependencies
}

func (s *CitationStrategy) Name() string { return StrategyPrevCited }

// PrepareUser builds the user's citation table.
func (s *CitationStrategy) PrepareUser(ctx context.Context, user User) error {
	_, err := s.deps.Authors.Citations(ctx, user.S2ID)
	return err
}

func (s *CitationStrategy) Score(ctx context.Context, user User, articleID string) (ScoredCandidate, error) {
	counts, err := s.deps.Authors.Citations(ctx, user.S2ID)
	if err != nil {
		return ScoredCandidate{}, err
	}
	paper, err := citablePaper(ctx, s.deps.Source, user, articleID)
	if err != nil {
		return ScoredCandidate{}, err
	}

	author, cites := mostCited(paper.Authors, counts)
	return scored(articleID, float64(cites), func() string {
		return s.deps.Explainer.Citation(author.Name, cites)
	}), nil
}

// citablePaper loads the paper and rejects papers without authors and
// papers the user wrote.
func citablePaper(ctx context.Context, src MetadataSource, user User, articleID string) (*semanticscholar.Paper, error) {
	paper, err := candidatePaper(ctx, src, articleID)
	if err != nil {
		return nil, err
	}
	if len(paper.Authors) == 0 {
		return nil, ErrNoAuthors
	}
	if paper.AuthoredBy(user.S2ID) {
		return nil, ErrSkip
	}
	return paper, nil
}
