// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"context"

	"github.com/tomtom215/digestrec/internal/logging"
	"github.com/tomtom215/digestrec/internal/semanticscholar"
)

// CollaboratorStrategy scores a paper by how often any of the user's
// co-authors cited one of its authors.
type CollaboratorStrategy struct {
	deps Dependencies
}

func (s *CollaboratorStrategy) Name() string { return StrategyPrevCitedCollab }

// PrepareUser loads the user's collaborators.
func (s *CollaboratorStrategy) PrepareUser(ctx context.Context, user User) error {
	_, err := s.deps.Authors.Collaborators(ctx, user.S2ID)
	return err
}

func (s *CollaboratorStrategy) Score(ctx context.Context, user User, articleID string) (ScoredCandidate, error) {
	collaborators, err := s.deps.Authors.Collaborators(ctx, user.S2ID)
	if err != nil {
		return ScoredCandidate{}, err
	}
	paper, err := candidatePaper(ctx, s.deps.Source, articleID)
	if err != nil {
		return ScoredCandidate{}, err
	}
	if len(paper.Authors) == 0 {
		return ScoredCandidate{}, ErrNoAuthors
	}

	var (
		best    int
		cited   semanticscholar.AuthorRef
		citedBy semanticscholar.AuthorRef
	)
	for _, collab := range collaborators {
		counts, err := s.deps.Authors.Citations(ctx, collab.AuthorID)
		if err != nil {
			logging.Ctx(ctx).Debug().Err(err).Str("collaborator", collab.AuthorID).Msg("Skipping collaborator")
			continue
		}
		others := withoutAuthor(paper.Authors, collab.AuthorID)
		if len(others) == 0 {
			continue
		}
		author, n := mostCited(others, counts)
		if n > best {
			best, cited, citedBy = n, author, collab
		}
	}

	return scored(articleID, float64(best), func() string {
		return s.deps.Explainer.Collaborator(cited.Name, citedBy.Name, best)
	}), nil
}

func withoutAuthor(authors []semanticscholar.AuthorRef, id string) []semanticscholar.AuthorRef {
	out := make([]semanticscholar.AuthorRef, 0, len(authors))
	for _, a := range authors {
		if a.AuthorID != id {
			out = append(out, a)
		}
	}
	return out
}
