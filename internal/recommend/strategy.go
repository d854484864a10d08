// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"context"
	"fmt"

	"github.com/tomtom215/digestrec/internal/search"
	"github.com/tomtom215/digestrec/internal/semanticscholar"
)

// Strategy names.
const (
	StrategyVenueCopub      = "venue_copub"
	StrategyPrevCited       = "prev_cited"
	StrategyPrevCitedCollab = "prev_cited_collab"
	StrategyWeightedInf     = "weighted_inf"
	StrategyHybrid          = "hybrid"
	StrategyFrequentVenues  = "frequent_venues"
)

// Dependencies are the collaborators a strategy may need.
type Dependencies struct {
	Source    MetadataSource
	Authors   *Authors
	Explainer *Explainer

	// Searcher and Articles are required by the hybrid strategy only.
	Searcher search.Searcher
	Articles ArticleSource
}

// NewStrategy returns the strategy registered under name.
func NewStrategy(name string, deps Dependencies) (Strategy, error) {
	if deps.Source == nil || deps.Authors == nil || deps.Explainer == nil {
		return nil, fmt.Errorf("strategy %s: source, authors and explainer are required", name)
	}
	switch name {
	case StrategyVenueCopub:
		return &CoPubStrategy{deps: deps}, nil
	case StrategyPrevCited:
		return &CitationStrategy{deps: deps}, nil
	case StrategyPrevCitedCollab:
		return &CollaboratorStrategy{deps: deps}, nil
	case StrategyWeightedInf:
		return &InfluenceStrategy{deps: deps}, nil
	case StrategyFrequentVenues:
		return &FrequentVenueStrategy{deps: deps}, nil
	case StrategyHybrid:
		if deps.Searcher == nil || deps.Articles == nil {
			return nil, fmt.Errorf("strategy %s: searcher and article source are required", name)
		}
		return NewHybridStrategy(deps), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

// candidatePaper loads the Semantic Scholar record for an arXiv article.
func candidatePaper(ctx context.Context, src MetadataSource, articleID string) (*semanticscholar.Paper, error) {
	paper, err := src.ArxivPaper(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("paper %s: %w", articleID, err)
	}
	return paper, nil
}

// scored builds a candidate whose explanation is only rendered for a
// positive score.
func scored(articleID string, score float64, explain func() string) ScoredCandidate {
	c := ScoredCandidate{ArticleID: articleID, Score: score}
	if score > 0 {
		c.Explanation = explain()
	}
	return c
}
