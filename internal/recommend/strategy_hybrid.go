// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/digestrec/internal/logging"
	"github.com/tomtom215/digestrec/internal/search"
	"github.com/tomtom215/digestrec/internal/semanticscholar"
)

// topicScores maps a user topic to document relevance by article id.
type topicScores map[string]map[string]float64

// HybridStrategy multiplies the topic relevance of a paper for the user's
// topics by how often the user cited the paper's most cited author.
type HybridStrategy struct {
	deps Dependencies

	mu      sync.Mutex
	indexed map[string]struct{}
	topics  *lazyStore[topicScores]
}

// NewHybridStrategy creates the hybrid strategy. deps.Searcher and
// deps.Articles must be set.
func NewHybridStrategy(deps Dependencies) *HybridStrategy {
	return &HybridStrategy{
		deps:    deps,
		indexed: make(map[string]struct{}),
		topics:  newLazyStore[topicScores](),
	}
}

func (s *HybridStrategy) Name() string { return StrategyHybrid }

// Prepare indexes candidate articles that have not been indexed yet. Topic
// results computed against the previous index are dropped.
func (s *HybridStrategy) Prepare(ctx context.Context, articleIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fresh []string
	for _, id := range articleIDs {
		if _, ok := s.indexed[id]; !ok {
			fresh = append(fresh, id)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	logging.Ctx(ctx).Info().Int("articles", len(fresh)).Str("searcher", s.deps.Searcher.Name()).Msg("Indexing candidate articles")

	papers := make([]*semanticscholar.Paper, len(fresh))
	var g errgroup.Group
	for i, id := range fresh {
		g.Go(func() error {
			p, err := s.deps.Source.ArxivPaper(ctx, id)
			if err == nil {
				papers[i] = p
			}
			return nil
		})
	}
	_ = g.Wait()

	data, err := s.deps.Articles.ArticleData(ctx, fresh)
	if err != nil {
		return fmt.Errorf("article data: %w", err)
	}

	docs := make([]search.Document, 0, len(fresh))
	for i, id := range fresh {
		p := papers[i]
		ad, ok := data[id]
		if p == nil || !ok {
			continue
		}
		docs = append(docs, search.Document{
			ID:            id,
			Title:         p.Title,
			Abstract:      p.Abstract,
			FieldsOfStudy: p.FieldsOfStudy,
			Topics:        p.TopicNames(),
			Date:          ad.Date,
		})
	}

	if err := s.deps.Searcher.Index(ctx, docs); err != nil {
		return fmt.Errorf("index articles: %w", err)
	}
	for _, id := range fresh {
		s.indexed[id] = struct{}{}
	}
	s.topics = newLazyStore[topicScores]()
	return nil
}

// PrepareUser loads the user's citation table and topic search results.
func (s *HybridStrategy) PrepareUser(ctx context.Context, user User) error {
	if _, err := s.deps.Authors.Citations(ctx, user.S2ID); err != nil {
		return err
	}
	_, err := s.topicScores(ctx, user)
	return err
}

func (s *HybridStrategy) topicScores(ctx context.Context, user User) (topicScores, error) {
	s.mu.Lock()
	store := s.topics
	s.mu.Unlock()

	return store.get(ctx, user.ID, func(ctx context.Context) (topicScores, error) {
		scores := make(topicScores, len(user.Topics))
		for _, topic := range user.Topics {
			hits, err := s.deps.Searcher.Search(ctx, topic)
			if err != nil {
				return nil, fmt.Errorf("search %q: %w", topic, err)
			}
			byDoc := make(map[string]float64, len(hits))
			for _, h := range hits {
				byDoc[h.ID] = h.Score
			}
			scores[topic] = byDoc
		}
		return scores, nil
	})
}

type topicRelevance struct {
	topic string
	score float64
}

func (s *HybridStrategy) Score(ctx context.Context, user User, articleID string) (ScoredCandidate, error) {
	counts, err := s.deps.Authors.Citations(ctx, user.S2ID)
	if err != nil {
		return ScoredCandidate{}, err
	}
	scores, err := s.topicScores(ctx, user)
	if err != nil {
		return ScoredCandidate{}, err
	}
	paper, err := citablePaper(ctx, s.deps.Source, user, articleID)
	if err != nil {
		return ScoredCandidate{}, err
	}

	ranked := make([]topicRelevance, 0, len(user.Topics))
	for _, topic := range user.Topics {
		ranked = append(ranked, topicRelevance{topic: topic, score: scores[topic][articleID]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if k := s.deps.Explainer.MaxTopics(); len(ranked) > k {
		ranked = ranked[:k]
	}

	var relevance float64
	var named []string
	for _, r := range ranked {
		relevance += r.score
		if r.score > 0 {
			named = append(named, r.topic)
		}
	}

	author, cites := mostCited(paper.Authors, counts)
	return scored(articleID, relevance*float64(cites), func() string {
		return s.deps.Explainer.Topic(named, author.Name, cites)
	}), nil
}
