// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/digestrec/internal/semanticscholar"
)

var (
	// ErrSkip means the strategy produces no candidate for the article.
	ErrSkip = errors.New("recommend: article skipped")

	// ErrNoAuthors is returned for articles without any listed author.
	ErrNoAuthors = errors.New("recommend: article has no authors")
)

// User is an arXivDigest user as seen by the recommender.
type User struct {
	ID          string
	Name        string
	ProfileLink string
	Topics      []string

	// S2ID is the Semantic Scholar author id, set by the engine from
	// ProfileLink.
	S2ID string
}

// ScoredCandidate is one recommendation. Explanation is empty iff Score <= 0.
type ScoredCandidate struct {
	ArticleID   string  `json:"article_id"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// ArticleData is platform-side metadata for a candidate article.
type ArticleData struct {
	ArticleID string
	Title     string
	Abstract  string
	Authors   []string
	Date      time.Time
}

// Platform is the arXivDigest API as used by Engine.Run.
type Platform interface {
	ArticleIDs(ctx context.Context) ([]string, error)
	UserCount(ctx context.Context) (int, error)
	UserIDs(ctx context.Context, offset int) ([]string, error)
	UserInfo(ctx context.Context, ids []string) (map[string]User, error)
	InterleavedArticles(ctx context.Context, ids []string) (map[string]map[string]struct{}, error)
	SendRecommendations(ctx context.Context, recs map[string][]ScoredCandidate) error
}

// ArticleSource provides platform metadata for candidate articles.
type ArticleSource interface {
	ArticleData(ctx context.Context, ids []string) (map[string]ArticleData, error)
}

// MetadataSource is the subset of the Semantic Scholar client the
// strategies need. *semanticscholar.Client satisfies it.
type MetadataSource interface {
	ArxivPaper(ctx context.Context, arxivID string) (*semanticscholar.Paper, error)
	Author(ctx context.Context, id string) (*semanticscholar.Author, error)
	AuthorPapers(ctx context.Context, authorID string, maxAgeYears int) ([]*semanticscholar.Paper, error)
	Stats() semanticscholar.Stats
}

// Strategy scores one article for one user.
type Strategy interface {
	// Name returns the configured strategy name, e.g. "venue_copub".
	Name() string

	// Score returns the candidate for articleID, or ErrSkip when the
	// article should not be considered for this user at all.
	Score(ctx context.Context, user User, articleID string) (ScoredCandidate, error)
}

// UserPreparer is implemented by strategies that load per-user state before
// scoring. A failure skips the user.
type UserPreparer interface {
	PrepareUser(ctx context.Context, user User) error
}

// Preparer is implemented by strategies that need the candidate set before
// any user is scored.
type Preparer interface {
	Prepare(ctx context.Context, articleIDs []string) error
}
