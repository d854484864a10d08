// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package semanticscholar

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/digestrec/internal/logging"
)

// AuthorPapers resolves authorID and returns its recent papers.
// See PapersOf.
func (c *Client) AuthorPapers(ctx context.Context, authorID string, maxAgeYears int) ([]*Paper, error) {
	author, err := c.Author(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("author %s: %w", authorID, err)
	}
	return c.PapersOf(ctx, author, maxAgeYears)
}

// PapersOf fetches every paper of author published within the last
// maxAgeYears years, or with an unknown year. Papers are fetched
// concurrently; papers that fail to load are dropped. The result keeps the
// order of the author's publication list.
func (c *Client) PapersOf(ctx context.Context, author *Author, maxAgeYears int) ([]*Paper, error) {
	minYear := c.now().Year() - maxAgeYears

	var ids []string
	for _, p := range author.Papers {
		if p.PaperID == "" {
			continue
		}
		if p.Year == nil || *p.Year >= minYear {
			ids = append(ids, p.PaperID)
		}
	}

	results := make([]*Paper, len(ids))
	var g errgroup.Group
	for i, id := range ids {
		g.Go(func() error {
			p, err := c.Paper(ctx, id)
			if err != nil {
				logging.Ctx(ctx).Debug().Err(err).
					Str("author_id", author.AuthorID).
					Str("paper_id", id).
					Msg("Dropping unavailable paper")
				return nil
			}
			results[i] = p
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	papers := make([]*Paper, 0, len(results))
	for _, p := range results {
		if p != nil {
			papers = append(papers, p)
		}
	}
	return papers, nil
}
