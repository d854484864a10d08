// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package arxivdigest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/digestrec/internal/logging"
	"github.com/tomtom215/digestrec/internal/recommend"
)

var (
	_ recommend.Platform      = (*Client)(nil)
	_ recommend.ArticleSource = (*Client)(nil)
)

// Response envelopes.
type (
	infoResponse struct {
		Info struct {
			TotalUsers int `json:"total_users"`
		} `json:"info"`
	}

	articlesResponse struct {
		Articles struct {
			ArticleIDs []string `json:"article_ids"`
		} `json:"articles"`
	}

	usersResponse struct {
		Users struct {
			UserIDs []json.Number `json:"user_ids"`
		} `json:"users"`
	}

	userInfoResponse struct {
		UserInfo map[string]userInfo `json:"user_info"`
	}

	articleDataResponse struct {
		ArticleData map[string]articleData `json:"article_data"`
	}

	interleavedResponse struct {
		Users map[string]map[string]json.RawMessage `json:"users"`
	}
)

// userInfo is one entry of GET /user_info.
type userInfo struct {
	Name                   string   `json:"name"`
	FirstName              string   `json:"first_name"`
	LastName               string   `json:"last_name"`
	Topics                 []string `json:"topics"`
	SemanticScholarProfile string   `json:"semantic_scholar_profile"`
}

func (u userInfo) displayName() string {
	if u.Name != "" {
		return u.Name
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// articleData is one entry of GET /article_data.
type articleData struct {
	Title    string          `json:"title"`
	Abstract string          `json:"abstract"`
	Authors  []articleAuthor `json:"authors"`
	Date     string          `json:"date"`
}

type articleAuthor struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// Date layouts the platform has used for article dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC1123,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseDate parses an article date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// UserCount returns the number of users registered on the platform.
func (c *Client) UserCount(ctx context.Context) (int, error) {
	var resp infoResponse
	if err := c.getJSON(ctx, "info", "/", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Info.TotalUsers, nil
}

// ArticleIDs returns today's candidate articles.
func (c *Client) ArticleIDs(ctx context.Context) ([]string, error) {
	var resp articlesResponse
	if err := c.getJSON(ctx, "articles", "/articles", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Articles.ArticleIDs, nil
}

// UserIDs returns the page of user ids starting at offset.
func (c *Client) UserIDs(ctx context.Context, offset int) ([]string, error) {
	q := url.Values{"offset": {strconv.Itoa(offset)}}
	var resp usersResponse
	if err := c.getJSON(ctx, "users", "/users", q, &resp); err != nil {
		return nil, err
	}
	ids := make([]string, len(resp.Users.UserIDs))
	for i, id := range resp.Users.UserIDs {
		ids[i] = id.String()
	}
	return ids, nil
}

// UserInfo returns the profiles of the given users keyed by user id.
func (c *Client) UserInfo(ctx context.Context, ids []string) (map[string]recommend.User, error) {
	if len(ids) == 0 {
		return map[string]recommend.User{}, nil
	}
	q := url.Values{"ids": {strings.Join(ids, ",")}}
	var resp userInfoResponse
	if err := c.getJSON(ctx, "user_info", "/user_info", q, &resp); err != nil {
		return nil, err
	}

	users := make(map[string]recommend.User, len(resp.UserInfo))
	for id, info := range resp.UserInfo {
		users[id] = recommend.User{
			ID:          id,
			Name:        info.displayName(),
			ProfileLink: info.SemanticScholarProfile,
			Topics:      info.Topics,
		}
	}
	return users, nil
}

// ArticleData returns metadata for the given articles keyed by article id.
// Articles with an unparseable date keep a zero Date.
func (c *Client) ArticleData(ctx context.Context, ids []string) (map[string]recommend.ArticleData, error) {
	if len(ids) == 0 {
		return map[string]recommend.ArticleData{}, nil
	}
	q := url.Values{"ids": {strings.Join(ids, ",")}}
	var resp articleDataResponse
	if err := c.getJSON(ctx, "article_data", "/article_data", q, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]recommend.ArticleData, len(resp.ArticleData))
	for id, d := range resp.ArticleData {
		date, err := ParseDate(d.Date)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("article_id", id).Msg("Article date not parsed")
		}
		authors := make([]string, 0, len(d.Authors))
		for _, a := range d.Authors {
			authors = append(authors, strings.TrimSpace(a.FirstName+" "+a.LastName))
		}
		out[id] = recommend.ArticleData{
			ArticleID: id,
			Title:     d.Title,
			Abstract:  d.Abstract,
			Authors:   authors,
			Date:      date,
		}
	}
	return out, nil
}

// InterleavedArticles returns, per user, the articles the platform already
// showed them today.
func (c *Client) InterleavedArticles(ctx context.Context, ids []string) (map[string]map[string]struct{}, error) {
	if len(ids) == 0 {
		return map[string]map[string]struct{}{}, nil
	}
	q := url.Values{"user_id": {strings.Join(ids, ",")}}
	var resp interleavedResponse
	if err := c.getJSON(ctx, "interleaved", "/recommendations/articles", q, &resp); err != nil {
		return nil, err
	}

	out := make(map[string]map[string]struct{}, len(resp.Users))
	for user, articles := range resp.Users {
		set := make(map[string]struct{}, len(articles))
		for id := range articles {
			set[id] = struct{}{}
		}
		out[user] = set
	}
	return out, nil
}

// SendRecommendations submits one batch of recommendations keyed by user id.
func (c *Client) SendRecommendations(ctx context.Context, recs map[string][]recommend.ScoredCandidate) error {
	_, err := c.call(ctx, request{
		method:   http.MethodPost,
		endpoint: "send_recommendations",
		path:     "/recommendations/articles",
		body:     map[string]any{"recommendations": recs},
	})
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().Int("users", len(recs)).Msg("Submitted recommendations")
	return nil
}
