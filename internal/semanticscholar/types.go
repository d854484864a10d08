// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package semanticscholar

// AuthorRef is an author as listed on a paper or reference.
// AuthorID is empty when Semantic Scholar could not resolve the author.
type AuthorRef struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// Reference is one entry of a paper's reference list.
type Reference struct {
	PaperID string      `json:"paperId"`
	Title   string      `json:"title"`
	Year    *int        `json:"year"`
	Authors []AuthorRef `json:"authors"`
}

// Topic is a Semantic Scholar topic tag.
type Topic struct {
	Topic   string `json:"topic"`
	TopicID string `json:"topicId"`
	URL     string `json:"url"`
}

// Paper is the /paper/{id} payload, restricted to the fields the
// recommender reads.
type Paper struct {
	PaperID                  string      `json:"paperId"`
	ArxivID                  string      `json:"arxivId"`
	Title                    string      `json:"title"`
	Abstract                 string      `json:"abstract"`
	Venue                    string      `json:"venue"`
	Year                     *int        `json:"year"`
	InfluentialCitationCount int         `json:"influentialCitationCount"`
	Authors                  []AuthorRef `json:"authors"`
	References               []Reference `json:"references"`
	FieldsOfStudy            []string    `json:"fieldsOfStudy"`
	Topics                   []Topic     `json:"topics"`
}

// AuthoredBy reports whether authorID is among the paper's authors.
func (p *Paper) AuthoredBy(authorID string) bool {
	if authorID == "" {
		return false
	}
	for _, a := range p.Authors {
		if a.AuthorID == authorID {
			return true
		}
	}
	return false
}

// TopicNames returns the topic labels in payload order.
func (p *Paper) TopicNames() []string {
	names := make([]string, 0, len(p.Topics))
	for _, t := range p.Topics {
		names = append(names, t.Topic)
	}
	return names
}

// AuthorPaper is a paper stub in an author's publication list.
type AuthorPaper struct {
	PaperID string `json:"paperId"`
	Title   string `json:"title"`
	Year    *int   `json:"year"`
}

// Author is the /author/{id} payload.
type Author struct {
	AuthorID                 string        `json:"authorId"`
	Name                     string        `json:"name"`
	InfluentialCitationCount int           `json:"influentialCitationCount"`
	Papers                   []AuthorPaper `json:"papers"`
}

// Stats is a snapshot of the client's lookup counters.
type Stats struct {
	Requests    int64 `json:"requests"`
	CacheHits   int64 `json:"cache_hits"`
	CacheMisses int64 `json:"cache_misses"`
	Errors      int64 `json:"errors"`
}
