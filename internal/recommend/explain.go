// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/digestrec/internal/venue"
)

// ExplainerOptions configures an Explainer.
type ExplainerOptions struct {
	// MaxVenues bounds how many venues one explanation lists.
	MaxVenues int

	// MaxTopics bounds how many topics one explanation lists.
	MaxTopics int

	// MaxPaperAge is the look-back window, in years, quoted in sentences.
	MaxPaperAge int

	// Seed fixes venue sampling. 0 seeds from the clock.
	Seed int64
}

// Explainer renders one-sentence recommendation explanations.
type Explainer struct {
	vocab     *venue.Vocabulary
	maxVenues int
	maxTopics int
	years     int

	// Random source for venue sampling (protected by rngMu for concurrent access)
	rng   *rand.Rand
	rngMu sync.Mutex
}

// NewExplainer creates an explainer that names venues from vocab.
func NewExplainer(vocab *venue.Vocabulary, opts ExplainerOptions) *Explainer {
	if opts.MaxVenues <= 0 {
		opts.MaxVenues = 3
	}
	if opts.MaxTopics <= 0 {
		opts.MaxTopics = 3
	}
	if opts.MaxPaperAge <= 0 {
		opts.MaxPaperAge = 5
	}
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Explainer{
		vocab:     vocab,
		maxVenues: opts.MaxVenues,
		maxTopics: opts.MaxTopics,
		years:     opts.MaxPaperAge,
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for explanation sampling
	}
}

// MaxTopics returns the topic limit for topic explanations.
func (e *Explainer) MaxTopics() int { return e.maxTopics }

// JoinList joins items for a sentence: "a", "a and b", "a, b, and c".
func JoinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}

func bold(s string) string { return "**" + s + "**" }

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// commonVenues returns the indexes where both vectors are positive, ascending.
func commonVenues(user, author []int) []int {
	u, a := venue.Pad(user, author)
	var common []int
	for i := range u {
		if u[i] > 0 && a[i] > 0 {
			common = append(common, i)
		}
	}
	return common
}

// CoPublication explains a venue co-publication match with the author name.
// When the user published at most once at every shared venue, up to
// MaxVenues shared venues are sampled at random. Otherwise the venues the
// user published at more than once are listed by the user's count.
func (e *Explainer) CoPublication(user, author venue.Representation, name string) string {
	common := commonVenues(user.Counts, author.Counts)
	if len(common) == 0 {
		return ""
	}

	maxCount := 0
	for _, i := range common {
		if c := user.At(i); c > maxCount {
			maxCount = c
		}
	}

	if maxCount == 1 {
		sample := e.sample(common, e.maxVenues)
		names := make([]string, len(sample))
		for k, i := range sample {
			names[k] = bold(e.vocab.Venue(i))
		}
		return fmt.Sprintf("You and %s have both published at %s during the last %d years.",
			name, JoinList(names), e.years)
	}

	var frequent []int
	for _, i := range common {
		if user.At(i) > 1 {
			frequent = append(frequent, i)
		}
	}
	sort.SliceStable(frequent, func(a, b int) bool {
		return user.At(frequent[a]) > user.At(frequent[b])
	})
	if len(frequent) > e.maxVenues {
		frequent = frequent[:e.maxVenues]
	}

	parts := make([]string, len(frequent))
	for k, i := range frequent {
		parts[k] = fmt.Sprintf("%d times at %s", user.At(i), bold(e.vocab.Venue(i)))
	}
	return fmt.Sprintf("You have published %s during the last %d years. %s has also published at %s in the same time period.",
		JoinList(parts), e.years, name, plural(len(parts), "this venue", "these venues"))
}

// Influence explains an influence-weighted match, listing shared venues by
// the author's influence there.
func (e *Explainer) Influence(user, author venue.Representation, name string, influence venue.Influence) string {
	common := commonVenues(user.Counts, author.Counts)
	if len(common) == 0 {
		return ""
	}
	sort.SliceStable(common, func(a, b int) bool {
		return influence[common[a]] > influence[common[b]]
	})
	if len(common) > e.maxVenues {
		common = common[:e.maxVenues]
	}

	names := make([]string, len(common))
	for k, i := range common {
		names[k] = bold(e.vocab.Venue(i))
	}
	return fmt.Sprintf("%s has had influential publications at %s in the last %d years. You have also published at %s in the same time period.",
		name, JoinList(names), e.years, plural(len(names), "this venue", "these venues"))
}

// Citation explains a match on the user's own citations.
func (e *Explainer) Citation(name string, cites int) string {
	return fmt.Sprintf("This article is authored by %s, who you have cited %d %s in the last %d years.",
		name, cites, plural(cites, "time", "times"), e.years)
}

// Collaborator explains a match on a co-author's citations.
func (e *Explainer) Collaborator(author, collaborator string, cites int) string {
	return fmt.Sprintf("This article is authored by %s, who has been cited by your previous collaborator %s %d %s in the last %d years.",
		author, collaborator, cites, plural(cites, "time", "times"), e.years)
}

// Topic explains a hybrid topic and citation match.
func (e *Explainer) Topic(topics []string, name string, cites int) string {
	if len(topics) > e.maxTopics {
		topics = topics[:e.maxTopics]
	}
	names := make([]string, len(topics))
	for k, t := range topics {
		names[k] = bold(t)
	}
	return fmt.Sprintf("This article seems to be about %s, and is authored by %s, who you have cited %d %s in the last %d years.",
		JoinList(names), name, cites, plural(cites, "time", "times"), e.years)
}

// FrequentVenue explains a match on the paper's venue.
func (e *Explainer) FrequentVenue(venueName string, count int) string {
	return fmt.Sprintf("This article is published at %s, where you have published %d %s in the last %d years.",
		bold(venueName), count, plural(count, "paper", "papers"), e.years)
}

// sample returns up to k elements of idx in random order without replacement.
func (e *Explainer) sample(idx []int, k int) []int {
	out := make([]int, len(idx))
	copy(out, idx)

	e.rngMu.Lock()
	e.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	e.rngMu.Unlock()

	if len(out) > k {
		out = out[:k]
	}
	return out
}
