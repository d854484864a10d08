// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package venue

import (
	"strings"
	"sync"

	"github.com/tomtom215/digestrec/internal/metrics"
)

// DefaultBlacklist holds venues that say nothing about an author's community.
var DefaultBlacklist = []string{"arxiv"}

// Vocabulary is the process-wide, append-only list of discovered venues.
type Vocabulary struct {
	mu        sync.Mutex
	venues    []string
	index     map[string]int
	blacklist map[string]struct{}
}

// NewVocabulary creates an empty vocabulary. Blacklist entries match
// case-insensitively.
func NewVocabulary(blacklist []string) *Vocabulary {
	bl := make(map[string]struct{}, len(blacklist))
	for _, v := range blacklist {
		bl[strings.ToLower(v)] = struct{}{}
	}
	return &Vocabulary{
		index:     make(map[string]int),
		blacklist: bl,
	}
}

// Len returns the number of venues discovered so far.
func (v *Vocabulary) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.venues)
}

// Venue returns the name at index i, or "" when i is out of range.
func (v *Vocabulary) Venue(i int) string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i < 0 || i >= len(v.venues) {
		return ""
	}
	return v.venues[i]
}

// Index returns the index of venue if it has been discovered.
func (v *Vocabulary) Index(venue string) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i, ok := v.index[venue]
	return i, ok
}

// Snapshot returns a copy of the venue list.
func (v *Vocabulary) Snapshot() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]string, len(v.venues))
	copy(out, v.venues)
	return out
}

// Blacklisted reports whether venue is excluded from representations.
func (v *Vocabulary) Blacklisted(venue string) bool {
	_, ok := v.blacklist[strings.ToLower(venue)]
	return ok
}

// indexLocked returns the index of venue, appending it if new.
// Callers hold v.mu.
func (v *Vocabulary) indexLocked(venue string) int {
	if i, ok := v.index[venue]; ok {
		return i
	}
	i := len(v.venues)
	v.venues = append(v.venues, venue)
	v.index[venue] = i
	metrics.VenueVocabularySize.Set(float64(len(v.venues)))
	return i
}
