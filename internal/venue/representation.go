// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package venue

// Representation counts an author's publications per vocabulary venue.
// VocabSize is the vocabulary length when it was built; len(Counts) always
// equals VocabSize.
type Representation struct {
	Counts    []int
	VocabSize int
}

// IsZero reports whether the author has no counted publications.
func (r Representation) IsZero() bool {
	for _, c := range r.Counts {
		if c != 0 {
			return false
		}
	}
	return true
}

// At returns the count at index i, treating indexes past the end as zero.
func (r Representation) At(i int) int {
	if i < 0 || i >= len(r.Counts) {
		return 0
	}
	return r.Counts[i]
}

// NonZero returns the indexes with a positive count, ascending.
func (r Representation) NonZero() []int {
	var idx []int
	for i, c := range r.Counts {
		if c > 0 {
			idx = append(idx, i)
		}
	}
	return idx
}

// Influence maps a venue index to the influential citations an author has
// accumulated there. Only venues at or above the builder's threshold are kept.
type Influence map[int]int

// Sum adds the influence at each of the given venue indexes.
func (inf Influence) Sum(indexes []int) int {
	total := 0
	for _, i := range indexes {
		total += inf[i]
	}
	return total
}

// Profile is everything derived from one author's publication list.
type Profile struct {
	Representation Representation
	Influence      Influence
}

// Pad right-pads the shorter of a and b with zeros. The inputs are not modified.
func Pad(a, b []int) ([]int, []int) {
	switch {
	case len(a) < len(b):
		return padTo(a, len(b)), b
	case len(b) < len(a):
		return a, padTo(b, len(a))
	default:
		return a, b
	}
}

func padTo(v []int, n int) []int {
	out := make([]int, n)
	copy(out, v)
	return out
}
