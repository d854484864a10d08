// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import (
	"math"
	"testing"
)

func TestPaddedCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []int
		want float64
	}{
		{"both empty", nil, nil, 0},
		{"one zero", []int{0, 0}, []int{1, 2}, 0},
		{"identical", []int{1, 2, 3}, []int{1, 2, 3}, 1},
		{"scaled", []int{1, 2}, []int{2, 4}, 1},
		{"orthogonal", []int{1, 0}, []int{0, 1}, 0},
		{"shorter is padded", []int{1}, []int{1, 0, 0}, 1},
		{"padded partial overlap", []int{1, 1}, []int{1}, 1 / math.Sqrt2},
		{"mixed", []int{2, 1}, []int{1, 1}, 3 / (math.Sqrt(5) * math.Sqrt2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaddedCosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PaddedCosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			if rev := PaddedCosine(tt.b, tt.a); math.Abs(rev-got) > 1e-12 {
				t.Errorf("not symmetric: %v vs %v", got, rev)
			}
		})
	}
}
