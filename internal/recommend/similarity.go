// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package recommend

import "math"

// PaddedCosine is the cosine similarity of a and b after zero-padding the
// shorter vector. It is 0 when either vector is all zeros.
func PaddedCosine(a, b []int) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		var x, y float64
		if i < len(a) {
			x = float64(a[i])
		}
		if i < len(b) {
			y = float64(b[i])
		}
		dot += x * y
		na += x * x
		nb += y * y
	}

	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
