// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package venue turns publication lists into venue count vectors.
//
// A Vocabulary assigns every venue an index the first time any author is
// seen publishing there. Representations built at different times may have
// different lengths; compare them with Pad or a padded similarity measure.
package venue
