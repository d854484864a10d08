// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package metrics defines the Prometheus metrics exported by digestrec.
//
// Metrics are registered on the default registry with promauto and served
// by the metrics listener in cmd/recommender at /metrics. Callers use the
// Record* helpers rather than touching the vectors directly so label sets
// stay consistent.
package metrics
