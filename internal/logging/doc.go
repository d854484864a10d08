// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package logging provides the process-wide zerolog logger for digestrec.
//
// All packages log through this package instead of constructing their own
// writers. Components derive child loggers with a "component" field:
//
//	logger := logging.With().Str("component", "s2client").Logger()
//	logger.Debug().Str("endpoint", ep).Msg("cache hit")
//
// Each recommendation run carries a short correlation ID in its context so
// that every line emitted while ranking one batch can be grouped:
//
//	ctx = logging.ContextWithNewRunID(ctx)
//	logging.Ctx(ctx).Info().Int("users", n).Msg("batch ranked")
//
// # Configuration
//
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file:line (default: false)
//
// Suture v4 logs through log/slog; NewSlogLogger bridges those events into
// zerolog so supervisor restarts appear in the same stream.
package logging
