// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

/*
Package services adapts the recommender's components to suture.Service.

RecommendService:
  - runs one recommendation pass on start, then one per interval
  - purges expired fetch-cache records after each pass when given a Purger
  - in run-once mode returns suture.ErrDoNotRestart after the first pass

HTTPServerService:
  - wraps an *http.Server (metrics, health and status routes)
  - translates ListenAndServe into Serve and shuts down gracefully
*/
package services
