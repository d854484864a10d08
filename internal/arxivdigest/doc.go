// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

/*
Package arxivdigest is the client for the arXivDigest platform API.

The platform publishes the daily candidate articles and the users who want
recommendations, and accepts scored recommendations back. Every request
carries the recommender's api-key header.

Endpoints:
  - GET  /                          total user count (info.total_users)
  - GET  /articles                  candidate article ids
  - GET  /users?offset=n            one page of user ids
  - GET  /user_info?ids=a,b         profile, topics and Semantic Scholar link
  - GET  /article_data?ids=a,b      title, abstract, authors and date
  - GET  /recommendations/articles  articles already shown to users
  - POST /recommendations/articles  submit a batch of recommendations

Client implements recommend.Platform and recommend.ArticleSource. Calls are
throttled with golang.org/x/time/rate, retried on HTTP 429 and guarded by a
circuit breaker.
*/
package arxivdigest
