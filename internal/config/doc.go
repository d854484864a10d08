// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

// Package config loads digestrec configuration with Koanf v2.
//
// Sources are layered, later layers winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
//     ~/.config/digestrec/config.yaml, /etc/digestrec/config.yaml
//  3. Environment variables, mapped by envTransformFunc
//
// A .env file in the working directory is read into the process environment
// before layer 3 so local development does not need exported variables.
//
// # Example
//
//	cfg, err := config.LoadWithKoanf()
//	if err != nil {
//	    logging.Error().Err(err).Msg("invalid configuration")
//	    return 1
//	}
//
// # Environment variables
//
//	S2_API_KEY, S2_BASE_URL, S2_MAX_CONCURRENT_REQUESTS, S2_MAX_REQUESTS,
//	S2_WINDOW_SIZE, S2_PAPER_CACHE_EXPIRATION, S2_AUTHOR_CACHE_EXPIRATION
//	ARXIVDIGEST_BASE_URL, ARXIVDIGEST_API_KEY
//	CACHE_BACKEND, CACHE_PATH, CACHE_DSN
//	SEARCH_BACKEND, ELASTICSEARCH_URL, SEARCH_INDEX
//	RECOMMENDER (strategy name), MAX_PAPER_AGE, MAX_EXPLANATION_VENUES,
//	MAX_EXPLANATION_TOPICS, MIN_INFLUENCE, MAX_RECOMMENDATIONS, VENUE_BLACKLIST
//	LOG_LEVEL, LOG_FORMAT, LOG_CALLER, METRICS_ENABLED, METRICS_ADDRESS
package config
