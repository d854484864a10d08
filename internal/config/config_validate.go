// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/digestrec/internal/logging"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks struct tags first, then the cross-field rules tags cannot express.
func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		return translateValidationError(err)
	}

	checks := []func() error{
		c.validateLogging,
		c.validateArxivDigest,
		c.validateSemanticScholar,
		c.validateCache,
		c.validateSearch,
		c.validateRecommend,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// translateValidationError turns validator output into the namespace form
// used in config files, e.g. "recommend.max_paper_age failed min=1".
func translateValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s failed %s (got %v)", field, rule, fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL %q is not a known level", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateArxivDigest() error {
	if err := validateHTTPURL(c.ArxivDigest.BaseURL, "ARXIVDIGEST_BASE_URL"); err != nil {
		return err
	}
	if c.ArxivDigest.Timeout <= 0 {
		return fmt.Errorf("ARXIVDIGEST_TIMEOUT must be positive, got %v", c.ArxivDigest.Timeout)
	}
	if c.Recommend.Submit && c.ArxivDigest.APIKey == "" {
		return fmt.Errorf("ARXIVDIGEST_API_KEY is required when recommendations are submitted")
	}
	return nil
}

func (c *Config) validateSemanticScholar() error {
	s2 := c.SemanticScholar
	if s2.BaseURL != "" {
		if err := validateHTTPURL(s2.BaseURL, "S2_BASE_URL"); err != nil {
			return err
		}
	}
	if s2.WindowSize <= 0 {
		return fmt.Errorf("S2_WINDOW_SIZE must be positive, got %v", s2.WindowSize)
	}
	if s2.Timeout <= 0 {
		return fmt.Errorf("S2_TIMEOUT must be positive, got %v", s2.Timeout)
	}
	if s2.CircuitBreaker.Enabled && s2.CircuitBreaker.ConsecutiveFailures == 0 {
		return fmt.Errorf("S2_BREAKER_FAILURES must be at least 1 when the circuit breaker is enabled")
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case "badger", "duckdb":
		if c.Cache.Path == "" {
			return fmt.Errorf("CACHE_PATH is required for the %s cache backend", c.Cache.Backend)
		}
	case "mysql":
		if c.Cache.DSN == "" {
			return fmt.Errorf("CACHE_DSN is required for the mysql cache backend")
		}
	}
	return nil
}

func (c *Config) validateSearch() error {
	if c.Recommend.Strategy != StrategyHybrid || c.Search.Backend != "elasticsearch" {
		return nil
	}
	if err := validateHTTPURL(c.Search.URL, "ELASTICSEARCH_URL"); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateRecommend() error {
	if !c.Recommend.RunOnce && c.Recommend.Interval <= 0 {
		return fmt.Errorf("RECOMMEND_INTERVAL must be positive unless RECOMMEND_RUN_ONCE=true")
	}
	for _, v := range c.Recommend.VenueBlacklist {
		if v == "" {
			return fmt.Errorf("VENUE_BLACKLIST contains an empty venue")
		}
	}
	return nil
}
