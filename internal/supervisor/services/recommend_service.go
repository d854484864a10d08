// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/digestrec/internal/recommend"
)

// RecommendEngine runs one recommendation pass.
type RecommendEngine interface {
	Run(ctx context.Context) (*recommend.RunSummary, error)
}

// Purger drops expired cache records.
type Purger interface {
	Purge(ctx context.Context, now time.Time) (int64, error)
}

// RecommendServiceConfig holds configuration for the recommendation service.
type RecommendServiceConfig struct {
	// Interval between passes. Default: 24h
	Interval time.Duration

	// RunTimeout bounds one pass. Default: 6h
	RunTimeout time.Duration

	// RunOnce stops the service after the first pass.
	RunOnce bool

	// Purger, when set, is called after every pass.
	Purger Purger

	// OnComplete is called after every pass with its result.
	OnComplete func(*recommend.RunSummary, error)
}

// RecommendService drives the engine on a schedule under supervision.
type RecommendService struct {
	engine RecommendEngine
	config RecommendServiceConfig
	logger zerolog.Logger
	name   string
}

// NewRecommendService creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRecommendService(engine RecommendEngine, cfg RecommendServiceConfig, logger zerolog.Logger) *RecommendService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 6 * time.Hour
	}
	return &RecommendService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "recommend").Logger(),
		name:   "recommend-service",
	}
}

// Serve implements suture.Service. A failed pass is logged and retried at
// the next tick; it does not restart the service.
func (s *RecommendService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_once", s.config.RunOnce).
		Dur("interval", s.config.Interval).
		Msg("recommendation service starting")

	s.runPass(ctx)
	if s.config.RunOnce {
		s.logger.Info().Msg("single pass complete, not rescheduling")
		return suture.ErrDoNotRestart
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("recommendation service shutting down")
			return ctx.Err()
		case <-ticker.C:
			s.runPass(ctx)
		}
	}
}

func (s *RecommendService) runPass(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	summary, err := s.engine.Run(runCtx)
	if err != nil {
		s.logger.Error().Err(err).Msg("recommendation run failed")
	} else {
		s.logger.Info().
			Str("run_id", summary.RunID).
			Int("users", summary.Users).
			Int("recommendations", summary.Recommendations).
			Dur("duration", summary.Duration).
			Msg("recommendation run complete")
	}

	if s.config.Purger != nil && ctx.Err() == nil {
		n, perr := s.config.Purger.Purge(ctx, time.Now())
		if perr != nil {
			s.logger.Warn().Err(perr).Msg("cache purge failed")
		} else if n > 0 {
			s.logger.Info().Int64("purged", n).Msg("purged expired cache records")
		}
	}

	if s.config.OnComplete != nil {
		s.config.OnComplete(summary, err)
	}
}

// String returns the service name for logging.
func (s *RecommendService) String() string {
	return s.name
}
