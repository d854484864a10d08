// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/tomtom215/digestrec/internal/api"
	"github.com/tomtom215/digestrec/internal/config"
	"github.com/tomtom215/digestrec/internal/logging"
	"github.com/tomtom215/digestrec/internal/recommend"
	"github.com/tomtom215/digestrec/internal/supervisor"
	"github.com/tomtom215/digestrec/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Error().Err(err).Msg("Failed to load configuration")
		return 1
	}

	logging.Init(logging.Config{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Caller:  cfg.Logging.Caller,
		Service: "digestrec",
		Version: version,
	})

	logging.Info().
		Str("strategy", cfg.Recommend.Strategy).
		Bool("run_once", cfg.Recommend.RunOnce).
		Str("cache_backend", cfg.Cache.Backend).
		Msg("Starting digestrec with supervisor tree")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comps, err := initRecommend(ctx, cfg, logging.With().Str("component", "recommend").Logger())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to initialize recommender")
		return 1
	}
	defer func() {
		if err := comps.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing response cache")
		}
	}()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Error().Err(err).Msg("Failed to create supervisor tree")
		return 1
	}

	var failed atomic.Bool
	serviceCfg := services.RecommendServiceConfig{
		Interval: cfg.Recommend.Interval,
		RunOnce:  cfg.Recommend.RunOnce,
		Purger:   comps.purger(),
	}
	if cfg.Recommend.RunOnce {
		serviceCfg.OnComplete = func(_ *recommend.RunSummary, err error) {
			if err != nil {
				failed.Store(true)
			}
			cancel()
		}
	}
	tree.AddRecommendService(services.NewRecommendService(
		comps.engine,
		serviceCfg,
		logging.Logger(),
	))

	if cfg.Metrics.Enabled {
		router := api.NewRouter(api.Options{
			Status:    comps.engine,
			Venues:    comps.vocab,
			Breakers:  comps.breakers(),
			RateLimit: cfg.Metrics.RateLimit,
			Version:   version,
		})
		server := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddAPIService(services.NewHTTPServerService(
			server,
			services.HTTPServiceConfig{ShutdownTimeout: 10 * time.Second},
			logging.With().Logger(),
		))
		logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	if failed.Load() {
		logging.Error().Msg("Recommendation run failed")
		return 1
	}
	logging.Info().Msg("Application stopped gracefully")
	return 0
}
