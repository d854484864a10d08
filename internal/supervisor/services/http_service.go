// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServiceConfig configures an HTTPServerService.
type HTTPServiceConfig struct {
	// Name identifies the service in supervisor events. Default "status-server".
	Name string

	// ShutdownTimeout bounds graceful shutdown. Default 10s.
	ShutdownTimeout time.Duration
}

// HTTPServerService runs the status server under the api layer.
//
//	server := &http.Server{Addr: ":9090", Handler: api.NewRouter(opts)}
//	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServiceConfig{}, logger))
type HTTPServerService struct {
	server HTTPServer
	cfg    HTTPServiceConfig
	logger zerolog.Logger
}

// NewHTTPServerService wraps server.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHTTPServerService(server HTTPServer, cfg HTTPServiceConfig, logger zerolog.Logger) *HTTPServerService {
	if cfg.Name == "" {
		cfg.Name = "status-server"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server: server,
		cfg:    cfg,
		logger: logger.With().Str("service", cfg.Name).Logger(),
	}
}

// Serve implements suture.Service. A listener failure is returned so the
// supervisor restarts the server.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	listenDone := make(chan error, 1)
	go func() {
		listenDone <- h.server.ListenAndServe()
	}()

	select {
	case err := <-listenDone:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		h.logger.Error().Err(err).Msg("status server stopped listening")
		return fmt.Errorf("%s: listen: %w", h.cfg.Name, err)

	case <-ctx.Done():
	}

	h.logger.Info().Dur("timeout", h.cfg.ShutdownTimeout).Msg("shutting down status server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), h.cfg.ShutdownTimeout)
	defer cancel()
	if err := h.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s: shutdown: %w", h.cfg.Name, err)
	}
	<-listenDone
	return ctx.Err()
}

// String identifies the service in supervisor logs.
func (h *HTTPServerService) String() string {
	return h.cfg.Name
}
