// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
	"github.com/thejerf/sutureslog"
)

// Layer names a child supervisor of the root.
type Layer string

const (
	// LayerRecommend holds the scheduled recommendation service.
	LayerRecommend Layer = "recommend-layer"

	// LayerAPI holds the status and metrics HTTP server.
	LayerAPI Layer = "api-layer"
)

// rootName is the root supervisor's name in events.
const rootName = "digestrec"

// TreeConfig tunes restart behavior. It applies to every layer.
type TreeConfig struct {
	// FailureThreshold is how many failures put a layer into backoff.
	FailureThreshold float64

	// FailureDecay is the failure half-life in seconds.
	FailureDecay float64

	// FailureBackoff is how long a layer waits once over the threshold.
	FailureBackoff time.Duration

	// ShutdownTimeout bounds how long each service gets to stop.
	ShutdownTimeout time.Duration
}

// DefaultTreeConfig returns suture's own defaults.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		FailureThreshold: 5.0,
		FailureDecay:     30.0,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	}
}

// withDefaults fills zero fields from DefaultTreeConfig.
func (c TreeConfig) withDefaults() TreeConfig {
	d := DefaultTreeConfig()
	if c.FailureThreshold == 0 {
		c.FailureThreshold = d.FailureThreshold
	}
	if c.FailureDecay == 0 {
		c.FailureDecay = d.FailureDecay
	}
	if c.FailureBackoff == 0 {
		c.FailureBackoff = d.FailureBackoff
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

func (c TreeConfig) spec() suture.Spec {
	return suture.Spec{
		FailureThreshold: c.FailureThreshold,
		FailureDecay:     c.FailureDecay,
		FailureBackoff:   c.FailureBackoff,
		Timeout:          c.ShutdownTimeout,
	}
}

// SupervisorTree is a root supervisor with one child per Layer. A failing
// service is restarted inside its own layer without disturbing the other.
type SupervisorTree struct {
	root   *suture.Supervisor
	layers map[Layer]*suture.Supervisor
	config TreeConfig
}

// NewSupervisorTree creates the tree. Supervisor events are logged through
// logger. Zero config fields take defaults.
func NewSupervisorTree(logger *slog.Logger, config TreeConfig) (*SupervisorTree, error) {
	if logger == nil {
		return nil, errors.New("supervisor: logger is required")
	}
	config = config.withDefaults()

	rootSpec := config.spec()
	// MustHook has a pointer receiver. Layers inherit the hook when added.
	hook := &sutureslog.Handler{Logger: logger}
	rootSpec.EventHook = hook.MustHook()

	t := &SupervisorTree{
		root:   suture.New(rootName, rootSpec),
		layers: make(map[Layer]*suture.Supervisor, 2),
		config: config,
	}
	for _, layer := range []Layer{LayerRecommend, LayerAPI} {
		sup := suture.New(string(layer), config.spec())
		t.root.Add(sup)
		t.layers[layer] = sup
	}
	return t, nil
}

// Add places svc in layer. It panics on an unknown layer, which is a
// wiring bug.
func (t *SupervisorTree) Add(layer Layer, svc suture.Service) suture.ServiceToken {
	sup, ok := t.layers[layer]
	if !ok {
		panic(fmt.Sprintf("supervisor: unknown layer %q", layer))
	}
	return sup.Add(svc)
}

// AddRecommendService adds svc to LayerRecommend.
func (t *SupervisorTree) AddRecommendService(svc suture.Service) suture.ServiceToken {
	return t.Add(LayerRecommend, svc)
}

// AddAPIService adds svc to LayerAPI.
func (t *SupervisorTree) AddAPIService(svc suture.Service) suture.ServiceToken {
	return t.Add(LayerAPI, svc)
}

// Root returns the root supervisor.
func (t *SupervisorTree) Root() *suture.Supervisor { return t.root }

// Serve blocks until ctx is canceled.
func (t *SupervisorTree) Serve(ctx context.Context) error {
	return t.root.Serve(ctx)
}

// ServeBackground runs the tree in a goroutine. The channel yields the
// tree's result once it stops and is then closed, so callers may range
// over it.
func (t *SupervisorTree) ServeBackground(ctx context.Context) <-chan error {
	result := t.root.ServeBackground(ctx)
	out := make(chan error, 1)
	go func() {
		out <- <-result
		close(out)
	}()
	return out
}

// UnstoppedServiceReport lists services that outlived ShutdownTimeout.
func (t *SupervisorTree) UnstoppedServiceReport() ([]suture.UnstoppedService, error) {
	return t.root.UnstoppedServiceReport()
}
