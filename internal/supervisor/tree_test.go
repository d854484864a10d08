// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package supervisor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewSupervisorTree_Defaults(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("root supervisor is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want %+v", tree.config, DefaultTreeConfig())
	}

	custom, err := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	if custom.config.FailureBackoff != time.Second || custom.config.FailureThreshold != 5 {
		t.Errorf("config = %+v", custom.config)
	}
}

func TestNewSupervisorTree_Layers(t *testing.T) {
	if _, err := NewSupervisorTree(nil, TreeConfig{}); err == nil {
		t.Error("expected an error without a logger")
	}

	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	for _, layer := range []Layer{LayerRecommend, LayerAPI} {
		if tree.layers[layer] == nil {
			t.Errorf("layer %s missing", layer)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("Add on an unknown layer did not panic")
		}
	}()
	tree.Add(Layer("nope"), &mockService{name: "x"})
}

func TestSupervisorTree_Lifecycle(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	rec := &mockService{name: "recommend"}
	api := &mockService{name: "api"}
	tree.AddRecommendService(rec)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for (rec.starts.Load() == 0 || api.starts.Load() == 0) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("tree did not stop")
	}
	if rec.starts.Load() != 1 || api.starts.Load() != 1 {
		t.Errorf("starts = %d/%d, want 1/1", rec.starts.Load(), api.starts.Load())
	}
	if rec.stops.Load() != 1 || api.stops.Load() != 1 {
		t.Errorf("stops = %d/%d, want 1/1", rec.stops.Load(), api.stops.Load())
	}
}

func TestSupervisorTree_RestartsFailedService(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}

	flaky := &mockService{name: "flaky", failures: 2}
	steady := &mockService{name: "steady"}
	tree.AddRecommendService(flaky)
	tree.AddAPIService(steady)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for flaky.starts.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	if flaky.starts.Load() < 3 {
		t.Errorf("flaky started %d times, want >= 3", flaky.starts.Load())
	}
	if steady.starts.Load() != 1 {
		t.Errorf("api layer restarted: %d starts", steady.starts.Load())
	}
}

func TestSupervisorTree_DoNotRestart(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureBackoff:  10 * time.Millisecond,
		ShutdownTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	once := &mockService{name: "once", err: suture.ErrDoNotRestart}
	api := &mockService{name: "api"}
	tree.AddRecommendService(once)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	if once.starts.Load() != 1 {
		t.Errorf("completed service started %d times, want 1", once.starts.Load())
	}
	if api.starts.Load() != 1 {
		t.Errorf("api started %d times, want 1", api.starts.Load())
	}
}

func TestSupervisorTree_ServeBackgroundCloses(t *testing.T) {
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatalf("NewSupervisorTree: %v", err)
	}
	tree.AddAPIService(&mockService{name: "api"})

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)
	cancel()

	results := 0
	timeout := time.After(3 * time.Second)
	for {
		select {
		case _, ok := <-done:
			if !ok {
				if results != 1 {
					t.Errorf("received %d results before close, want 1", results)
				}
				return
			}
			results++
		case <-timeout:
			t.Fatal("channel was not closed after the tree stopped")
		}
	}
}
