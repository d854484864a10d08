// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/digestrec/internal/recommend"
)

type fakeEngine struct {
	mu    sync.Mutex
	runs  int
	err   error
	delay time.Duration
}

func (f *fakeEngine) Run(ctx context.Context) (*recommend.RunSummary, error) {
	f.mu.Lock()
	f.runs++
	n := f.runs
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &recommend.RunSummary{RunID: "run", Users: n}, nil
}

func (f *fakeEngine) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs
}

type fakePurger struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakePurger) Purge(context.Context, time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return 3, f.err
}

func (f *fakePurger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRecommendService_RunOnce(t *testing.T) {
	engine := &fakeEngine{}
	purger := &fakePurger{}
	var got *recommend.RunSummary
	var gotErr error
	calls := 0

	svc := NewRecommendService(engine, RecommendServiceConfig{
		RunOnce: true,
		Purger:  purger,
		OnComplete: func(s *recommend.RunSummary, err error) {
			calls++
			got, gotErr = s, err
		},
	}, zerolog.Nop())

	err := svc.Serve(context.Background())
	if !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("Serve = %v, want ErrDoNotRestart", err)
	}
	if engine.count() != 1 || purger.count() != 1 || calls != 1 {
		t.Errorf("runs/purges/callbacks = %d/%d/%d, want 1/1/1", engine.count(), purger.count(), calls)
	}
	if got == nil || gotErr != nil {
		t.Errorf("OnComplete got %v, %v", got, gotErr)
	}
}

func TestRecommendService_RunOnceFailure(t *testing.T) {
	boom := errors.New("platform down")
	var gotErr error
	svc := NewRecommendService(&fakeEngine{err: boom}, RecommendServiceConfig{
		RunOnce:    true,
		OnComplete: func(_ *recommend.RunSummary, err error) { gotErr = err },
	}, zerolog.Nop())

	if err := svc.Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) {
		t.Fatalf("Serve = %v, want ErrDoNotRestart", err)
	}
	if !errors.Is(gotErr, boom) {
		t.Errorf("OnComplete err = %v, want %v", gotErr, boom)
	}
}

func TestRecommendService_Scheduled(t *testing.T) {
	engine := &fakeEngine{err: errors.New("transient")}
	purger := &fakePurger{err: errors.New("locked")}
	svc := NewRecommendService(engine, RecommendServiceConfig{
		Interval: 40 * time.Millisecond,
		Purger:   purger,
	}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Serve = %v, want context.DeadlineExceeded", err)
	}
	// One pass on start plus at least two ticks; failures do not stop the loop.
	if n := engine.count(); n < 3 {
		t.Errorf("engine ran %d times, want >= 3", n)
	}
	if purger.count() != engine.count() {
		t.Errorf("purges = %d, runs = %d", purger.count(), engine.count())
	}
}

func TestRecommendService_RunTimeout(t *testing.T) {
	engine := &fakeEngine{delay: time.Second}
	var gotErr error
	svc := NewRecommendService(engine, RecommendServiceConfig{
		RunOnce:    true,
		RunTimeout: 20 * time.Millisecond,
		OnComplete: func(_ *recommend.RunSummary, err error) { gotErr = err },
	}, zerolog.Nop())

	start := time.Now()
	_ = svc.Serve(context.Background())
	if time.Since(start) > 500*time.Millisecond {
		t.Error("run timeout not applied")
	}
	if !errors.Is(gotErr, context.DeadlineExceeded) {
		t.Errorf("OnComplete err = %v, want deadline exceeded", gotErr)
	}
}

func TestRecommendService_Defaults(t *testing.T) {
	svc := NewRecommendService(&fakeEngine{}, RecommendServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != 24*time.Hour || svc.config.RunTimeout != 6*time.Hour {
		t.Errorf("config = %+v", svc.config)
	}
	if svc.String() != "recommend-service" {
		t.Errorf("String() = %q", svc.String())
	}
}
