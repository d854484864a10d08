// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService counts Serve calls. It fails the first failures calls, then
// returns err if set, then blocks until canceled.
type mockService struct {
	name     string
	failures int32
	err      error

	starts atomic.Int32
	stops  atomic.Int32
}

func (m *mockService) Serve(ctx context.Context) error {
	n := m.starts.Add(1)
	defer m.stops.Add(1)

	if n <= m.failures {
		return errors.New("simulated failure")
	}
	if m.err != nil {
		return m.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockService) String() string { return m.name }
