// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package api

import (
	"net/http"
	"time"
)

// HealthStatus is the /healthz payload.
type HealthStatus struct {
	Status    string            `json:"status"`
	Version   string            `json:"version,omitempty"`
	Uptime    float64           `json:"uptime_seconds"`
	Runs      int64             `json:"runs"`
	LastRunAt *time.Time        `json:"last_run_at,omitempty"`
	Breakers  map[string]string `json:"circuit_breakers,omitempty"`
}

// Health reports "degraded" while any circuit breaker is open and "healthy"
// otherwise. The status code is 200 in both cases.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:  "healthy",
		Version: h.version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}

	if len(h.breakers) > 0 {
		health.Breakers = make(map[string]string, len(h.breakers))
		for name, state := range h.breakers {
			s := state()
			health.Breakers[name] = s
			if s == "open" {
				health.Status = "degraded"
			}
		}
	}

	if h.status != nil {
		health.Runs = h.status.Runs()
		if last := h.status.LastRun(); last != nil {
			at := last.StartedAt
			health.LastRunAt = &at
		}
	}

	respondJSON(w, r, http.StatusOK, health)
}

// LastRun returns the most recent completed run.
func (h *Handler) LastRun(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Run status not available")
		return
	}
	last := h.status.LastRun()
	if last == nil {
		respondError(w, r, http.StatusNotFound, "NO_RUNS", "No run has completed yet")
		return
	}
	respondJSON(w, r, http.StatusOK, last)
}

// Venues lists the vocabulary in index order.
func (h *Handler) Venues(w http.ResponseWriter, r *http.Request) {
	if h.venues == nil {
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Venue vocabulary not available")
		return
	}
	venues := h.venues.Snapshot()
	respondJSON(w, r, http.StatusOK, map[string]any{
		"count":  len(venues),
		"venues": venues,
	})
}
