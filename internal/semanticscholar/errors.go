// digestrec - Venue Co-Publication Paper Recommender
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/digestrec

package semanticscholar

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"unicode/utf8"
)

// ErrNotFound is wrapped by APIError for 404 responses.
var ErrNotFound = errors.New("semanticscholar: not found")

// APIError is a non-200 response from Semantic Scholar.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("semantic scholar %s: HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("semantic scholar %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Unwrap exposes ErrNotFound for 404 responses.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// errorMemo remembers the first failure of each endpoint.
type errorMemo struct {
	mu     sync.RWMutex
	errors map[string]error
}

func newErrorMemo() *errorMemo {
	return &errorMemo{errors: make(map[string]error)}
}

func (m *errorMemo) get(endpoint string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errors[endpoint]
}

func (m *errorMemo) put(endpoint string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.errors[endpoint]; !ok {
		m.errors[endpoint] = err
	}
}

func (m *errorMemo) len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.errors)
}

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
