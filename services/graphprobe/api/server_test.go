// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
	"github.com/AleutianAI/graphprobe/services/graphprobe/query"
	"github.com/AleutianAI/graphprobe/services/graphprobe/search"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const chainGraphText = `* N0
* N1
* N2
* N3
* N4
- N0 N1
- N1 N2
- N2 N3
- N3 N9
`

func loadDispatcher(t *testing.T, text string) *query.Dispatcher {
	t.Helper()

	result, err := graph.Load(context.Background(), strings.NewReader(text))
	require.NoError(t, err)

	d, err := query.NewDispatcher(result.Graph,
		query.WithLoadResult(result),
		query.WithSearchOptions(search.WithWorkers(2)),
	)
	require.NoError(t, err)
	return d
}

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	s, err := New(loadDispatcher(t, chainGraphText), opts...)
	require.NoError(t, err)
	return s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestNew_NilDispatcher(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilDispatcher)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodGet, "/v1/graphprobe/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, 5, resp.Nodes)
	assert.Equal(t, 3, resp.Edges)
}

func TestStats(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodGet, "/v1/graphprobe/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[StatsResponse](t, w)
	assert.Equal(t, 5, resp.Graph.NodeCount)
	require.NotNil(t, resp.Load)
	assert.Equal(t, 1, resp.Load.DroppedEdges)
	assert.Equal(t, []graph.Edge{{Source: "N3", Target: "N9"}}, resp.Load.DroppedSamples)
}

func TestQuery_Path(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/v1/graphprobe/query", QueryRequest{Command: "path N0 N3"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[QueryResponse](t, w)
	assert.NotEmpty(t, resp.QueryID)
	assert.Equal(t, "path N0 N3", resp.Command)
	require.Len(t, resp.Outcomes, 2)
	for _, o := range resp.Outcomes {
		assert.True(t, o.Found, o.Strategy)
		assert.Equal(t, []string{"N0", "N1", "N2", "N3"}, o.Path)
		assert.Empty(t, o.Error)
	}
}

func TestQuery_ExistenceAndListings(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		command string
		check   func(t *testing.T, resp QueryResponse)
	}{
		{"edge N1 N0", func(t *testing.T, resp QueryResponse) {
			require.Len(t, resp.Outcomes, 2)
			assert.False(t, resp.Outcomes[0].Found)
			assert.False(t, resp.Outcomes[1].Found)
		}},
		{"node N4", func(t *testing.T, resp QueryResponse) {
			assert.True(t, resp.Outcomes[1].Found)
		}},
		{"nodes", func(t *testing.T, resp QueryResponse) {
			assert.Len(t, resp.Nodes, 5)
		}},
		{"edges", func(t *testing.T, resp QueryResponse) {
			assert.Len(t, resp.Edges, 3)
		}},
		{"help", func(t *testing.T, resp QueryResponse) {
			assert.NotEmpty(t, resp.Help)
		}},
		{"stats", func(t *testing.T, resp QueryResponse) {
			require.NotNil(t, resp.Stats)
			assert.Equal(t, 3, resp.Stats.Graph.EdgeCount)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			w := doJSON(t, s.Handler(), http.MethodPost, "/v1/graphprobe/query", QueryRequest{Command: tt.command})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			tt.check(t, decode[QueryResponse](t, w))
		})
	}
}

func TestQuery_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
		code string
	}{
		{"missing command", map[string]string{}, CodeInvalidRequest},
		{"unknown command", QueryRequest{Command: "teleport N0"}, CodeInvalidCommand},
		{"wrong arity", QueryRequest{Command: "path N0"}, CodeInvalidCommand},
		{"exit", QueryRequest{Command: "exit"}, CodeUnsupportedCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s.Handler(), http.MethodPost, "/v1/graphprobe/query", tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, WithRateLimit(0.001, 2))

	for i := 0; i < 2; i++ {
		w := doJSON(t, s.Handler(), http.MethodGet, "/v1/graphprobe/stats", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, s.Handler(), http.MethodPost, "/v1/graphprobe/query", QueryRequest{Command: "nodes"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, CodeRateLimited, decode[ErrorResponse](t, w).Code)

	// Health is never limited.
	w = doJSON(t, s.Handler(), http.MethodGet, "/v1/graphprobe/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_Disabled(t *testing.T) {
	s := newTestServer(t, WithRateLimit(0, 0))
	assert.Nil(t, s.limiter)
}

func TestSwapAndReload(t *testing.T) {
	s := newTestServer(t)

	path := filepath.Join(t.TempDir(), "graph.txt")
	require.NoError(t, os.WriteFile(path, []byte("* A\n* B\n- A B\n"), 0o600))

	s.Reload(context.Background(), path)
	assert.Equal(t, int64(1), s.Reloads())

	w := doJSON(t, s.Handler(), http.MethodPost, "/v1/graphprobe/query", QueryRequest{Command: "path A B"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[QueryResponse](t, w)
	assert.Equal(t, []string{"A", "B"}, resp.Outcomes[0].Path)

	// A failed reload keeps the active graph.
	s.Reload(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Equal(t, int64(1), s.Reloads())
	assert.Equal(t, 2, s.Dispatcher().Graph().Stats().NodeCount)

	s.Swap(nil)
	assert.NotNil(t, s.Dispatcher())
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	cancel()
	assert.NoError(t, <-done)
}
