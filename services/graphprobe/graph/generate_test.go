// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	err := Generate(context.Background(), &buf, GenerateOptions{Nodes: 200, Edges: 500, Seed: 42})
	require.NoError(t, err)

	result, err := Load(context.Background(), &buf)
	require.NoError(t, err)

	assert.Equal(t, 200, result.NodeCount)
	assert.Equal(t, 500, result.EdgeCount)
	assert.Zero(t, result.DroppedEdges)
	assert.Zero(t, result.MalformedCount)

	seen := make(map[Edge]bool)
	for _, e := range result.Graph.Edges() {
		assert.False(t, seen[e], "duplicate edge %s", e)
		seen[e] = true

		a, _ := strconv.Atoi(strings.TrimPrefix(e.Source, "N"))
		b, _ := strconv.Atoi(strings.TrimPrefix(e.Target, "N"))
		assert.Less(t, a, b, "edge %s should run low to high", e)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	var first, second bytes.Buffer
	opts := GenerateOptions{Nodes: 50, Edges: 100, Seed: 9}

	require.NoError(t, Generate(context.Background(), &first, opts))
	require.NoError(t, Generate(context.Background(), &second, opts))
	assert.Equal(t, first.String(), second.String())
}

func TestGenerate_Complete(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Generate(context.Background(), &buf, GenerateOptions{Nodes: 5, Edges: 10, Seed: 1}))

	result, err := Load(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 10, result.EdgeCount)
}

func TestGenerate_Errors(t *testing.T) {
	var buf bytes.Buffer

	err := Generate(context.Background(), &buf, GenerateOptions{Nodes: 5, Edges: 11})
	assert.ErrorIs(t, err, ErrTooManyEdges)

	err = Generate(context.Background(), &buf, GenerateOptions{Nodes: 1, Edges: 1})
	assert.ErrorIs(t, err, ErrTooManyEdges)

	err = Generate(context.Background(), &buf, GenerateOptions{Nodes: -1})
	assert.Error(t, err)
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := Generate(ctx, &buf, GenerateOptions{Nodes: 10, Edges: 5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNodeID(t *testing.T) {
	assert.Equal(t, "N0", NodeID(0))
	assert.Equal(t, "N123", NodeID(123))
}
