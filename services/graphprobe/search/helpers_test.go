// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
)

// buildGraph creates a frozen graph from node IDs and edge pairs.
func buildGraph(t *testing.T, nodes []string, edges [][2]string) *graph.Graph {
	t.Helper()

	g := graph.NewGraph()
	for _, n := range nodes {
		_, err := g.AddNode(n)
		require.NoError(t, err)
	}
	for _, e := range edges {
		_, err := g.AddEdge(e[0], e[1])
		require.NoError(t, err)
	}
	g.Freeze()
	return g
}

// chainGraph is N0..N4 with N0->N1->N2->N3.
func chainGraph(t *testing.T) *graph.Graph {
	return buildGraph(t,
		[]string{"N0", "N1", "N2", "N3", "N4"},
		[][2]string{{"N0", "N1"}, {"N1", "N2"}, {"N2", "N3"}},
	)
}

// randomGraph generates and loads a seeded random graph.
func randomGraph(t *testing.T, nodes, edges int, seed uint64) *graph.Graph {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, graph.Generate(context.Background(), &buf,
		graph.GenerateOptions{Nodes: nodes, Edges: edges, Seed: seed}))

	result, err := graph.Load(context.Background(), &buf)
	require.NoError(t, err)
	return result.Graph
}

func newSearchers(t *testing.T, store Store, opts ...Option) (*Sequential, *Parallel) {
	t.Helper()

	seq, err := NewSequential(store, opts...)
	require.NoError(t, err)
	par, err := NewParallel(store, opts...)
	require.NoError(t, err)
	return seq, par
}
