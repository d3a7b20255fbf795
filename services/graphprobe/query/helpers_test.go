// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
	"github.com/AleutianAI/graphprobe/services/graphprobe/search"
)

// chainGraph is N0..N4 with N0->N1->N2->N3.
func chainGraph(t *testing.T) *graph.Graph {
	t.Helper()

	g := graph.NewGraph()
	for _, n := range []string{"N0", "N1", "N2", "N3", "N4"} {
		_, err := g.AddNode(n)
		require.NoError(t, err)
	}
	for _, e := range [][2]string{{"N0", "N1"}, {"N1", "N2"}, {"N2", "N3"}} {
		_, err := g.AddEdge(e[0], e[1])
		require.NoError(t, err)
	}
	g.Freeze()
	return g
}

func newDispatcher(t *testing.T, opts ...DispatcherOption) *Dispatcher {
	t.Helper()

	opts = append([]DispatcherOption{WithSearchOptions(search.WithWorkers(2))}, opts...)
	d, err := NewDispatcher(chainGraph(t), opts...)
	require.NoError(t, err)
	return d
}
