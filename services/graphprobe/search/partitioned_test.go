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
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
)

func TestShards(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
		want    []Shard
	}{
		{"even split", 8, 4, []Shard{{0, 2}, {2, 4}, {4, 6}, {6, 8}}},
		{"last absorbs remainder", 10, 4, []Shard{{0, 2}, {2, 4}, {4, 6}, {6, 10}}},
		{"fewer items than workers", 3, 4, []Shard{{0, 0}, {0, 0}, {0, 0}, {0, 3}}},
		{"single worker", 5, 1, []Shard{{0, 5}}},
		{"empty", 0, 4, nil},
		{"no workers", 5, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Shards(tt.n, tt.workers))
		})
	}
}

func TestShards_CoverEveryIndexOnce(t *testing.T) {
	for n := 1; n <= 40; n++ {
		for workers := 1; workers <= 7; workers++ {
			covered := make([]int, n)
			for _, s := range Shards(n, workers) {
				for i := s.Start; i < s.End; i++ {
					covered[i]++
				}
			}
			for i, c := range covered {
				require.Equal(t, 1, c, "n=%d workers=%d index=%d", n, workers, i)
			}
		}
	}
}

func TestNewParallel_NilStore(t *testing.T) {
	_, err := NewParallel(nil)
	assert.ErrorIs(t, err, ErrNilStore)
}

func TestParallel_Existence(t *testing.T) {
	ctx := context.Background()
	_, par := newSearchers(t, chainGraph(t))

	for _, id := range []string{"N0", "N1", "N2", "N3", "N4"} {
		found, err := par.NodeExists(ctx, id)
		require.NoError(t, err)
		assert.True(t, found, id)
	}

	found, err := par.NodeExists(ctx, "N9")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = par.EdgeExists(ctx, "N0", "N1")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = par.EdgeExists(ctx, "N1", "N0")
	require.NoError(t, err)
	assert.False(t, found, "edges are directed")

	found, err = par.EdgeExists(ctx, "N2", "N3")
	require.NoError(t, err)
	assert.True(t, found, "match in the last shard")
}

func TestParallel_EmptyStore(t *testing.T) {
	_, par := newSearchers(t, buildGraph(t, nil, nil))

	found, err := par.NodeExists(context.Background(), "A")
	require.NoError(t, err)
	assert.False(t, found)

	found, err = par.EdgeExists(context.Background(), "A", "B")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestParallel_ExistenceAgreesWithSequential(t *testing.T) {
	ctx := context.Background()
	g := randomGraph(t, 300, 900, 7)
	rng := rand.New(rand.NewPCG(7, 11))

	for _, workers := range []int{1, 3, 4, 16} {
		seq, par := newSearchers(t, g, WithWorkers(workers))

		for i := 0; i < 200; i++ {
			// Ids beyond the node range are absent.
			id := graph.NodeID(rng.IntN(320))
			found, err := par.NodeExists(ctx, id)
			require.NoError(t, err)
			require.Equal(t, seq.NodeExists(id), found, "node %s workers=%d", id, workers)

			a, b := graph.NodeID(rng.IntN(300)), graph.NodeID(rng.IntN(300))
			found, err = par.EdgeExists(ctx, a, b)
			require.NoError(t, err)
			require.Equal(t, seq.EdgeExists(a, b), found, "edge %s->%s workers=%d", a, b, workers)
		}

		// Every stored edge is found.
		for _, e := range g.Edges()[:50] {
			found, err := par.EdgeExists(ctx, e.Source, e.Target)
			require.NoError(t, err)
			require.True(t, found, "edge %s", e)
		}
	}
}

func TestParallel_ExistenceIdempotent(t *testing.T) {
	ctx := context.Background()
	_, par := newSearchers(t, chainGraph(t))

	for i := 0; i < 10; i++ {
		found, err := par.NodeExists(ctx, "N3")
		require.NoError(t, err)
		assert.True(t, found)

		found, err = par.EdgeExists(ctx, "N1", "N0")
		require.NoError(t, err)
		assert.False(t, found)
	}
}

func TestParallel_ExistenceCancelled(t *testing.T) {
	_, par := newSearchers(t, chainGraph(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	found, err := par.NodeExists(ctx, "missing")
	assert.False(t, found)
	assert.ErrorIs(t, err, context.Canceled)
}
