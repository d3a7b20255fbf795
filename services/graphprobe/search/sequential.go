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
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// cancelCheckInterval is how many DFS steps run between context checks.
const cancelCheckInterval = 1024

// Sequential runs every query on the calling goroutine.
//
// It is the timing baseline and the correctness reference for Parallel.
//
// Thread Safety: safe for concurrent use if the store is.
type Sequential struct {
	store    Store
	maxDepth int
}

// NewSequential creates a sequential searcher over store. Only the MaxDepth
// option applies.
func NewSequential(store Store, opts ...Option) (*Sequential, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	options := buildOptions(opts)
	return &Sequential{store: store, maxDepth: options.MaxDepth}, nil
}

// NodeExists reports whether id is in the node set.
func (s *Sequential) NodeExists(id string) bool {
	return s.store.HasNode(id)
}

// EdgeExists scans the edge list in insertion order for source -> target.
func (s *Sequential) EdgeExists(source, target string) bool {
	for _, e := range s.store.Edges() {
		if e.Source == source && e.Target == target {
			return true
		}
	}
	return false
}

// dfsFrame is one level of the explicit DFS stack.
type dfsFrame struct {
	node      string
	neighbors []string
	next      int
}

// FindPath returns the first path from start to end in depth-first order.
//
// Description:
//
//	Neighbors are visited in Neighbors() order and a node is marked visited
//	when it is entered, so the result equals that of a recursive DFS with a
//	single visited set. The traversal uses an explicit stack.
//
// Inputs:
//
//	ctx - Checked periodically; cancellation aborts the search.
//	start, end - Node IDs. start == end yields [start] when present.
//
// Outputs:
//
//	Path - The path, or empty when none exists or an endpoint is absent.
//	error - The context error if cancelled.
func (s *Sequential) FindPath(ctx context.Context, start, end string) (Path, error) {
	ctx, span := startSearchSpan(ctx, StrategySequential, KindPath,
		attribute.String("search.start", start),
		attribute.String("search.end", end),
	)
	began := time.Now()

	path, err := s.findPath(ctx, start, end)

	recordSearch(ctx, StrategySequential, KindPath, time.Since(began), path.Found(), err)
	endSearchSpan(span, path.Found(), err)
	return path, err
}

func (s *Sequential) findPath(ctx context.Context, start, end string) (Path, error) {
	if !s.store.HasNode(start) || !s.store.HasNode(end) {
		return Path{}, nil
	}

	// visited holds the shallowest depth each node was entered at. Without a
	// depth bound any earlier entry is final.
	visited := map[string]int{start: 0}
	path := Path{start}
	stack := []dfsFrame{{node: start, neighbors: s.store.Neighbors(start)}}

	for steps := 0; len(stack) > 0; steps++ {
		if steps%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return Path{}, err
			}
		}

		top := &stack[len(stack)-1]
		if top.node == end {
			result := make(Path, len(path))
			copy(result, path)
			return result, nil
		}

		if top.next < len(top.neighbors) && (s.maxDepth == 0 || len(path)-1 < s.maxDepth) {
			n := top.neighbors[top.next]
			top.next++
			depth := len(path)
			if prev, seen := visited[n]; seen && (s.maxDepth == 0 || prev <= depth) {
				continue
			}
			visited[n] = depth
			path = append(path, n)
			stack = append(stack, dfsFrame{node: n, neighbors: s.store.Neighbors(n)})
			continue
		}

		stack = stack[:len(stack)-1]
		path = path[:len(path)-1]
	}

	slog.Debug("sequential path search exhausted",
		slog.String("start", start),
		slog.String("end", end),
		slog.Int("visited", len(visited)),
	)
	return Path{}, nil
}
