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
	"fmt"
	"strings"

	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
)

// Store is the read-only view of a graph that searches need.
//
// *graph.Graph satisfies it. Implementations must be safe for concurrent
// reads, which a frozen graph is.
type Store interface {
	HasNode(id string) bool
	Neighbors(id string) []string
	Nodes() []string
	Edges() []graph.Edge
}

// Strategy names a search implementation in logs, spans and metrics.
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyParallel   Strategy = "parallel"
)

// Kind names a query type.
type Kind string

const (
	KindNode Kind = "node"
	KindEdge Kind = "edge"
	KindPath Kind = "path"
)

// Path is an ordered sequence of node IDs. An empty path means no path.
type Path []string

// Found reports whether the path is non-empty.
func (p Path) Found() bool {
	return len(p) > 0
}

// String renders the path as "a -> b -> c".
func (p Path) String() string {
	return strings.Join(p, " -> ")
}

// Validate checks that p is a directed walk in s from start to end.
//
// Outputs:
//
//	error - Non-nil describing the first violation. An empty path is
//	invalid.
func (p Path) Validate(s Store, start, end string) error {
	if len(p) == 0 {
		return fmt.Errorf("path is empty")
	}
	if p[0] != start {
		return fmt.Errorf("path starts at %q, want %q", p[0], start)
	}
	if p[len(p)-1] != end {
		return fmt.Errorf("path ends at %q, want %q", p[len(p)-1], end)
	}
	for i := 0; i+1 < len(p); i++ {
		if !hasNeighbor(s, p[i], p[i+1]) {
			return fmt.Errorf("no edge %s -> %s at step %d", p[i], p[i+1], i)
		}
	}
	return nil
}

func hasNeighbor(s Store, source, target string) bool {
	for _, n := range s.Neighbors(source) {
		if n == target {
			return true
		}
	}
	return false
}

// extend returns a copy of p with node appended. The copy never shares
// backing storage with p.
func (p Path) extend(node string) Path {
	next := make(Path, len(p)+1)
	copy(next, p)
	next[len(p)] = node
	return next
}
