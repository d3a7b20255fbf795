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
	"time"
)

// Graph is the in-memory store of node identifiers and directed edges.
//
// Thread Safety:
//
//	Graph is NOT safe for concurrent use during building. It is designed
//	for single-writer access during load, then read-only after Freeze().
//	After Freeze() is called, the graph can be safely read from multiple
//	goroutines, and no further modifications are allowed.
type Graph struct {
	// nodes is the node set. Unexported to prevent direct access.
	nodes map[string]struct{}

	// nodeOrder holds node IDs in first-insertion order.
	nodeOrder []string

	// edges contains all edges in insertion order, duplicates included.
	edges []Edge

	// outgoing maps a source to its targets in edge-insertion order.
	// Secondary index over edges; Neighbors() reads it instead of scanning.
	outgoing map[string][]string

	state   GraphState
	options GraphOptions

	// BuiltAtMilli is the Unix timestamp in milliseconds when Freeze() was called.
	BuiltAtMilli int64
}

// NewGraph creates a new empty graph in the Building state.
//
// Example:
//
//	g := NewGraph()
//	g.AddNode("N0")
//	g.AddNode("N1")
//	g.AddEdge("N0", "N1")
//	g.Freeze()
func NewGraph(opts ...GraphOption) *Graph {
	options := DefaultGraphOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Graph{
		nodes:    make(map[string]struct{}),
		edges:    make([]Edge, 0),
		outgoing: make(map[string][]string),
		state:    GraphStateBuilding,
		options:  options,
	}
}

// State returns the current lifecycle state of the graph.
func (g *Graph) State() GraphState {
	return g.state
}

// IsFrozen returns true if the graph is in read-only mode.
func (g *Graph) IsFrozen() bool {
	return g.state == GraphStateReadOnly
}

// Freeze transitions the graph to read-only mode. Irreversible.
func (g *Graph) Freeze() {
	if g.state == GraphStateReadOnly {
		return
	}
	g.state = GraphStateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// AddNode inserts id into the node set.
//
// Description:
//
//	Idempotent: adding an existing node is a no-op that reports false.
//
// Outputs:
//
//	bool - True if the node was newly inserted.
//	error - ErrGraphFrozen, ErrInvalidNode (empty id) or ErrMaxNodesExceeded.
func (g *Graph) AddNode(id string) (bool, error) {
	if g.state == GraphStateReadOnly {
		return false, ErrGraphFrozen
	}
	if id == "" {
		return false, ErrInvalidNode
	}
	if _, exists := g.nodes[id]; exists {
		return false, nil
	}
	if len(g.nodes) >= g.options.MaxNodes {
		return false, ErrMaxNodesExceeded
	}

	g.nodes[id] = struct{}{}
	g.nodeOrder = append(g.nodeOrder, id)
	return true, nil
}

// AddEdge appends the directed edge source -> target.
//
// Description:
//
//	The edge is kept only if both endpoints already exist. An edge with an
//	unknown endpoint is discarded without an error; the caller learns about
//	it through the false return value.
//
// Outputs:
//
//	bool - True if the edge was stored.
//	error - ErrGraphFrozen or ErrMaxEdgesExceeded.
func (g *Graph) AddEdge(source, target string) (bool, error) {
	if g.state == GraphStateReadOnly {
		return false, ErrGraphFrozen
	}
	if !g.HasNode(source) || !g.HasNode(target) {
		return false, nil
	}
	if len(g.edges) >= g.options.MaxEdges {
		return false, ErrMaxEdgesExceeded
	}

	g.edges = append(g.edges, Edge{Source: source, Target: target})
	g.outgoing[source] = append(g.outgoing[source], target)
	return true, nil
}

// HasNode reports whether id is in the node set.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Neighbors returns every target of an edge whose source is id, in
// edge-insertion order. Returns an empty slice when there are none.
//
// The returned slice is shared with the index and must not be modified.
func (g *Graph) Neighbors(id string) []string {
	if targets, ok := g.outgoing[id]; ok {
		return targets
	}
	return []string{}
}

// NeighborsScan is the O(E) reference form of Neighbors. It walks the edge
// list and must always agree with the adjacency index.
func (g *Graph) NeighborsScan(id string) []string {
	neighbors := make([]string, 0)
	for _, e := range g.edges {
		if e.Source == id {
			neighbors = append(neighbors, e.Target)
		}
	}
	return neighbors
}

// Nodes returns the node IDs in insertion order.
//
// The returned slice is shared and must not be modified.
func (g *Graph) Nodes() []string {
	return g.nodeOrder
}

// Edges returns the edges in insertion order.
//
// The returned slice is shared and must not be modified.
func (g *Graph) Edges() []Edge {
	return g.edges
}

// Stats returns a summary of the graph.
func (g *Graph) Stats() GraphStats {
	return GraphStats{
		NodeCount:    len(g.nodes),
		EdgeCount:    len(g.edges),
		State:        g.state.String(),
		BuiltAtMilli: g.BuiltAtMilli,
	}
}
