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
	"fmt"
	"time"
)

// Default configuration values.
const (
	// DefaultMaxNodes is the default maximum number of nodes a graph can hold.
	DefaultMaxNodes = 10_000_000

	// DefaultMaxEdges is the default maximum number of edges a graph can hold.
	DefaultMaxEdges = 50_000_000
)

// GraphState represents the lifecycle state of the graph.
type GraphState int

const (
	// GraphStateBuilding indicates the graph is accepting AddNode/AddEdge calls.
	GraphStateBuilding GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and read-only.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateBuilding:
		return "building"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// Edge is a directed connection from Source to Target.
//
// The store keeps duplicate edges; deduplication is the generator's concern.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// String renders the edge as "source -> target".
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.Source, e.Target)
}

// GraphOptions configures graph capacity limits.
type GraphOptions struct {
	// MaxNodes is the maximum number of nodes. Default: DefaultMaxNodes.
	MaxNodes int

	// MaxEdges is the maximum number of edges. Default: DefaultMaxEdges.
	MaxEdges int
}

// GraphOption is a functional option for graph configuration.
type GraphOption func(*GraphOptions)

// DefaultGraphOptions returns the default graph options.
func DefaultGraphOptions() GraphOptions {
	return GraphOptions{
		MaxNodes: DefaultMaxNodes,
		MaxEdges: DefaultMaxEdges,
	}
}

// WithMaxNodes sets the maximum node capacity.
func WithMaxNodes(n int) GraphOption {
	return func(o *GraphOptions) {
		o.MaxNodes = n
	}
}

// WithMaxEdges sets the maximum edge capacity.
func WithMaxEdges(n int) GraphOption {
	return func(o *GraphOptions) {
		o.MaxEdges = n
	}
}

// GraphStats summarizes a graph for status output.
type GraphStats struct {
	NodeCount    int    `json:"node_count"`
	EdgeCount    int    `json:"edge_count"`
	State        string `json:"state"`
	BuiltAtMilli int64  `json:"built_at_milli"`
}

// BuiltAt returns the freeze time, or the zero time if not frozen.
func (s GraphStats) BuiltAt() time.Time {
	if s.BuiltAtMilli == 0 {
		return time.Time{}
	}
	return time.UnixMilli(s.BuiltAtMilli)
}
