// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph provides the in-memory directed graph store queried by
// graphprobe, together with its line-oriented loader and generator.
//
// # Thread Safety
//
// Graph is NOT safe for concurrent use during building. It is designed for:
//   - Single-writer access during the load phase (AddNode, AddEdge calls)
//   - Read-only access after Freeze() is called
//
// After Freeze(), the graph can be safely read from multiple goroutines
// without synchronization. Searches never mutate the store.
//
// # Lifecycle
//
//  1. Create with NewGraph()
//  2. Populate with AddNode() and AddEdge(), usually through Load()
//  3. Call Freeze() to finalize
//  4. Query with HasNode(), Neighbors(), Nodes(), Edges()
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrInvalidNode is returned when attempting to add an empty node ID.
	ErrInvalidNode = errors.New("invalid node")

	// ErrMaxNodesExceeded is returned when the graph has reached its
	// configured maximum node capacity.
	ErrMaxNodesExceeded = errors.New("maximum node count exceeded")

	// ErrMaxEdgesExceeded is returned when the graph has reached its
	// configured maximum edge capacity.
	ErrMaxEdgesExceeded = errors.New("maximum edge count exceeded")

	// ErrLoadCancelled is returned when a load is cancelled via context.
	ErrLoadCancelled = errors.New("load cancelled")

	// ErrTooManyEdges is returned by Generate when more unique edges are
	// requested than the node count allows.
	ErrTooManyEdges = errors.New("requested edge count exceeds unique pairs")
)
