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
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
)

// GenerateOptions configures random graph generation.
type GenerateOptions struct {
	// Nodes is the number of nodes, named N0..N{Nodes-1}.
	Nodes int

	// Edges is the number of unique edges to emit.
	Edges int

	// Seed makes the output reproducible.
	Seed uint64
}

// NodeID returns the generated identifier for node index i.
func NodeID(i int) string {
	return fmt.Sprintf("N%d", i)
}

// Generate writes a random graph in the loader's line format.
//
// Description:
//
//	Emits every node declaration first, then Edges unique edge declarations.
//	Each edge joins two distinct nodes a < b and is written as "- Na Nb", so
//	the generated graph only has edges from lower to higher indices.
//
// Outputs:
//
//	error - ErrTooManyEdges if Edges exceeds Nodes*(Nodes-1)/2, a write
//	error, or the context error if cancelled.
func Generate(ctx context.Context, w io.Writer, opts GenerateOptions) error {
	if opts.Nodes < 0 || opts.Edges < 0 {
		return fmt.Errorf("generate: negative size (nodes=%d edges=%d)", opts.Nodes, opts.Edges)
	}
	maxEdges := int64(opts.Nodes) * int64(opts.Nodes-1) / 2
	if opts.Nodes < 2 {
		maxEdges = 0
	}
	if int64(opts.Edges) > maxEdges {
		return fmt.Errorf("%w: %d edges requested, %d possible", ErrTooManyEdges, opts.Edges, maxEdges)
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < opts.Nodes; i++ {
		if _, err := fmt.Fprintf(bw, "%s %s\n", nodeMarker, NodeID(i)); err != nil {
			return fmt.Errorf("write node: %w", err)
		}
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	seen := make(map[[2]int]struct{}, opts.Edges)
	for len(seen) < opts.Edges {
		if len(seen)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		a := rng.IntN(opts.Nodes)
		b := rng.IntN(opts.Nodes)
		if a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		key := [2]int{a, b}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		if _, err := fmt.Fprintf(bw, "%s %s %s\n", edgeMarker, NodeID(a), NodeID(b)); err != nil {
			return fmt.Errorf("write edge: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush graph: %w", err)
	}
	return nil
}
