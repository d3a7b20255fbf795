// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search answers node, edge and reachability queries against a loaded
// graph, sequentially and on a bounded worker pool.
//
// Sequential is the single-goroutine baseline. Parallel runs the same queries
// across a fresh pool.Pool per query: existence checks are split into
// contiguous shards, and path search spawns one task per claimed neighbor.
// Both strategies must agree on every existence answer; the paths they return
// may differ.
package search

import "errors"

// Sentinel errors for search operations.
var (
	// ErrSearchTimeout is returned when a parallel path search polls without a
	// completion more times in a row than the configured budget allows.
	ErrSearchTimeout = errors.New("search exceeded time budget")

	// ErrNilStore is returned when a search is constructed without a store.
	ErrNilStore = errors.New("store must not be nil")
)
