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
	"sync"
	"sync/atomic"
)

// ClaimSet is the visited set shared by concurrent path-search tasks.
//
// Claim is a single indivisible insert-if-absent. The task whose Claim
// returns true owns the node and is the only one that may expand from it.
//
// ClaimAt is used by depth-bounded searches: a node reached first by a long
// route may be claimed again by a strictly shorter one, so the bound never
// hides a path.
type ClaimSet interface {
	// Claim inserts node and reports whether this call inserted it.
	Claim(node string) bool

	// ClaimAt records node at depth and reports whether this call inserted
	// it or lowered its recorded depth.
	ClaimAt(node string, depth int) bool

	// Claimed reports whether node has been claimed.
	Claimed(node string) bool

	// Len returns the number of claimed nodes.
	Len() int
}

// syncClaimSet implements ClaimSet over sync.Map. Each value is the
// shallowest depth the node was claimed at.
type syncClaimSet struct {
	nodes sync.Map
	count atomic.Int64
}

// NewClaimSet returns an empty ClaimSet with seed nodes already claimed.
//
// Thread Safety: safe for concurrent use.
func NewClaimSet(seed ...string) ClaimSet {
	s := &syncClaimSet{}
	for _, node := range seed {
		s.Claim(node)
	}
	return s
}

func (s *syncClaimSet) Claim(node string) bool {
	return s.ClaimAt(node, 0)
}

func (s *syncClaimSet) ClaimAt(node string, depth int) bool {
	fresh := new(atomic.Int64)
	fresh.Store(int64(depth))

	v, loaded := s.nodes.LoadOrStore(node, fresh)
	if !loaded {
		s.count.Add(1)
		return true
	}

	best := v.(*atomic.Int64)
	for {
		cur := best.Load()
		if cur <= int64(depth) {
			return false
		}
		if best.CompareAndSwap(cur, int64(depth)) {
			return true
		}
	}
}

func (s *syncClaimSet) Claimed(node string) bool {
	_, ok := s.nodes.Load(node)
	return ok
}

func (s *syncClaimSet) Len() int {
	return int(s.count.Load())
}
