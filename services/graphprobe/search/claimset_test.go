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
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClaimSet_Seeded(t *testing.T) {
	s := NewClaimSet("A")

	assert.True(t, s.Claimed("A"))
	assert.False(t, s.Claim("A"))
	assert.True(t, s.Claim("B"))
	assert.False(t, s.Claim("B"))
	assert.Equal(t, 2, s.Len())
}

func TestClaimSet_SingleWinnerPerNode(t *testing.T) {
	s := NewClaimSet()

	const goroutines, nodes = 16, 500
	var wins atomic.Int64
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < nodes; i++ {
				if s.Claim(strconv.Itoa(i)) {
					wins.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(nodes), wins.Load())
	assert.Equal(t, nodes, s.Len())
}

func TestClaimSet_ClaimAt(t *testing.T) {
	s := NewClaimSet("S")

	assert.True(t, s.ClaimAt("B", 2))
	assert.False(t, s.ClaimAt("B", 2), "same depth does not reclaim")
	assert.False(t, s.ClaimAt("B", 3))
	assert.True(t, s.ClaimAt("B", 1), "shallower route reclaims")
	assert.False(t, s.ClaimAt("S", 1), "seed is held at depth zero")
	assert.False(t, s.Claim("B"))
	assert.Equal(t, 2, s.Len())
}

func TestClaimSet_ClaimAtConcurrentShallowestWins(t *testing.T) {
	s := NewClaimSet()

	var wg sync.WaitGroup
	var zeroWins atomic.Int64
	for d := 10; d >= 0; d-- {
		wg.Add(1)
		go func(depth int) {
			defer wg.Done()
			if s.ClaimAt("X", depth) && depth == 0 {
				zeroWins.Add(1)
			}
		}(d)
	}
	wg.Wait()

	assert.Equal(t, int64(1), zeroWins.Load())
	assert.False(t, s.ClaimAt("X", 0))
	assert.Equal(t, 1, s.Len())
}
