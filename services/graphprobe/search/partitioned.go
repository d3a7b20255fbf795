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
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/graphprobe/services/graphprobe/pool"
)

// Shard is the half-open index range [Start, End) of one worker's slice.
type Shard struct {
	Start int
	End   int
}

// Len returns the number of items in the shard.
func (s Shard) Len() int {
	return s.End - s.Start
}

// Shards splits n items into workers contiguous shards of n/workers items.
// The last shard absorbs the remainder. Returns nil when n or workers is not
// positive.
//
// Example:
//
//	Shards(10, 4) // [0,2) [2,4) [4,6) [6,10)
func Shards(n, workers int) []Shard {
	if n <= 0 || workers <= 0 {
		return nil
	}

	size := n / workers
	shards := make([]Shard, workers)
	for i := range shards {
		shards[i] = Shard{Start: i * size, End: (i + 1) * size}
	}
	shards[workers-1].End = n
	return shards
}

// Parallel runs queries on a fresh bounded worker pool per query.
//
// Thread Safety: safe for concurrent use if the store is. Each call owns its
// own pool.
type Parallel struct {
	store   Store
	options Options
}

// NewParallel creates a parallel searcher over store.
func NewParallel(store Store, opts ...Option) (*Parallel, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	return &Parallel{store: store, options: buildOptions(opts)}, nil
}

// Options returns the effective settings.
func (p *Parallel) Options() Options {
	return p.options
}

// NodeExists scans the node list in shards for id.
func (p *Parallel) NodeExists(ctx context.Context, id string) (bool, error) {
	nodes := p.store.Nodes()
	return p.scan(ctx, KindNode, len(nodes), func(i int) bool {
		return nodes[i] == id
	}, attribute.String("search.node", id))
}

// EdgeExists scans the edge list in shards for source -> target.
func (p *Parallel) EdgeExists(ctx context.Context, source, target string) (bool, error) {
	edges := p.store.Edges()
	return p.scan(ctx, KindEdge, len(edges), func(i int) bool {
		return edges[i].Source == source && edges[i].Target == target
	}, attribute.String("search.source", source), attribute.String("search.target", target))
}

// scan runs match over [0, n) split into shards, one pool unit per non-empty
// shard, and returns true as soon as any shard matches.
//
// Description:
//
//	Completions are consumed in completion order. The first true wins and
//	the pool is shut down immediately, which stops the remaining scans at
//	their next cancellation check. An empty collection submits no work.
//
// Outputs:
//
//	bool - True if any shard matched.
//	error - Context error, or the joined shard errors when no shard matched
//	and at least one failed.
func (p *Parallel) scan(ctx context.Context, kind Kind, n int, match func(i int) bool, attrs ...attribute.KeyValue) (found bool, err error) {
	ctx, span := startSearchSpan(ctx, StrategyParallel, kind, attrs...)
	began := time.Now()
	defer func() {
		recordSearch(ctx, StrategyParallel, kind, time.Since(began), found, err)
		endSearchSpan(span, found, err)
	}()

	shards := Shards(n, p.options.Workers)
	if len(shards) == 0 {
		return false, nil
	}

	wp, err := pool.New[bool](p.options.Workers, pool.WithQueueSize(len(shards)))
	if err != nil {
		return false, fmt.Errorf("create pool: %w", err)
	}
	defer wp.Shutdown(pool.ShutdownImmediate)

	submitted := 0
	for _, shard := range shards {
		if shard.Len() == 0 {
			continue
		}
		if _, err := wp.Submit(scanShard(shard, match)); err != nil {
			return false, fmt.Errorf("submit shard: %w", err)
		}
		submitted++
	}

	var shardErrs []error
	for collected := 0; collected < submitted; collected++ {
		c, err := wp.AwaitAny(ctx, 0)
		if err != nil {
			return false, err
		}
		if c.Err != nil {
			recordTaskFailure(ctx, kind)
			slog.Warn("shard scan failed",
				slog.String("kind", string(kind)),
				slog.Uint64("handle", uint64(c.Handle)),
				slog.String("error", c.Err.Error()),
			)
			shardErrs = append(shardErrs, c.Err)
			continue
		}
		if c.Value {
			return true, nil
		}
	}

	return false, errors.Join(shardErrs...)
}

// scanShard returns a unit that linearly scans one shard.
func scanShard(shard Shard, match func(i int) bool) pool.Task[bool] {
	return func(ctx context.Context) (bool, error) {
		for i := shard.Start; i < shard.End; i++ {
			if (i-shard.Start)%cancelCheckInterval == 0 && ctx.Err() != nil {
				return false, ctx.Err()
			}
			if match(i) {
				return true, nil
			}
		}
		return false, nil
	}
}
