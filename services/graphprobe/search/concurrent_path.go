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
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/graphprobe/services/graphprobe/pool"
)

// pathTask is one unit of the parallel path search. Each task owns its path.
type pathTask struct {
	node string
	path Path
}

// expansion is the result of running a pathTask: either the finished path,
// or the child tasks for every neighbor the task claimed.
type expansion struct {
	path     Path
	children []pathTask
	claimed  int
}

// pathSearch holds the state shared by the tasks of one FindPath call.
type pathSearch struct {
	store    Store
	options  Options
	end      string
	claims   ClaimSet
	found    atomic.Bool
	expanded atomic.Int64
}

// FindPath searches for any directed path from start to end on a bounded
// worker pool.
//
// Description:
//
//	Each task expands one node. It claims every neighbor in the shared
//	ClaimSet and returns one child task per successful claim, so no node is
//	expanded twice. With MaxDepth set, a node may be reclaimed by a strictly
//	shallower route so the bound never hides a path. The driver alone
//	submits work: children go to the pool queue and overflow waits in a
//	local frontier. outstanding counts tasks
//	created but not yet completed; the search ends when a task reports a
//	path, when outstanding reaches zero, or after MaxPollTimeouts
//	consecutive polls return nothing.
//
//	The returned path is a valid walk but need not match Sequential's or be
//	the shortest.
//
// Outputs:
//
//	Path - The path found, or empty.
//	error - ErrSearchTimeout when the poll budget ran out, the context
//	error, or joined task errors when no path was found and tasks failed.
func (p *Parallel) FindPath(ctx context.Context, start, end string) (result Path, err error) {
	ctx, span := startSearchSpan(ctx, StrategyParallel, KindPath,
		attribute.String("search.start", start),
		attribute.String("search.end", end),
	)
	began := time.Now()
	defer func() {
		recordSearch(ctx, StrategyParallel, KindPath, time.Since(began), result.Found(), err)
		endSearchSpan(span, result.Found(), err)
	}()

	if !p.store.HasNode(start) || !p.store.HasNode(end) {
		return Path{}, nil
	}

	wp, err := pool.New[expansion](p.options.Workers, pool.WithQueueSize(p.options.QueueSize))
	if err != nil {
		return Path{}, fmt.Errorf("create pool: %w", err)
	}
	defer wp.Shutdown(pool.ShutdownImmediate)

	s := &pathSearch{
		store:   p.store,
		options: p.options,
		end:     end,
		claims:  NewClaimSet(start),
	}

	frontier := []pathTask{{node: start, path: Path{start}}}
	outstanding := 1
	recordTasksSpawned(ctx, 1)

	var (
		timeouts int
		taskErrs []error
	)

	for outstanding > 0 {
		if err := s.flush(wp, &frontier); err != nil {
			return Path{}, err
		}

		c, err := wp.AwaitAny(ctx, p.options.PollTimeout)
		if errors.Is(err, pool.ErrAwaitTimeout) {
			timeouts++
			recordPollTimeout(ctx)
			slog.Warn("path search poll timed out",
				slog.String("start", start),
				slog.String("end", end),
				slog.Int("outstanding", outstanding),
				slog.Int("consecutive_timeouts", timeouts),
			)
			if p.options.MaxPollTimeouts > 0 && timeouts >= p.options.MaxPollTimeouts {
				s.found.Store(true)
				return Path{}, ErrSearchTimeout
			}
			continue
		}
		if err != nil {
			return Path{}, err
		}
		timeouts = 0
		outstanding--

		if c.Err != nil {
			recordTaskFailure(ctx, KindPath)
			slog.Warn("path search task failed",
				slog.Uint64("handle", uint64(c.Handle)),
				slog.String("error", c.Err.Error()),
			)
			taskErrs = append(taskErrs, c.Err)
			continue
		}

		recordClaims(ctx, c.Value.claimed)
		if c.Value.path.Found() {
			s.found.Store(true)
			span.SetAttributes(attribute.Int("search.expanded", int(s.expanded.Load())))
			return c.Value.path, nil
		}

		frontier = append(frontier, c.Value.children...)
		outstanding += len(c.Value.children)
		recordTasksSpawned(ctx, len(c.Value.children))
	}

	span.SetAttributes(attribute.Int("search.expanded", int(s.expanded.Load())))
	return Path{}, errors.Join(taskErrs...)
}

// flush moves frontier tasks onto the pool until the queue is full. The most
// recently spawned task goes first.
func (s *pathSearch) flush(wp *pool.Pool[expansion], frontier *[]pathTask) error {
	for len(*frontier) > 0 {
		last := len(*frontier) - 1
		_, err := wp.TrySubmit(s.task((*frontier)[last]))
		if errors.Is(err, pool.ErrQueueFull) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("submit path task: %w", err)
		}
		(*frontier)[last] = pathTask{}
		*frontier = (*frontier)[:last]
	}
	return nil
}

// claim claims n for a child at depth. Under a depth bound a shallower route
// may reclaim a node, so that node can be expanded more than once.
func (s *pathSearch) claim(n string, depth int) bool {
	if s.options.MaxDepth > 0 {
		return s.claims.ClaimAt(n, depth)
	}
	return s.claims.Claim(n)
}

// task returns the pool unit that expands t.
func (s *pathSearch) task(t pathTask) pool.Task[expansion] {
	return func(ctx context.Context) (expansion, error) {
		if s.found.Load() || ctx.Err() != nil {
			return expansion{}, nil
		}
		if t.node == s.end {
			return expansion{path: t.path}, nil
		}
		if s.options.MaxDepth > 0 && len(t.path)-1 >= s.options.MaxDepth {
			return expansion{}, nil
		}

		s.expanded.Add(1)
		if s.options.ExpandHook != nil {
			s.options.ExpandHook(t.node)
		}

		var out expansion
		for _, n := range s.store.Neighbors(t.node) {
			if s.found.Load() {
				break
			}
			if !s.claim(n, len(t.path)) {
				continue
			}
			out.claimed++
			if s.options.ClaimHook != nil {
				s.options.ClaimHook(n)
			}
			out.children = append(out.children, pathTask{node: n, path: t.path.extend(n)})
		}
		return out, nil
	}
}
