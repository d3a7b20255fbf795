// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pool provides a fixed-size worker pool whose results are consumed
// in completion order.
//
// A Pool lives for the duration of one query: create it, submit units of
// work, drain completions with AwaitAny, then Shutdown. Task errors and
// panics are captured per unit and never affect sibling workers.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultQueueSize is the bounded queue capacity per worker.
const DefaultQueueSize = 256

// Task is a unit of work. It should return promptly once ctx is done.
type Task[T any] func(ctx context.Context) (T, error)

// Handle identifies a submitted unit. Handles increase in submission order.
type Handle uint64

// Completion is the outcome of one submitted unit.
type Completion[T any] struct {
	// Handle is the value returned by Submit for this unit.
	Handle Handle

	// Value is the task's result. Zero when Err is non-nil.
	Value T

	// Err is the task's error, ErrTaskPanicked, or ErrTaskCancelled.
	Err error

	// Duration is the task's run time. Zero if it never ran.
	Duration time.Duration
}

// ShutdownMode selects how Shutdown treats queued and running units.
type ShutdownMode int

const (
	// ShutdownGraceful rejects new submissions and lets queued and running
	// units finish.
	ShutdownGraceful ShutdownMode = iota

	// ShutdownImmediate cancels the pool context. Running units observe the
	// cancellation at their next check; queued units are discarded with
	// ErrTaskCancelled.
	ShutdownImmediate
)

// String returns the string representation of the ShutdownMode.
func (m ShutdownMode) String() string {
	switch m {
	case ShutdownGraceful:
		return "graceful"
	case ShutdownImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// Options configures a Pool.
type Options struct {
	// QueueSize is the bounded queue capacity. Default: DefaultQueueSize.
	QueueSize int
}

// Option is a functional option for New.
type Option func(*Options)

// WithQueueSize sets the bounded queue capacity.
func WithQueueSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.QueueSize = n
		}
	}
}

type job[T any] struct {
	handle Handle
	task   Task[T]
}

// Pool is a fixed set of worker goroutines fed by a bounded queue.
//
// Thread Safety: Submit, TrySubmit and Outstanding are safe for concurrent
// use. AwaitAny is intended for a single driving goroutine. Tasks must not
// call Submit: it blocks while the queue is full, and with every worker
// blocked nothing drains the queue. Use TrySubmit from inside a task.
type Pool[T any] struct {
	workers int

	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group

	// mu guards closed and the queue against send-after-close.
	mu     sync.RWMutex
	closed bool
	queue  chan job[T]

	// doneMu guards done; notify carries at most one wake-up signal.
	doneMu sync.Mutex
	done   []Completion[T]
	notify chan struct{}

	nextHandle  atomic.Uint64
	outstanding atomic.Int64

	shutdownOnce sync.Once
}

// New starts a pool with the given number of workers.
//
// Example:
//
//	p, err := pool.New[bool](4)
//	if err != nil {
//	    return err
//	}
//	defer p.Shutdown(pool.ShutdownImmediate)
//
//	p.Submit(func(ctx context.Context) (bool, error) { return scan(ctx), nil })
//	c, err := p.AwaitAny(ctx, time.Second)
func New[T any](workers int, opts ...Option) (*Pool[T], error) {
	if workers <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWorkers, workers)
	}

	options := Options{QueueSize: DefaultQueueSize}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool[T]{
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
		queue:   make(chan job[T], options.QueueSize),
		notify:  make(chan struct{}, 1),
	}

	for i := 0; i < workers; i++ {
		workerID := i
		p.group.Go(func() error {
			p.worker(workerID)
			return nil
		})
	}

	return p, nil
}

// Workers returns the fixed worker count.
func (p *Pool[T]) Workers() int {
	return p.workers
}

// Outstanding returns the number of submitted units whose completion has not
// yet been taken by AwaitAny.
func (p *Pool[T]) Outstanding() int {
	return int(p.outstanding.Load())
}

// Submit enqueues a task, blocking while the queue is full.
//
// Outputs:
//
//	Handle - Identifies the unit in its Completion.
//	error - ErrPoolClosed if the pool is shut down or shutting down.
func (p *Pool[T]) Submit(task Task[T]) (Handle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return 0, ErrPoolClosed
	}

	j := job[T]{handle: Handle(p.nextHandle.Add(1)), task: task}
	p.outstanding.Add(1)

	select {
	case p.queue <- j:
		return j.handle, nil
	case <-p.ctx.Done():
		p.outstanding.Add(-1)
		return 0, ErrPoolClosed
	}
}

// TrySubmit enqueues a task without blocking.
//
// Outputs:
//
//	error - ErrQueueFull when the queue has no room, ErrPoolClosed after
//	shutdown.
func (p *Pool[T]) TrySubmit(task Task[T]) (Handle, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed || p.ctx.Err() != nil {
		return 0, ErrPoolClosed
	}

	j := job[T]{handle: Handle(p.nextHandle.Add(1)), task: task}
	p.outstanding.Add(1)

	select {
	case p.queue <- j:
		return j.handle, nil
	default:
		p.outstanding.Add(-1)
		return 0, ErrQueueFull
	}
}

// AwaitAny returns the next completed unit in completion order.
//
// Description:
//
//	Blocks until a unit completes, the timeout elapses, or ctx is done.
//	A timeout of zero or less waits without a deadline.
//
// Outputs:
//
//	Completion[T] - The completed unit, including its captured error.
//	error - ErrAwaitTimeout, ErrNoPendingWork, or the context error.
func (p *Pool[T]) AwaitAny(ctx context.Context, timeout time.Duration) (Completion[T], error) {
	var timerC <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerC = timer.C
	}

	for {
		if c, ok := p.take(); ok {
			p.outstanding.Add(-1)
			return c, nil
		}
		if p.outstanding.Load() == 0 {
			return Completion[T]{}, ErrNoPendingWork
		}

		select {
		case <-p.notify:
		case <-timerC:
			return Completion[T]{}, ErrAwaitTimeout
		case <-ctx.Done():
			return Completion[T]{}, ctx.Err()
		}
	}
}

// Shutdown stops the pool and joins every worker before returning.
//
// Completions produced before or during shutdown remain available to
// AwaitAny afterwards. Calling Shutdown more than once is a no-op.
func (p *Pool[T]) Shutdown(mode ShutdownMode) {
	p.shutdownOnce.Do(func() {
		if mode == ShutdownImmediate {
			// Cancel first so a Submit blocked on a full queue lets go of mu.
			p.cancel()
		}

		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		_ = p.group.Wait()
		p.cancel()

		slog.Debug("worker pool shut down",
			slog.String("mode", mode.String()),
			slog.Int("workers", p.workers),
			slog.Int("outstanding", p.Outstanding()),
		)
	})
}

// worker drains the queue until it is closed.
func (p *Pool[T]) worker(workerID int) {
	for j := range p.queue {
		if err := p.ctx.Err(); err != nil {
			p.complete(Completion[T]{
				Handle: j.handle,
				Err:    fmt.Errorf("%w: %v", ErrTaskCancelled, err),
			})
			continue
		}
		p.complete(p.run(workerID, j))
	}
}

// run executes one task, converting a panic into the unit's error.
func (p *Pool[T]) run(workerID int, j job[T]) (c Completion[T]) {
	c.Handle = j.handle
	start := time.Now()

	defer func() {
		c.Duration = time.Since(start)
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			slog.Error("panic in pool worker",
				slog.Int("worker_id", workerID),
				slog.Uint64("handle", uint64(j.handle)),
				slog.Any("panic", r),
				slog.String("stack", string(buf[:n])),
			)
			var zero T
			c.Value = zero
			c.Err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()

	c.Value, c.Err = j.task(p.ctx)
	return c
}

// complete publishes a completion and wakes the waiter.
func (p *Pool[T]) complete(c Completion[T]) {
	p.doneMu.Lock()
	p.done = append(p.done, c)
	p.doneMu.Unlock()

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// take pops the oldest completion, if any.
func (p *Pool[T]) take() (Completion[T], bool) {
	p.doneMu.Lock()
	defer p.doneMu.Unlock()

	if len(p.done) == 0 {
		return Completion[T]{}, false
	}
	c := p.done[0]
	p.done[0] = Completion[T]{}
	p.done = p.done[1:]
	return c, true
}
