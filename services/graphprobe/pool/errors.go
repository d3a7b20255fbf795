// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pool

import "errors"

// Sentinel errors for pool operations.
var (
	// ErrPoolClosed is returned when submitting to a pool that is shut down.
	ErrPoolClosed = errors.New("pool is shut down")

	// ErrQueueFull is returned by TrySubmit when the bounded queue is full.
	ErrQueueFull = errors.New("pool queue is full")

	// ErrAwaitTimeout is returned by AwaitAny when nothing completed in time.
	ErrAwaitTimeout = errors.New("timed out waiting for a completion")

	// ErrNoPendingWork is returned by AwaitAny when no submitted unit is
	// outstanding, so waiting could never succeed.
	ErrNoPendingWork = errors.New("no outstanding work")

	// ErrTaskPanicked wraps a panic recovered from a task.
	ErrTaskPanicked = errors.New("task panicked")

	// ErrTaskCancelled is the completion error of a queued unit discarded by
	// an immediate shutdown before it started.
	ErrTaskCancelled = errors.New("task cancelled before start")

	// ErrInvalidWorkers is returned by New for a non-positive worker count.
	ErrInvalidWorkers = errors.New("worker count must be positive")
)
