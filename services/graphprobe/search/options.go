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

import "time"

// Default search settings.
const (
	// DefaultWorkers is the worker count of each per-query pool.
	DefaultWorkers = 4

	// DefaultQueueSize bounds the pool queue. Path-search tasks that do not
	// fit wait in the driver's frontier.
	DefaultQueueSize = 1024

	// DefaultPollTimeout bounds a single wait for the next completion.
	DefaultPollTimeout = 60 * time.Second

	// DefaultMaxPollTimeouts is how many consecutive empty polls end a path
	// search with ErrSearchTimeout.
	DefaultMaxPollTimeouts = 1
)

// Options configures the search strategies.
type Options struct {
	// Workers is the pool size for parallel queries. Default: 4.
	Workers int

	// QueueSize is the pool's bounded queue capacity. Default: 1024.
	QueueSize int

	// PollTimeout bounds each wait for a path-search completion.
	// Default: 60s.
	PollTimeout time.Duration

	// MaxPollTimeouts is the number of consecutive poll timeouts tolerated
	// before a path search fails. Zero or less waits indefinitely.
	MaxPollTimeouts int

	// MaxDepth limits path length in edges. Zero means unbounded.
	MaxDepth int

	// ClaimHook is called once per successful claim. Must be safe for
	// concurrent use.
	ClaimHook func(node string)

	// ExpandHook is called each time a node's neighbors are expanded. Must be
	// safe for concurrent use.
	ExpandHook func(node string)
}

// Option is a functional option for search constructors.
type Option func(*Options)

// DefaultOptions returns the default search settings.
func DefaultOptions() Options {
	return Options{
		Workers:         DefaultWorkers,
		QueueSize:       DefaultQueueSize,
		PollTimeout:     DefaultPollTimeout,
		MaxPollTimeouts: DefaultMaxPollTimeouts,
	}
}

// WithWorkers sets the pool size. Non-positive values are ignored.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.Workers = n
		}
	}
}

// WithQueueSize sets the bounded queue capacity. Non-positive values are
// ignored.
func WithQueueSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.QueueSize = n
		}
	}
}

// WithPollTimeout sets the per-poll wait bound. Non-positive values are
// ignored.
func WithPollTimeout(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.PollTimeout = d
		}
	}
}

// WithMaxPollTimeouts sets the consecutive timeout budget.
func WithMaxPollTimeouts(n int) Option {
	return func(o *Options) {
		o.MaxPollTimeouts = n
	}
}

// WithMaxDepth limits the number of edges in a path.
func WithMaxDepth(n int) Option {
	return func(o *Options) {
		if n >= 0 {
			o.MaxDepth = n
		}
	}
}

// WithClaimHook installs a callback invoked on every successful claim.
func WithClaimHook(fn func(node string)) Option {
	return func(o *Options) {
		o.ClaimHook = fn
	}
}

// WithExpandHook installs a callback invoked on every node expansion.
func WithExpandHook(fn func(node string)) Option {
	return func(o *Options) {
		o.ExpandHook = fn
	}
}

func buildOptions(opts []Option) Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
