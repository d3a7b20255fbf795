// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
	"github.com/AleutianAI/graphprobe/services/graphprobe/search"
	"github.com/AleutianAI/graphprobe/services/graphprobe/telemetry"
)

const tracerName = "graphprobe.query"

// Outcome is one strategy's answer to a query.
type Outcome struct {
	Strategy search.Strategy
	Found    bool

	// Path is set for path queries that found a path.
	Path search.Path

	Elapsed time.Duration
	Err     error
}

// TimedOut reports whether the outcome failed on the search time budget.
func (o Outcome) TimedOut() bool {
	return errors.Is(o.Err, search.ErrSearchTimeout)
}

// Result is the answer to one command.
type Result struct {
	QueryID string
	Command Command

	// Nodes and Edges are set for listing commands.
	Nodes []string
	Edges []graph.Edge

	// Outcomes holds one entry per strategy for existence and path
	// commands, sequential first.
	Outcomes []Outcome

	// Stats and Load are set for the stats command. Load may be nil.
	Stats *graph.GraphStats
	Load  *graph.LoadResult

	// Exit is set for the exit command.
	Exit bool
}

// Dispatcher runs commands against one frozen graph.
//
// Thread Safety: safe for concurrent use. Each parallel query creates its own
// worker pool.
type Dispatcher struct {
	graph      *graph.Graph
	load       *graph.LoadResult
	sequential *search.Sequential
	parallel   *search.Parallel
	logger     *slog.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherOptions)

type dispatcherOptions struct {
	searchOptions []search.Option
	load          *graph.LoadResult
	logger        *slog.Logger
}

// WithSearchOptions passes options to both search strategies.
func WithSearchOptions(opts ...search.Option) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.searchOptions = append(o.searchOptions, opts...)
	}
}

// WithLoadResult attaches the load summary reported by the stats command.
func WithLoadResult(result *graph.LoadResult) DispatcherOption {
	return func(o *dispatcherOptions) {
		o.load = result
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(o *dispatcherOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewDispatcher creates a Dispatcher for g.
func NewDispatcher(g *graph.Graph, opts ...DispatcherOption) (*Dispatcher, error) {
	if g == nil {
		return nil, search.ErrNilStore
	}

	options := dispatcherOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}

	seq, err := search.NewSequential(g, options.searchOptions...)
	if err != nil {
		return nil, fmt.Errorf("create sequential search: %w", err)
	}
	par, err := search.NewParallel(g, options.searchOptions...)
	if err != nil {
		return nil, fmt.Errorf("create parallel search: %w", err)
	}

	return &Dispatcher{
		graph:      g,
		load:       options.load,
		sequential: seq,
		parallel:   par,
		logger:     options.logger,
	}, nil
}

// Graph returns the graph the dispatcher queries.
func (d *Dispatcher) Graph() *graph.Graph {
	return d.graph
}

// ExecuteLine parses line and executes it.
func (d *Dispatcher) ExecuteLine(ctx context.Context, line string) (*Result, error) {
	cmd, err := Parse(line)
	if err != nil {
		return nil, err
	}
	return d.Execute(ctx, cmd)
}

// Execute runs cmd.
//
// Description:
//
//	Existence and path commands run the sequential strategy, then the
//	parallel one, and report both with their wall-clock time. Strategy
//	failures, including ErrSearchTimeout, are reported in the Outcome and
//	do not fail Execute.
//
// Outputs:
//
//	*Result - The answer, tagged with a fresh query ID.
//	error - ErrUnknownCommand for an unsupported Op, or the context error
//	if ctx is already done.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{QueryID: uuid.NewString(), Command: cmd}

	ctx, span := telemetry.StartSpan(ctx, tracerName, "query."+string(cmd.Op),
		trace.WithAttributes(
			attribute.String("query.id", result.QueryID),
			attribute.String("query.command", cmd.String()),
		),
	)
	defer span.End()

	logger := telemetry.LoggerWithTrace(ctx, d.logger).With(
		slog.String("query_id", result.QueryID),
		slog.String("command", string(cmd.Op)),
	)

	switch cmd.Op {
	case OpNodes:
		result.Nodes = d.graph.Nodes()
	case OpEdges:
		result.Edges = d.graph.Edges()
	case OpNode:
		result.Outcomes = d.nodeExists(ctx, cmd.Args[0])
	case OpEdge:
		result.Outcomes = d.edgeExists(ctx, cmd.Args[0], cmd.Args[1])
	case OpPath:
		result.Outcomes = d.findPath(ctx, cmd.Args[0], cmd.Args[1])
	case OpStats:
		stats := d.graph.Stats()
		result.Stats = &stats
		result.Load = d.load
	case OpHelp:
	case OpExit:
		result.Exit = true
	default:
		err := fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Op)
		telemetry.RecordError(span, err)
		return nil, err
	}

	for _, o := range result.Outcomes {
		attrs := []any{
			slog.String("strategy", string(o.Strategy)),
			slog.Bool("found", o.Found),
			slog.Duration("elapsed", o.Elapsed),
		}
		if o.Err != nil {
			logger.Warn("strategy failed", append(attrs, slog.String("error", o.Err.Error()))...)
			telemetry.RecordError(span, o.Err, attribute.String("strategy", string(o.Strategy)))
			continue
		}
		logger.Debug("strategy finished", attrs...)
	}

	return result, nil
}

func (d *Dispatcher) nodeExists(ctx context.Context, id string) []Outcome {
	start := time.Now()
	seqFound := d.sequential.NodeExists(id)
	seq := Outcome{Strategy: search.StrategySequential, Found: seqFound, Elapsed: time.Since(start)}

	start = time.Now()
	parFound, err := d.parallel.NodeExists(ctx, id)
	par := Outcome{Strategy: search.StrategyParallel, Found: parFound, Elapsed: time.Since(start), Err: err}

	return []Outcome{seq, par}
}

func (d *Dispatcher) edgeExists(ctx context.Context, source, target string) []Outcome {
	start := time.Now()
	seqFound := d.sequential.EdgeExists(source, target)
	seq := Outcome{Strategy: search.StrategySequential, Found: seqFound, Elapsed: time.Since(start)}

	start = time.Now()
	parFound, err := d.parallel.EdgeExists(ctx, source, target)
	par := Outcome{Strategy: search.StrategyParallel, Found: parFound, Elapsed: time.Since(start), Err: err}

	return []Outcome{seq, par}
}

func (d *Dispatcher) findPath(ctx context.Context, from, to string) []Outcome {
	start := time.Now()
	seqPath, err := d.sequential.FindPath(ctx, from, to)
	seq := Outcome{
		Strategy: search.StrategySequential,
		Found:    seqPath.Found(),
		Path:     seqPath,
		Elapsed:  time.Since(start),
		Err:      err,
	}

	start = time.Now()
	parPath, err := d.parallel.FindPath(ctx, from, to)
	par := Outcome{
		Strategy: search.StrategyParallel,
		Found:    parPath.Found(),
		Path:     parPath,
		Elapsed:  time.Since(start),
		Err:      err,
	}

	return []Outcome{seq, par}
}
