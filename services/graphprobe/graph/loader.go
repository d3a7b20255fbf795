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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"
)

const (
	// nodeMarker prefixes a node declaration line: "* <id>".
	nodeMarker = "*"

	// edgeMarker prefixes an edge declaration line: "- <source> <target>".
	edgeMarker = "-"

	// DefaultSampleLimit caps how many dropped edges and malformed lines are
	// kept verbatim in a LoadResult. Counts are always exact.
	DefaultSampleLimit = 16

	// maxLineBytes bounds a single input line.
	maxLineBytes = 1 << 20

	// cancelCheckInterval is how many lines are read between context checks.
	cancelCheckInterval = 4096
)

// LineError describes an input line that was skipped.
type LineError struct {
	// Line is the 1-based line number.
	Line int `json:"line"`

	// Text is the trimmed line content.
	Text string `json:"text"`

	// Reason explains why the line was skipped.
	Reason string `json:"reason"`
}

// LoadResult is the outcome of a load.
//
// Ingest problems never fail a load. Malformed edge declarations and edges
// naming unknown nodes are counted here and skipped.
type LoadResult struct {
	// Graph is the populated, frozen store.
	Graph *Graph

	NodeCount int
	EdgeCount int

	// DuplicateNodes counts node declarations for IDs already present.
	DuplicateNodes int

	// DroppedEdges counts edges discarded because an endpoint was unknown.
	DroppedEdges int

	// DroppedSamples holds the first dropped edges, up to the sample limit.
	DroppedSamples []Edge

	// MalformedCount counts malformed declarations.
	MalformedCount int

	// MalformedSamples holds the first malformed lines, up to the sample limit.
	MalformedSamples []LineError

	// IgnoredLines counts non-blank lines with no recognized marker.
	IgnoredLines int

	// Duration is the wall-clock time of the load.
	Duration time.Duration
}

// loadOptions configures Load.
type loadOptions struct {
	sampleLimit  int
	graphOptions []GraphOption
}

// LoadOption is a functional option for Load.
type LoadOption func(*loadOptions)

// WithSampleLimit sets how many dropped edges and malformed lines are kept.
func WithSampleLimit(n int) LoadOption {
	return func(o *loadOptions) {
		if n >= 0 {
			o.sampleLimit = n
		}
	}
}

// WithGraphOptions passes capacity options to the graph being built.
func WithGraphOptions(opts ...GraphOption) LoadOption {
	return func(o *loadOptions) {
		o.graphOptions = append(o.graphOptions, opts...)
	}
}

// LoadFile opens path and loads it with Load.
func LoadFile(ctx context.Context, path string, opts ...LoadOption) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()

	return load(ctx, f, path, opts...)
}

// Load reads graph declarations from r and returns a frozen graph.
//
// Description:
//
//	Each line is either "* <id>" (declare a node) or "- <source> <target>"
//	(declare a directed edge). Blank lines are ignored. An edge line that
//	does not carry exactly two tokens is reported and skipped. An edge whose
//	endpoints are not both declared earlier is dropped.
//
// Inputs:
//
//	ctx - Context for cancellation. Checked periodically while reading.
//	r - Source of graph declarations.
//	opts - Optional load configuration.
//
// Outputs:
//
//	*LoadResult - The frozen graph and ingest statistics.
//	error - ErrLoadCancelled, a read error, or a capacity error.
func Load(ctx context.Context, r io.Reader, opts ...LoadOption) (*LoadResult, error) {
	return load(ctx, r, "reader", opts...)
}

func load(ctx context.Context, r io.Reader, source string, opts ...LoadOption) (*LoadResult, error) {
	options := loadOptions{sampleLimit: DefaultSampleLimit}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, span := startLoadSpan(ctx, source)
	defer span.End()

	start := time.Now()
	g := NewGraph(options.graphOptions...)
	result := &LoadResult{Graph: g}

	fail := func(err error) (*LoadResult, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordLoadMetrics(ctx, time.Since(start), nil, false)
		return nil, err
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return fail(fmt.Errorf("%w: %v", ErrLoadCancelled, err))
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, nodeMarker):
			id := strings.TrimSpace(line[len(nodeMarker):])
			added, err := g.AddNode(id)
			if errors.Is(err, ErrInvalidNode) {
				result.addMalformed(options.sampleLimit, LineError{Line: lineNo, Text: line, Reason: "missing node id"})
				continue
			}
			if err != nil {
				return fail(fmt.Errorf("line %d: %w", lineNo, err))
			}
			if !added {
				result.DuplicateNodes++
			}

		case strings.HasPrefix(line, edgeMarker):
			parts := strings.Fields(line[len(edgeMarker):])
			if len(parts) != 2 {
				slog.Warn("malformed edge line",
					slog.Int("line", lineNo),
					slog.String("text", line),
				)
				result.addMalformed(options.sampleLimit, LineError{
					Line:   lineNo,
					Text:   line,
					Reason: fmt.Sprintf("expected 2 node ids, got %d", len(parts)),
				})
				continue
			}
			added, err := g.AddEdge(parts[0], parts[1])
			if err != nil {
				return fail(fmt.Errorf("line %d: %w", lineNo, err))
			}
			if !added {
				result.DroppedEdges++
				if len(result.DroppedSamples) < options.sampleLimit {
					result.DroppedSamples = append(result.DroppedSamples, Edge{Source: parts[0], Target: parts[1]})
				}
			}

		default:
			result.IgnoredLines++
		}
	}
	if err := scanner.Err(); err != nil {
		return fail(fmt.Errorf("read graph: %w", err))
	}

	g.Freeze()
	result.NodeCount = g.NodeCount()
	result.EdgeCount = g.EdgeCount()
	result.Duration = time.Since(start)

	setLoadSpanResult(span, result)
	span.SetStatus(codes.Ok, "")
	recordLoadMetrics(ctx, result.Duration, result, true)

	slog.Info("graph loaded",
		slog.String("source", source),
		slog.Int("nodes", result.NodeCount),
		slog.Int("edges", result.EdgeCount),
		slog.Int("dropped_edges", result.DroppedEdges),
		slog.Int("malformed_lines", result.MalformedCount),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

func (r *LoadResult) addMalformed(limit int, le LineError) {
	r.MalformedCount++
	if len(r.MalformedSamples) < limit {
		r.MalformedSamples = append(r.MalformedSamples, le)
	}
}
