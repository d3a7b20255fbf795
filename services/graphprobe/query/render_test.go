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
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/graphprobe/pkg/ux"
	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
	"github.com/AleutianAI/graphprobe/services/graphprobe/search"
)

func renderPlain(r *Result) string {
	var buf bytes.Buffer
	RenderTo(ux.NewPlainPrinter(&buf), r)
	return buf.String()
}

func TestRender_Path(t *testing.T) {
	d := newDispatcher(t)
	r, err := d.ExecuteLine(context.Background(), "path N0 N3")
	require.NoError(t, err)

	out := renderPlain(r)
	assert.Contains(t, out, "path N0 N3")
	assert.Contains(t, out, "sequential:")
	assert.Contains(t, out, "parallel:")
	assert.Contains(t, out, "N0 -> N1 -> N2 -> N3")
}

func TestRender_NoPath(t *testing.T) {
	d := newDispatcher(t)
	r, err := d.ExecuteLine(context.Background(), "path N3 N0")
	require.NoError(t, err)

	assert.Equal(t, 2, bytes.Count([]byte(renderPlain(r)), []byte(NoPathFound)))
}

func TestRender_Listings(t *testing.T) {
	d := newDispatcher(t)

	r, err := d.ExecuteLine(context.Background(), "edges")
	require.NoError(t, err)
	out := renderPlain(r)
	assert.Contains(t, out, "3 edges")
	assert.Contains(t, out, "- N1 -> N2\n")

	r, err = d.ExecuteLine(context.Background(), "nodes")
	require.NoError(t, err)
	assert.Contains(t, renderPlain(r), "- N4\n")
}

func TestFormatOutcome(t *testing.T) {
	tests := []struct {
		name    string
		op      Op
		outcome Outcome
		want    string
	}{
		{"exists", OpNode, Outcome{Strategy: search.StrategySequential, Found: true}, "true"},
		{"missing", OpEdge, Outcome{Strategy: search.StrategyParallel}, "false"},
		{"no path", OpPath, Outcome{Strategy: search.StrategyParallel}, NoPathFound},
		{"path", OpPath, Outcome{Strategy: search.StrategySequential, Found: true, Path: search.Path{"a", "b"}}, "a -> b"},
		{"timeout", OpPath, Outcome{Strategy: search.StrategyParallel, Err: search.ErrSearchTimeout}, NoPathFound + " (search exceeded time budget)"},
		{"error", OpNode, Outcome{Strategy: search.StrategyParallel, Err: errors.New("boom")}, "error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatOutcome(tt.op, tt.outcome)
			assert.Contains(t, got, string(tt.outcome.Strategy)+":")
			assert.Contains(t, got, tt.want)
		})
	}
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "1.235s", formatElapsed(1234567*time.Microsecond))
	assert.Equal(t, "2.5ms", formatElapsed(2500*time.Microsecond))
	assert.Equal(t, "750ns", formatElapsed(750*time.Nanosecond))
}

func TestRender_StatsWithSamples(t *testing.T) {
	stats := graph.GraphStats{NodeCount: 5, EdgeCount: 3}
	r := &Result{
		Command: Command{Op: OpStats},
		Stats:   &stats,
		Load: &graph.LoadResult{
			DroppedEdges:     1,
			DroppedSamples:   []graph.Edge{{Source: "N0", Target: "N7"}},
			MalformedCount:   1,
			MalformedSamples: []graph.LineError{{Line: 4, Text: "- N1", Reason: "expected 2 node ids, got 1"}},
		},
	}

	out := renderPlain(r)
	assert.Contains(t, out, "nodes:")
	assert.Contains(t, out, "N0 -> N7")
	assert.Contains(t, out, `line 4: "- N1"`)
}

func TestRender_Help(t *testing.T) {
	out := renderPlain(&Result{Command: Command{Op: OpHelp}})
	assert.Contains(t, out, "Commands")
	assert.Contains(t, out, "path <start> <end>")
}
