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
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/AleutianAI/graphprobe/pkg/ux"
)

// NoPathFound is printed for a path query without a result.
const NoPathFound = "No path found"

// Render writes r as text. Output is styled when w is a terminal.
func Render(w io.Writer, r *Result) {
	RenderTo(ux.NewPrinter(w), r)
}

// RenderTo writes r through p.
func RenderTo(p *ux.Printer, r *Result) {
	switch r.Command.Op {
	case OpNodes:
		p.Title(fmt.Sprintf("%d nodes", len(r.Nodes)))
		p.List(r.Nodes)

	case OpEdges:
		p.Title(fmt.Sprintf("%d edges", len(r.Edges)))
		items := make([]string, len(r.Edges))
		for i, e := range r.Edges {
			items[i] = e.String()
		}
		p.List(items)

	case OpNode, OpEdge, OpPath:
		p.Title(r.Command.String())
		for _, o := range r.Outcomes {
			p.Line(formatOutcome(r.Command.Op, o))
		}

	case OpStats:
		renderStats(p, r)

	case OpHelp:
		p.Title("Commands")
		for _, line := range HelpLines() {
			p.Line("  " + line)
		}

	case OpExit:
	}
}

// formatOutcome renders one strategy line, e.g.
// "  parallel:   N0 -> N1  (35µs)".
func formatOutcome(op Op, o Outcome) string {
	label := fmt.Sprintf("  %-11s", string(o.Strategy)+":")

	var answer string
	switch {
	case o.TimedOut():
		answer = NoPathFound + " (" + o.Err.Error() + ")"
	case o.Err != nil:
		answer = "error: " + o.Err.Error()
	case op == OpPath && o.Found:
		answer = o.Path.String()
	case op == OpPath:
		answer = NoPathFound
	default:
		answer = strconv.FormatBool(o.Found)
	}

	return fmt.Sprintf("%s %s  (%s)", label, answer, formatElapsed(o.Elapsed))
}

// formatElapsed rounds to a readable precision.
func formatElapsed(d time.Duration) string {
	switch {
	case d >= time.Second:
		return d.Round(time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(time.Microsecond).String()
	default:
		return d.String()
	}
}

func renderStats(p *ux.Printer, r *Result) {
	p.Title("Graph")
	if r.Stats != nil {
		p.KeyValue("nodes", r.Stats.NodeCount)
		p.KeyValue("edges", r.Stats.EdgeCount)
		p.KeyValue("state", r.Stats.State)
		if r.Stats.BuiltAtMilli > 0 {
			p.KeyValue("built at", r.Stats.BuiltAt().Format(time.RFC3339))
		}
	}

	load := r.Load
	if load == nil {
		return
	}
	p.KeyValue("load time", formatElapsed(load.Duration))
	p.KeyValue("duplicates", load.DuplicateNodes)
	p.KeyValue("dropped", load.DroppedEdges)
	p.KeyValue("malformed", load.MalformedCount)

	if len(load.DroppedSamples) > 0 {
		p.Muted("dropped edges (unknown endpoint):")
		items := make([]string, len(load.DroppedSamples))
		for i, e := range load.DroppedSamples {
			items[i] = e.String()
		}
		p.List(items)
	}
	if len(load.MalformedSamples) > 0 {
		p.Muted("malformed lines:")
		items := make([]string, len(load.MalformedSamples))
		for i, le := range load.MalformedSamples {
			items[i] = fmt.Sprintf("line %d: %q (%s)", le.Line, le.Text, le.Reason)
		}
		p.List(items)
	}
}
