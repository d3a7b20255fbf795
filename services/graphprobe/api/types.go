// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"time"

	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
	"github.com/AleutianAI/graphprobe/services/graphprobe/query"
)

// Error codes carried in ErrorResponse.Code.
const (
	CodeInvalidRequest     = "invalid_request"
	CodeInvalidCommand     = "invalid_command"
	CodeUnsupportedCommand = "unsupported_command"
	CodeRateLimited        = "rate_limited"
	CodeCancelled          = "cancelled"
	CodeInternal           = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// QueryRequest is the body of POST /v1/graphprobe/query.
type QueryRequest struct {
	// Command is one command line, e.g. "path N0 N3".
	Command string `json:"command" binding:"required"`
}

// OutcomeResponse is one strategy's answer.
type OutcomeResponse struct {
	Strategy  string   `json:"strategy"`
	Found     bool     `json:"found"`
	Path      []string `json:"path,omitempty"`
	ElapsedMS float64  `json:"elapsed_ms"`
	TimedOut  bool     `json:"timed_out,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// QueryResponse is the body of a successful query.
type QueryResponse struct {
	QueryID  string            `json:"query_id"`
	Command  string            `json:"command"`
	Nodes    []string          `json:"nodes,omitempty"`
	Edges    []graph.Edge      `json:"edges,omitempty"`
	Outcomes []OutcomeResponse `json:"outcomes,omitempty"`
	Stats    *StatsResponse    `json:"stats,omitempty"`
	Help     []string          `json:"help,omitempty"`
}

// LoadSummary reports what happened while the active graph was ingested.
type LoadSummary struct {
	DuplicateNodes   int               `json:"duplicate_nodes"`
	DroppedEdges     int               `json:"dropped_edges"`
	DroppedSamples   []graph.Edge      `json:"dropped_samples,omitempty"`
	MalformedCount   int               `json:"malformed_count"`
	MalformedSamples []graph.LineError `json:"malformed_samples,omitempty"`
	IgnoredLines     int               `json:"ignored_lines"`
	DurationMS       float64           `json:"duration_ms"`
}

// StatsResponse is the body of GET /v1/graphprobe/stats.
type StatsResponse struct {
	Graph   graph.GraphStats `json:"graph"`
	Load    *LoadSummary     `json:"load,omitempty"`
	Reloads int64            `json:"reloads"`
}

// HealthResponse is the body of GET /v1/graphprobe/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Timestamp time.Time `json:"timestamp"`
}

func toOutcomeResponses(outcomes []query.Outcome) []OutcomeResponse {
	if len(outcomes) == 0 {
		return nil
	}
	out := make([]OutcomeResponse, len(outcomes))
	for i, o := range outcomes {
		out[i] = OutcomeResponse{
			Strategy:  string(o.Strategy),
			Found:     o.Found,
			Path:      o.Path,
			ElapsedMS: durationMS(o.Elapsed),
			TimedOut:  o.TimedOut(),
		}
		if o.Err != nil {
			out[i].Error = o.Err.Error()
		}
	}
	return out
}

func toLoadSummary(r *graph.LoadResult) *LoadSummary {
	if r == nil {
		return nil
	}
	return &LoadSummary{
		DuplicateNodes:   r.DuplicateNodes,
		DroppedEdges:     r.DroppedEdges,
		DroppedSamples:   r.DroppedSamples,
		MalformedCount:   r.MalformedCount,
		MalformedSamples: r.MalformedSamples,
		IgnoredLines:     r.IgnoredLines,
		DurationMS:       durationMS(r.Duration),
	}
}

func durationMS(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
