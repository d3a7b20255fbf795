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
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/graphprobe/services/graphprobe/query"
)

func (s *Server) handleHealth(c *gin.Context) {
	stats := s.Dispatcher().Graph().Stats()
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Nodes:     stats.NodeCount,
		Edges:     stats.EdgeCount,
		Timestamp: time.Now().UTC(),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	result, err := s.Dispatcher().Execute(c.Request.Context(), query.Command{Op: query.OpStats})
	if err != nil {
		s.writeQueryError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.statsResponse(result))
}

// handleQuery runs one command line against the active graph.
//
// Strategy failures, including timeouts, are part of a 200 response; only
// parse errors and request cancellation are reported as errors.
func (s *Server) handleQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidRequest})
		return
	}

	cmd, err := query.Parse(req.Command)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidCommand})
		return
	}
	if cmd.Op == query.OpExit {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "exit is only meaningful in an interactive session",
			Code:  CodeUnsupportedCommand,
		})
		return
	}

	result, err := s.Dispatcher().Execute(c.Request.Context(), cmd)
	if err != nil {
		s.writeQueryError(c, err)
		return
	}

	resp := QueryResponse{
		QueryID:  result.QueryID,
		Command:  result.Command.String(),
		Nodes:    result.Nodes,
		Edges:    result.Edges,
		Outcomes: toOutcomeResponses(result.Outcomes),
	}
	switch cmd.Op {
	case query.OpStats:
		stats := s.statsResponse(result)
		resp.Stats = &stats
	case query.OpHelp:
		resp.Help = query.HelpLines()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) statsResponse(result *query.Result) StatsResponse {
	resp := StatsResponse{
		Load:    toLoadSummary(result.Load),
		Reloads: s.Reloads(),
	}
	if result.Stats != nil {
		resp.Graph = *result.Stats
	}
	return resp
}

func (s *Server) writeQueryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), Code: CodeCancelled})
	case errors.Is(err, query.ErrUnknownCommand), errors.Is(err, query.ErrUsage):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: CodeInvalidCommand})
	default:
		s.logger.Error("query failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: CodeInternal})
	}
}
