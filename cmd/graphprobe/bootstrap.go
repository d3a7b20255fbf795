// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/graphprobe/pkg/logging"
	"github.com/AleutianAI/graphprobe/pkg/ux"
	"github.com/AleutianAI/graphprobe/services/graphprobe/config"
	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
	"github.com/AleutianAI/graphprobe/services/graphprobe/query"
	"github.com/AleutianAI/graphprobe/services/graphprobe/telemetry"
)

// errNoGraph is returned when neither --graph nor graph.path is set.
var errNoGraph = errors.New("no graph file: pass --graph or set graph.path")

const telemetryShutdownTimeout = 5 * time.Second

// app is the bootstrapped process state shared by subcommands.
type app struct {
	cfg    config.Config
	logger *logging.Logger

	shutdownTelemetry func(context.Context) error
}

// loadConfig merges the config file, environment and command-line flags.
func loadConfig(cmd *cobra.Command, flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return cfg, err
	}

	changed := cmd.Flags().Changed
	if changed("graph") {
		cfg.Graph.Path = flags.graphPath
	}
	if changed("workers") {
		cfg.Search.Workers = flags.workers
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// bootstrap loads configuration and starts logging and telemetry.
func bootstrap(cmd *cobra.Command, flags *rootFlags) (*app, error) {
	cfg, err := loadConfig(cmd, flags)
	if err != nil {
		return nil, err
	}

	logCfg, err := cfg.LoggingConfig()
	if err != nil {
		return nil, err
	}
	logger := logging.New(logCfg)
	slog.SetDefault(logger.Slog())

	shutdown, err := telemetry.Init(cmd.Context(), cfg.Telemetry)
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	return &app{cfg: cfg, logger: logger, shutdownTelemetry: shutdown}, nil
}

// close flushes telemetry and closes the log file.
func (r *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
	defer cancel()

	if err := r.shutdownTelemetry(ctx); err != nil {
		slog.Warn("telemetry shutdown failed", slog.String("error", err.Error()))
	}
	if err := r.logger.Close(); err != nil {
		slog.Warn("log close failed", slog.String("error", err.Error()))
	}
}

// loadGraph reads the configured graph file and builds a dispatcher for it.
func (r *app) loadGraph(ctx context.Context) (*graph.LoadResult, *query.Dispatcher, error) {
	if r.cfg.Graph.Path == "" {
		return nil, nil, errNoGraph
	}

	result, err := graph.LoadFile(ctx, r.cfg.Graph.Path, r.cfg.LoadOptions()...)
	if err != nil {
		return nil, nil, err
	}

	d, err := query.NewDispatcher(result.Graph,
		query.WithSearchOptions(r.cfg.SearchOptions()...),
		query.WithLoadResult(result),
		query.WithLogger(r.logger.Slog()),
	)
	if err != nil {
		return nil, nil, err
	}
	return result, d, nil
}

// printLoadSummary reports the ingest outcome in one or two lines.
func printLoadSummary(p *ux.Printer, path string, r *graph.LoadResult) {
	p.Success(fmt.Sprintf("loaded %s: %d nodes, %d edges in %s",
		path, r.NodeCount, r.EdgeCount, r.Duration.Round(time.Millisecond)))

	if r.DroppedEdges > 0 || r.MalformedCount > 0 {
		p.Warning(fmt.Sprintf("skipped %d edges with unknown endpoints and %d malformed lines (see \"stats\")",
			r.DroppedEdges, r.MalformedCount))
	}
}
