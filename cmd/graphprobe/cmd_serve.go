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
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/graphprobe/pkg/ux"
	"github.com/AleutianAI/graphprobe/services/graphprobe/api"
	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var (
		addr  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve graph queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.close()

			if cmd.Flags().Changed("addr") {
				rt.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("watch") {
				rt.cfg.Server.Watch = watch
			}

			result, d, err := rt.loadGraph(cmd.Context())
			if err != nil {
				return err
			}
			printLoadSummary(ux.NewPrinter(cmd.ErrOrStderr()), rt.cfg.Graph.Path, result)

			srv, err := api.New(d,
				api.WithRateLimit(rt.cfg.Server.RateLimit, rt.cfg.Server.Burst),
				api.WithServiceName(rt.cfg.Telemetry.ServiceName),
				api.WithReloadOptions(rt.cfg.LoadOptions(), rt.cfg.SearchOptions()),
				api.WithLogger(rt.logger.Slog()),
			)
			if err != nil {
				return err
			}

			if rt.cfg.Server.Watch {
				watcher, err := graph.NewFileWatcher(rt.cfg.Graph.Path, srv.Reload, rt.cfg.Server.Debounce)
				if err != nil {
					return fmt.Errorf("watch graph: %w", err)
				}
				if err := watcher.Start(cmd.Context()); err != nil {
					return fmt.Errorf("watch graph: %w", err)
				}
				defer watcher.Stop()
				slog.Info("watching graph for changes", slog.String("path", watcher.Path()))
			}

			return srv.Run(cmd.Context(), rt.cfg.Server.Addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the graph when the file changes")
	return cmd
}
