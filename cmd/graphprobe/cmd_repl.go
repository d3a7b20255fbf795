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
	"github.com/spf13/cobra"

	"github.com/AleutianAI/graphprobe/pkg/ux"
	"github.com/AleutianAI/graphprobe/services/graphprobe/query"
)

func newReplCmd(flags *rootFlags) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Load a graph and answer commands interactively",
		Long: `Load a graph and read commands from standard input until "exit" or
end of input. Type "help" for the command list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.close()

			printer := ux.NewPrinter(cmd.OutOrStdout())
			if plain {
				printer = ux.NewPlainPrinter(cmd.OutOrStdout())
			}

			result, d, err := rt.loadGraph(cmd.Context())
			if err != nil {
				return err
			}
			printLoadSummary(printer, rt.cfg.Graph.Path, result)

			var opts []query.SessionOption
			if plain {
				opts = append(opts, query.WithPlainOutput())
			}
			return query.NewSession(d, opts...).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "disable colors and icons")
	return cmd
}
