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
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/graphprobe/pkg/ux"
	"github.com/AleutianAI/graphprobe/services/graphprobe/query"
)

func newQueryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "query <command> [args...]",
		Short: "Run a single command against a graph",
		Example: `  graphprobe query --graph graph.txt path N0 N3
  graphprobe query --graph graph.txt edge N0 N1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd, flags)
			if err != nil {
				return err
			}
			defer rt.close()

			_, d, err := rt.loadGraph(cmd.Context())
			if err != nil {
				return err
			}

			result, err := d.ExecuteLine(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			query.RenderTo(ux.NewPrinter(cmd.OutOrStdout()), result)
			return nil
		},
	}
}
