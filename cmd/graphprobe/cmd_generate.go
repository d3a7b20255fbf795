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
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/graphprobe/services/graphprobe/graph"
)

func newGenerateCmd() *cobra.Command {
	var (
		opts graph.GenerateOptions
		out  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random graph in the loader format",
		Long: `Write a random directed acyclic graph with nodes N0..N{nodes-1}. Every
edge points from a lower index to a higher one. The same seed produces
the same file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var w io.Writer = cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, cerr := os.Create(out)
				if cerr != nil {
					return fmt.Errorf("create %s: %w", out, cerr)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}
			return graph.Generate(cmd.Context(), w, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Nodes, "nodes", 1000, "number of nodes")
	f.IntVar(&opts.Edges, "edges", 5000, "number of edges")
	f.Uint64Var(&opts.Seed, "seed", 1, "random seed")
	f.StringVarP(&out, "out", "o", "-", "output file, - for stdout")
	return cmd
}
