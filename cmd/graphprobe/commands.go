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
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	configPath string
	graphPath  string
	workers    int
	logLevel   string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "graphprobe",
		Short: "Compare sequential and parallel search over a directed graph",
		Long: `graphprobe loads a directed graph from a text file and answers node,
edge and path queries with a sequential strategy and a parallel one,
reporting both answers and their timings side by side.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default graphprobe.yaml)")
	pf.StringVarP(&flags.graphPath, "graph", "g", "", "graph file to load")
	pf.IntVarP(&flags.workers, "workers", "w", 0, "worker count for parallel search")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn, error")

	replCmd := newReplCmd(flags)
	rootCmd.RunE = replCmd.RunE
	rootCmd.Args = cobra.NoArgs
	rootCmd.Flags().AddFlagSet(replCmd.Flags())

	rootCmd.AddCommand(
		replCmd,
		newQueryCmd(flags),
		newGenerateCmd(),
		newServeCmd(flags),
		newConfigCmd(flags),
	)
	return rootCmd
}
