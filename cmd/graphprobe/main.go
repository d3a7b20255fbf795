// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command graphprobe answers existence and path queries over a directed
// graph, comparing a sequential search against parallel ones.
//
// Usage:
//
//	graphprobe generate --nodes 10000 --edges 50000 --out graph.txt
//	graphprobe repl --graph graph.txt
//	graphprobe query --graph graph.txt path N0 N42
//	graphprobe serve --graph graph.txt --watch
//
// The graph file holds one declaration per line: "* <id>" for a node and
// "- <source> <target>" for an edge.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
