// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package query turns text commands into searches and renders the answers.
//
// Parse reads one command line. A Dispatcher runs existence and path
// commands through both the sequential and the parallel strategy, timing
// each. Render prints a Result, and Session drives the interactive loop.
package query

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for command parsing.
var (
	// ErrEmptyCommand is returned for a blank line.
	ErrEmptyCommand = errors.New("empty command")

	// ErrUnknownCommand is returned for an unrecognized keyword.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrUsage is returned when a command has the wrong number of arguments.
	ErrUsage = errors.New("usage")
)

// Op identifies a command.
type Op string

const (
	OpNodes Op = "nodes"
	OpNode  Op = "node"
	OpEdges Op = "edges"
	OpEdge  Op = "edge"
	OpPath  Op = "path"
	OpStats Op = "stats"
	OpHelp  Op = "help"
	OpExit  Op = "exit"
)

// Command is one parsed command line.
type Command struct {
	Op   Op
	Args []string
}

// String renders the command in canonical form.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return string(c.Op)
	}
	return string(c.Op) + " " + strings.Join(c.Args, " ")
}

// commandDef describes one command for parsing and help output.
type commandDef struct {
	op      Op
	args    int
	usage   string
	summary string
}

// commandTable lists commands in help order.
var commandTable = []commandDef{
	{OpNodes, 0, "nodes", "list all nodes"},
	{OpNode, 1, "node <id>", "check that a node exists"},
	{OpEdges, 0, "edges", "list all edges"},
	{OpEdge, 2, "edge <source> <target>", "check that a directed edge exists"},
	{OpPath, 2, "path <start> <end>", "find a directed path"},
	{OpStats, 0, "stats", "show graph size and load summary"},
	{OpHelp, 0, "help", "show this list"},
	{OpExit, 0, "exit", "end the session (also: quit)"},
}

var defsByKeyword = func() map[string]commandDef {
	m := make(map[string]commandDef, len(commandTable)+1)
	for _, def := range commandTable {
		m[string(def.op)] = def
	}
	m["quit"] = m[string(OpExit)]
	return m
}()

// Parse reads a command line.
//
// Description:
//
//	The keyword is case-insensitive; arguments are kept verbatim. Tokens are
//	separated by any run of whitespace.
//
// Outputs:
//
//	Command - The parsed command.
//	error - ErrEmptyCommand, ErrUnknownCommand, or ErrUsage with the
//	expected form.
func Parse(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, ErrEmptyCommand
	}

	keyword := strings.ToLower(fields[0])
	def, ok := defsByKeyword[keyword]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q (type \"help\" for a list)", ErrUnknownCommand, fields[0])
	}

	args := fields[1:]
	if len(args) != def.args {
		return Command{}, fmt.Errorf("%w: %s", ErrUsage, def.usage)
	}

	return Command{Op: def.op, Args: args}, nil
}

// HelpLines returns one "usage  summary" line per command.
func HelpLines() []string {
	width := 0
	for _, def := range commandTable {
		width = max(width, len(def.usage))
	}

	lines := make([]string, len(commandTable))
	for i, def := range commandTable {
		lines[i] = fmt.Sprintf("%-*s  %s", width, def.usage, def.summary)
	}
	return lines
}
