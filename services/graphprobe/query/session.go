// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/AleutianAI/graphprobe/pkg/ux"
)

// DefaultPrompt is printed before each command.
const DefaultPrompt = "graphprobe> "

// Session is an interactive command loop over one Dispatcher.
type Session struct {
	dispatcher *Dispatcher
	prompt     string
	plain      bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithPrompt replaces the prompt. An empty prompt disables it.
func WithPrompt(prompt string) SessionOption {
	return func(s *Session) {
		s.prompt = prompt
	}
}

// WithPlainOutput disables styling even on a terminal.
func WithPlainOutput() SessionOption {
	return func(s *Session) {
		s.plain = true
	}
}

// NewSession creates a Session.
func NewSession(d *Dispatcher, opts ...SessionOption) *Session {
	s := &Session{dispatcher: d, prompt: DefaultPrompt}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// readResult is one line or the terminal error from the reader goroutine.
type readResult struct {
	line string
	err  error
}

// Run reads commands from in and writes answers to out.
//
// Description:
//
//	Parse errors and strategy failures are printed and the loop continues.
//	Run returns nil on exit, quit or end of input, and the context error
//	when ctx is cancelled while waiting for input.
func (s *Session) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	printer := ux.NewPrinter(out)
	if s.plain {
		printer = ux.NewPlainPrinter(out)
	}

	lines := make(chan readResult)
	go readLines(ctx, in, lines)

	for {
		if s.prompt != "" {
			printer.Prompt(s.prompt)
		}

		var next readResult
		select {
		case <-ctx.Done():
			return ctx.Err()
		case r, ok := <-lines:
			if !ok {
				return nil
			}
			next = r
		}
		if next.err != nil {
			return fmt.Errorf("read command: %w", next.err)
		}

		cmd, err := Parse(next.line)
		switch {
		case errors.Is(err, ErrEmptyCommand):
			continue
		case err != nil:
			printer.Error(err.Error())
			continue
		}

		result, err := s.dispatcher.Execute(ctx, cmd)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			printer.Error(err.Error())
			continue
		}

		RenderTo(printer, result)
		if result.Exit {
			slog.Debug("session ended by command", slog.String("query_id", result.QueryID))
			return nil
		}
	}
}

// readLines sends each line of in to out and closes out at end of input.
func readLines(ctx context.Context, in io.Reader, out chan<- readResult) {
	defer close(out)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case out <- readResult{line: scanner.Text()}:
		case <-ctx.Done():
			return
		}
	}
	if err := scanner.Err(); err != nil {
		select {
		case out <- readResult{err: err}:
		case <-ctx.Done():
		}
	}
}
