// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the graphprobe CLI.
package ux

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette, deep ocean teals.
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
)

// Styles provides pre-configured lipgloss styles.
var Styles = struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Highlight lipgloss.Style
	Box       lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(ColorTealBright),
	Subtitle:  lipgloss.NewStyle().Foreground(ColorTealPrimary),
	Bold:      lipgloss.NewStyle().Bold(true),
	Muted:     lipgloss.NewStyle().Foreground(ColorSlate),
	Success:   lipgloss.NewStyle().Foreground(ColorSuccess),
	Warning:   lipgloss.NewStyle().Foreground(ColorWarning),
	Error:     lipgloss.NewStyle().Foreground(ColorError),
	Highlight: lipgloss.NewStyle().Foreground(ColorTealBright).Bold(true),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorTealDeep).
		Padding(0, 1),
}

// Icon provides themed status icons.
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconArrow   Icon = "→"
	IconBullet  Icon = "•"
)

// Render returns the icon with its styling.
func (i Icon) Render() string {
	switch i {
	case IconSuccess:
		return Styles.Success.Render(string(i))
	case IconWarning:
		return Styles.Warning.Render(string(i))
	case IconError:
		return Styles.Error.Render(string(i))
	default:
		return string(i)
	}
}

// Mode selects styled or plain output.
type Mode int

const (
	// ModeStyled renders colors, icons and boxes.
	ModeStyled Mode = iota

	// ModePlain renders unadorned text with "OK:", "WARN:" and "ERROR:"
	// prefixes, for pipes, files and tests.
	ModePlain
)

// Printer writes styled or plain messages to one writer.
type Printer struct {
	w    io.Writer
	mode Mode
}

// NewPrinter returns a Printer for w. Output is styled only when w is a
// terminal and NO_COLOR is unset.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, mode: DetectMode(w)}
}

// NewPlainPrinter returns a Printer that never styles output.
func NewPlainPrinter(w io.Writer) *Printer {
	return &Printer{w: w, mode: ModePlain}
}

// DetectMode reports ModeStyled for a terminal file descriptor.
func DetectMode(w io.Writer) Mode {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return ModePlain
	}
	f, ok := w.(*os.File)
	if !ok {
		return ModePlain
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return ModeStyled
	}
	return ModePlain
}

// Mode returns the printer's output mode.
func (p *Printer) Mode() Mode {
	return p.mode
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

func (p *Printer) styled() bool {
	return p.mode == ModeStyled
}

// Title prints a heading. Plain mode prints the text as is.
func (p *Printer) Title(text string) {
	if p.styled() {
		text = Styles.Title.Render(text)
	}
	fmt.Fprintln(p.w, text)
}

// Success prints a success message.
func (p *Printer) Success(text string) {
	if p.styled() {
		fmt.Fprintf(p.w, "%s %s\n", IconSuccess.Render(), Styles.Success.Render(text))
		return
	}
	fmt.Fprintf(p.w, "OK: %s\n", text)
}

// Warning prints a warning message.
func (p *Printer) Warning(text string) {
	if p.styled() {
		fmt.Fprintf(p.w, "%s %s\n", IconWarning.Render(), Styles.Warning.Render(text))
		return
	}
	fmt.Fprintf(p.w, "WARN: %s\n", text)
}

// Error prints an error message.
func (p *Printer) Error(text string) {
	if p.styled() {
		fmt.Fprintf(p.w, "%s %s\n", IconError.Render(), Styles.Error.Render(text))
		return
	}
	fmt.Fprintf(p.w, "ERROR: %s\n", text)
}

// Line prints text unchanged.
func (p *Printer) Line(text string) {
	fmt.Fprintln(p.w, text)
}

// Muted prints secondary text.
func (p *Printer) Muted(text string) {
	if p.styled() {
		text = Styles.Muted.Render(text)
	}
	fmt.Fprintln(p.w, text)
}

// KeyValue prints an aligned "key: value" line.
func (p *Printer) KeyValue(key string, value any) {
	label := fmt.Sprintf("%-14s", key+":")
	if p.styled() {
		label = Styles.Subtitle.Render(label)
	}
	fmt.Fprintf(p.w, "%s %v\n", label, value)
}

// Box prints a titled block. Plain mode prints "title: content".
func (p *Printer) Box(title, content string) {
	if !p.styled() {
		fmt.Fprintf(p.w, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(p.w, Styles.Box.Width(60).Render(Styles.Title.Render(title)+"\n"+content))
}

// List prints one bulleted line per item.
func (p *Printer) List(items []string) {
	bullet := "-"
	if p.styled() {
		bullet = Styles.Muted.Render(string(IconBullet))
	}
	var b strings.Builder
	for _, item := range items {
		b.WriteString(bullet)
		b.WriteByte(' ')
		b.WriteString(item)
		b.WriteByte('\n')
	}
	fmt.Fprint(p.w, b.String())
}

// Prompt writes the input prompt without a newline.
func (p *Printer) Prompt(text string) {
	if p.styled() {
		text = Styles.Highlight.Render(text)
	}
	fmt.Fprint(p.w, text)
}
