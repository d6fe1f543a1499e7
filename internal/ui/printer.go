// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui renders release progress for humans: coloured status lines,
// section headers and a spinner for long-running commands. Colours and the
// spinner are only used when the output is a terminal.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
)

const separatorWidth = 60

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Printer writes release progress to one stream.
type Printer struct {
	out   io.Writer
	color bool
}

// New returns a Printer on out, coloured when out is a terminal.
func New(out io.Writer) *Printer {
	return &Printer{out: out, color: IsTerminal(out)}
}

// Writer exposes the underlying stream.
func (p *Printer) Writer() io.Writer { return p.out }

func (p *Printer) paint(c text.Color, s string) string {
	if !p.color {
		return s
	}
	return c.Sprint(s)
}

// Header prints title between two separator rules.
func (p *Printer) Header(title string) {
	rule := strings.Repeat("=", separatorWidth)
	_, _ = fmt.Fprintf(p.out, "\n%s\n%s\n%s\n\n",
		p.paint(text.FgYellow, rule), p.paint(text.FgYellow, title), p.paint(text.FgYellow, rule))
}

// Section prints a highlighted label.
func (p *Printer) Section(title string) {
	_, _ = fmt.Fprintln(p.out, p.paint(text.FgYellow, title))
}

// Command echoes a command line before it runs.
func (p *Printer) Command(line string) {
	_, _ = fmt.Fprintln(p.out, p.paint(text.FgBlue, "→ "+line))
}

// Success prints a check-marked line.
func (p *Printer) Success(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, "%s\n\n", p.paint(text.FgGreen, "✓ "+fmt.Sprintf(format, args...)))
}

// Error prints a cross-marked line.
func (p *Printer) Error(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, "%s\n\n", p.paint(text.FgRed, "✗ "+fmt.Sprintf(format, args...)))
}

// Warn prints a warning line; hint, when set, goes on an indented second line.
func (p *Printer) Warn(msg, hint string) {
	_, _ = fmt.Fprintln(p.out, p.paint(text.FgYellow, "⚠ "+msg))
	if hint != "" {
		_, _ = fmt.Fprintln(p.out, p.paint(text.FgYellow, "  "+hint))
	}
	_, _ = fmt.Fprintln(p.out)
}

// Highlight prints a green line without a marker.
func (p *Printer) Highlight(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, "%s\n\n", p.paint(text.FgGreen, fmt.Sprintf(format, args...)))
}

// Printf writes plain formatted text.
func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

// Println writes a plain line.
func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

// Spin shows a spinner with suffix until the returned stop func is called.
// On non-terminal output it does nothing.
func (p *Printer) Spin(suffix string) (stop func()) {
	if !p.color {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(p.out))
	_ = s.Color("yellow")
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}
