// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the diagnostic logger. Progress meant for the person
// running a release goes through internal/ui; this logger carries the details
// (argv, exit codes, durations) that only matter when something goes wrong.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/bartekus/stubrelease/internal/ui"
)

// New returns a console logger writing to w. Warnings and errors are always
// shown; verbose enables debug output.
func New(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !ui.IsTerminal(w)}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
