// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"errors"
	"fmt"
	"strings"
)

// maxOutputLines bounds how much captured output ends up in error messages.
const maxOutputLines = 20

// CommandError reports a command that ran but exited non-zero.
type CommandError struct {
	Command string
	Result  Result
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("%s failed with exit code %d", e.Command, e.Result.ExitCode)
	if out := e.Output(); out != "" {
		msg += ": " + out
	}
	return msg
}

// Output returns the most useful captured output: stderr when present,
// otherwise stdout, truncated to the last lines.
func (e *CommandError) Output() string {
	out := e.Result.Stderr
	if out == "" {
		out = e.Result.Stdout
	}
	return Tail(out, maxOutputLines)
}

// Check folds the outcome of Runner.Run into a single error. It returns nil only
// when the command started and exited with status 0.
func Check(cmd Command, res Result, err error) error {
	if err != nil {
		return err
	}
	if !res.Success() {
		res.Stdout = Mask(res.Stdout, cmd.Secrets...)
		res.Stderr = Mask(res.Stderr, cmd.Secrets...)
		return &CommandError{Command: cmd.String(), Result: res}
	}
	return nil
}

// Tail keeps the last n lines of s.
func Tail(s string, n int) string {
	s = strings.TrimSpace(s)
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return "...(truncated)...\n" + strings.Join(lines[len(lines)-n:], "\n")
}

// Mask replaces every occurrence of each non-empty secret with "***".
func Mask(s string, secrets ...string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, "***")
	}
	return s
}

// IsCommandError reports whether err is, or wraps, a *CommandError.
func IsCommandError(err error) bool {
	var ce *CommandError
	return errors.As(err, &ce)
}
