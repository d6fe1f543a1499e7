// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell runs external commands to completion and captures their output.
//
// Every invocation blocks until the process exits. A non-zero exit status is not
// an error at this level: it is reported through Result.ExitCode so callers can
// decide whether the failure is fatal. Run only returns an error when the process
// could not be started or was interrupted.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Command describes one external invocation.
type Command struct {
	Name string
	Args []string

	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE pairs appended to the parent environment.
	Env []string

	// Secrets are masked whenever the command is rendered for humans.
	Secrets []string
}

// Line renders the command as typed, without masking. Intended for matching,
// never for output.
func (c Command) Line() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// String renders the command for display with secrets masked and arguments
// containing whitespace quoted.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return Mask(strings.Join(parts, " "), c.Secrets...)
}

// Result is the outcome of a finished command.
type Result struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

// Success reports whether the command exited with status 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Runner executes commands. Exec is the real implementation; tests use shelltest.Fake.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(name string) (string, error)
}

// Exec runs commands through os/exec.
type Exec struct{}

// New returns a Runner backed by os/exec.
func New() *Exec { return &Exec{} }

// Run executes cmd and waits for it to finish.
func (e *Exec) Run(ctx context.Context, cmd Command) (Result, error) {
	// #nosec G204 -- commands are assembled by the release steps, not from raw user input
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr strings.Builder
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		res.ExitCode = -1
		return res, fmt.Errorf("running %s: %w", cmd.Name, err)
	}
	return res, nil
}

// LookPath reports where name is found on PATH.
func (e *Exec) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}
