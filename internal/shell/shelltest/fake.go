// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shelltest provides a scripted shell.Runner for tests.
package shelltest

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"github.com/bartekus/stubrelease/internal/shell"
)

// Handler produces the outcome of a matched command.
type Handler func(cmd shell.Command) (shell.Result, error)

type rule struct {
	prefix  string
	handler Handler
}

// Fake records every command and answers from registered rules. Unmatched
// commands succeed with empty output.
type Fake struct {
	mu      sync.Mutex
	rules   []rule
	missing map[string]bool
	calls   []shell.Command
}

// New returns an empty Fake on which every tool is installed.
func New() *Fake {
	return &Fake{missing: map[string]bool{}}
}

// On answers commands whose Line starts with prefix with res.
func (f *Fake) On(prefix string, res shell.Result) *Fake {
	return f.OnFunc(prefix, func(shell.Command) (shell.Result, error) { return res, nil })
}

// OnFunc answers commands whose Line starts with prefix with fn. The longest
// matching prefix wins.
func (f *Fake) OnFunc(prefix string, fn Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule{prefix: prefix, handler: fn})
	return f
}

// Missing marks name as absent from PATH.
func (f *Fake) Missing(name string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.missing[name] = true
	return f
}

// Run implements shell.Runner.
func (f *Fake) Run(_ context.Context, cmd shell.Command) (shell.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	if f.missing[cmd.Name] {
		f.mu.Unlock()
		return shell.Result{ExitCode: -1}, &exec.Error{Name: cmd.Name, Err: exec.ErrNotFound}
	}
	var best *rule
	line := cmd.Line()
	for i := range f.rules {
		r := &f.rules[i]
		if strings.HasPrefix(line, r.prefix) && (best == nil || len(r.prefix) >= len(best.prefix)) {
			best = r
		}
	}
	f.mu.Unlock()

	if best == nil {
		return shell.Result{}, nil
	}
	return best.handler(cmd)
}

// LookPath implements shell.Runner.
func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.missing[name] {
		return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
	}
	return "/usr/bin/" + name, nil
}

// Calls returns the recorded commands in order.
func (f *Fake) Calls() []shell.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]shell.Command(nil), f.calls...)
}

// Lines returns the recorded command lines in order.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, c.Line())
	}
	return lines
}

// Ran reports whether any recorded command line starts with prefix.
func (f *Fake) Ran(prefix string) bool {
	for _, l := range f.Lines() {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}
