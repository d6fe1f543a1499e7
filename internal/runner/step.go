// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/bartekus/stubrelease/internal/config"
	"github.com/bartekus/stubrelease/internal/git"
	"github.com/bartekus/stubrelease/internal/pypirc"
	"github.com/bartekus/stubrelease/internal/pyproject"
	"github.com/bartekus/stubrelease/internal/shell"
	"github.com/bartekus/stubrelease/internal/ui"
)

// Deps carries the collaborators and the release values threaded through the
// pipeline. Steps read what earlier steps resolved and fill in their own part.
type Deps struct {
	WorkDir string
	Config  *config.Config
	Shell   shell.Runner
	UI      *ui.Printer
	Log     zerolog.Logger

	// RequestedVersion is the CLI argument; empty means "use the project file".
	RequestedVersion string

	// Filled in while the pipeline runs.
	Version string
	Package string
	Branch  string

	credential *pypirc.Credential
}

// SetCredential stores the upload credential until ClearCredential is called.
func (d *Deps) SetCredential(c pypirc.Credential) { d.credential = &c }

// Credential returns the stored upload credential, if any.
func (d *Deps) Credential() (pypirc.Credential, bool) {
	if d.credential == nil {
		return pypirc.Credential{}, false
	}
	return *d.credential, true
}

// ClearCredential drops the upload credential.
func (d *Deps) ClearCredential() { d.credential = nil }

// Exec echoes cmd, runs it in the working directory and logs the outcome.
func (d *Deps) Exec(ctx context.Context, cmd shell.Command) (shell.Result, error) {
	return d.exec(ctx, cmd, "")
}

// ExecWithSpinner is Exec with a spinner shown while cmd blocks.
func (d *Deps) ExecWithSpinner(ctx context.Context, cmd shell.Command, suffix string) (shell.Result, error) {
	return d.exec(ctx, cmd, suffix)
}

func (d *Deps) exec(ctx context.Context, cmd shell.Command, spin string) (shell.Result, error) {
	if cmd.Dir == "" {
		cmd.Dir = d.WorkDir
	}
	if d.UI != nil {
		d.UI.Command(cmd.String())
		if spin != "" {
			stop := d.UI.Spin(spin)
			defer stop()
		}
	}
	start := time.Now()
	res, err := d.Shell.Run(ctx, cmd)
	d.Log.Debug().
		Str("cmd", cmd.String()).
		Int("exit_code", res.ExitCode).
		Dur("took", time.Since(start)).
		Err(err).
		Msg("command finished")
	return res, err
}

// ProjectFile is the configured project file resolved against WorkDir.
func (d *Deps) ProjectFile() string {
	p := pyproject.DefaultPath
	if d.Config != nil && d.Config.ProjectFile != "" {
		p = d.Config.ProjectFile
	}
	if filepath.IsAbs(p) || d.WorkDir == "" {
		return p
	}
	return filepath.Join(d.WorkDir, p)
}

// Runner returns a shell.Runner that routes every command through Exec.
func (d *Deps) Runner() shell.Runner { return echoRunner{d: d} }

// Git returns a git client on the working directory whose commands are echoed.
func (d *Deps) Git() *git.Client { return git.New(d.Runner(), d.WorkDir) }

type echoRunner struct{ d *Deps }

func (e echoRunner) Run(ctx context.Context, cmd shell.Command) (shell.Result, error) {
	return e.d.Exec(ctx, cmd)
}

func (e echoRunner) LookPath(name string) (string, error) { return e.d.Shell.LookPath(name) }

// Step defines one stage of the release pipeline.
type Step interface {
	// ID returns the unique identifier (e.g. "package:build").
	ID() string

	// Run executes the step.
	Run(ctx context.Context, deps *Deps) StepResult
}
