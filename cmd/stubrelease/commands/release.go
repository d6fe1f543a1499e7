// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/bartekus/stubrelease/cmd/stubrelease/internal/clierr"
	"github.com/bartekus/stubrelease/internal/history"
	"github.com/bartekus/stubrelease/internal/runner"
	"github.com/bartekus/stubrelease/internal/steps"
	"github.com/bartekus/stubrelease/internal/ui"
	"github.com/bartekus/stubrelease/internal/versioning"
)

func runRelease(cmd *cobra.Command, e *env, requested string) error {
	deps := &runner.Deps{
		WorkDir:          e.workDir,
		Config:           e.cfg,
		Shell:            e.shell,
		UI:               ui.New(cmd.OutOrStdout()),
		Log:              e.log,
		RequestedVersion: requested,
	}

	store := runner.NewStateStore(e.stateDir())
	last, runErr := runner.NewRunner(steps.Pipeline(), store, deps).Run(cmd.Context())

	recordHistory(cmd.Context(), e, deps, last)

	if runErr != nil {
		var stepErr *runner.StepError
		if errors.As(runErr, &stepErr) {
			return clierr.Reported(stepErr.ExitCode, stepErr)
		}
		return clierr.Wrap(clierr.ExitGeneral, "", runErr)
	}
	return nil
}

// recordHistory appends the run to the history database. Runs that never
// resolved a version are not recorded. Failures only warn.
func recordHistory(ctx context.Context, e *env, deps *runner.Deps, last *runner.LastRun) {
	if last == nil || deps.Version == "" || deps.Package == "" {
		return
	}

	path, err := e.historyPath()
	if err != nil {
		e.log.Warn().Err(err).Msg("release history not recorded")
		return
	}
	store, err := history.Open(path)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("release history not recorded")
		return
	}
	defer func() { _ = store.Close() }()

	id, err := store.Record(context.WithoutCancel(ctx), history.Entry{
		Package:    deps.Package,
		Version:    deps.Version,
		Tag:        versioning.Tag(deps.Version),
		Branch:     deps.Branch,
		Status:     last.Status,
		FailedStep: last.Failed,
		Warnings:   len(last.Warnings),
		StartedAt:  last.StartedAt,
		FinishedAt: last.FinishedAt,
	})
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("release history not recorded")
		return
	}
	e.log.Debug().Int64("id", id).Str("path", path).Msg("release recorded")
}
