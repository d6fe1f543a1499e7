// SPDX-License-Identifier: AGPL-3.0-or-later

package steps

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bartekus/stubrelease/internal/runner"
	"github.com/bartekus/stubrelease/internal/shell"
)

// CommitPush commits the version bump and pushes the current branch.
// Any git failure is fatal; nothing already pushed is rolled back.
type CommitPush struct{}

func (s *CommitPush) ID() string { return IDCommitPush }

// CommitMessage is the commit message for a bump to version.
func CommitMessage(version string) string {
	return "Bump version to " + version
}

func (s *CommitPush) Run(ctx context.Context, deps *runner.Deps) runner.StepResult {
	deps.UI.Println("Committing and pushing changes...")
	g := deps.Git()
	file := relToWorkDir(deps, deps.ProjectFile())

	if err := g.Add(ctx, file); err != nil {
		return gitFailure(s.ID(), "Failed to stage project file", err)
	}

	staged, err := g.HasStagedChanges(ctx)
	if err != nil {
		return gitFailure(s.ID(), "Failed to inspect staged changes", err)
	}

	committed := false
	if staged {
		// Hook rejections land here too and are not told apart from other failures.
		if err := g.Commit(ctx, CommitMessage(deps.Version)); err != nil {
			return gitFailure(s.ID(), "Git commit failed (possibly due to pre-commit hooks)", err)
		}
		committed = true
	} else {
		deps.UI.Printf("Nothing to commit in %s; skipping commit and pushing only.\n", file)
		deps.Log.Debug().Str("version", deps.Version).Msg("nothing staged, skipping commit")
	}

	branch, err := g.CurrentBranch(ctx)
	if err != nil {
		return gitFailure(s.ID(), "Failed to get current branch", err)
	}
	deps.Branch = branch

	remote := "origin"
	if deps.Config != nil && deps.Config.Remote != "" {
		remote = deps.Config.Remote
	}
	if err := g.Push(ctx, remote, branch); err != nil {
		return gitFailure(s.ID(), fmt.Sprintf("Failed to push to %s", branch), err)
	}

	deps.UI.Success("Changes pushed")
	if !committed {
		return runner.Pass(s.ID(), fmt.Sprintf("nothing to commit; pushed %s to %s", branch, remote))
	}
	return runner.Pass(s.ID(), fmt.Sprintf("committed and pushed %s to %s", branch, remote))
}

func gitFailure(step, what string, err error) runner.StepResult {
	code := runner.ExitGeneral
	if shell.IsCommandError(err) {
		code = runner.ExitCommand
	}
	return runner.Fail(step, code, fmt.Sprintf("%s: %v", what, err))
}

func relToWorkDir(deps *runner.Deps, path string) string {
	if deps.WorkDir == "" {
		return path
	}
	rel, err := filepath.Rel(deps.WorkDir, path)
	if err != nil {
		return path
	}
	return rel
}
