// SPDX-License-Identifier: AGPL-3.0-or-later

package steps

import (
	"context"
	"fmt"

	"github.com/bartekus/stubrelease/internal/runner"
	"github.com/bartekus/stubrelease/internal/shell"
	"github.com/bartekus/stubrelease/internal/versioning"
)

const ghInstallHint = "Install from https://cli.github.com/"

// GitHubRelease creates a hosted release for the version tag. It is
// best-effort: every problem becomes a warning.
type GitHubRelease struct{}

func (s *GitHubRelease) ID() string { return IDGitHubRelease }

// ReleaseCommand builds the gh invocation for version.
func ReleaseCommand(version string) shell.Command {
	return shell.Command{
		Name: "gh",
		Args: []string{
			"release", "create", versioning.Tag(version),
			"--title", "Release " + version,
			"--notes", fmt.Sprintf("Version %s released to PyPI", version),
		},
	}
}

func (s *GitHubRelease) Run(ctx context.Context, deps *runner.Deps) runner.StepResult {
	deps.UI.Println("Creating GitHub release...")

	if _, err := deps.Shell.LookPath("gh"); err != nil {
		deps.UI.Warn("GitHub CLI (gh) not found. Skipping GitHub release creation.", ghInstallHint)
		return runner.Warn(s.ID(), "gh not found; release not created")
	}

	cmd := ReleaseCommand(deps.Version)
	res, err := deps.Exec(ctx, cmd)
	if err := shell.Check(cmd, res, err); err != nil {
		deps.UI.Warn("GitHub release creation failed: "+err.Error(), "Create it manually with: "+cmd.String())
		return runner.Warn(s.ID(), err.Error())
	}

	tag := versioning.Tag(deps.Version)
	deps.UI.Success("GitHub release created: %s", tag)
	return runner.Pass(s.ID(), tag)
}
