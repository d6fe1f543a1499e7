// SPDX-License-Identifier: AGPL-3.0-or-later

package steps

import (
	"context"
	"fmt"

	"github.com/bartekus/stubrelease/internal/runner"
	"github.com/bartekus/stubrelease/internal/shell"
)

var defaultBuild = []string{"uv", "build"}

// Build runs the configured packaging build.
type Build struct{}

func (s *Build) ID() string { return IDBuild }

func (s *Build) Run(ctx context.Context, deps *runner.Deps) runner.StepResult {
	argv := defaultBuild
	if deps.Config != nil && len(deps.Config.Build) > 0 {
		argv = deps.Config.Build
	}

	if _, err := deps.Shell.LookPath(argv[0]); err != nil {
		return runner.Fail(s.ID(), runner.ExitCommand,
			fmt.Sprintf("%s not found on PATH; it is required to build the package", argv[0]))
	}

	deps.UI.Println("Building package...")
	cmd := shell.Command{Name: argv[0], Args: argv[1:]}
	res, err := deps.ExecWithSpinner(ctx, cmd, "building")
	if err := shell.Check(cmd, res, err); err != nil {
		return runner.Fail(s.ID(), runner.ExitCommand, err.Error())
	}

	deps.UI.Success("Build complete")
	return runner.Pass(s.ID(), "")
}
