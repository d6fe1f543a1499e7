// SPDX-License-Identifier: AGPL-3.0-or-later

package steps

import (
	"context"
	"fmt"

	"github.com/bartekus/stubrelease/internal/pypirc"
	"github.com/bartekus/stubrelease/internal/runner"
	"github.com/bartekus/stubrelease/internal/shell"
)

var defaultPublish = []string{"uv", "publish", "--username", pypirc.TokenUsername}

// Publish uploads the built distribution. The token travels in the
// environment, never on the command line, and is dropped once the upload ends.
type Publish struct{}

func (s *Publish) ID() string { return IDPublish }

func (s *Publish) Run(ctx context.Context, deps *runner.Deps) runner.StepResult {
	defer deps.ClearCredential()

	cred, ok := deps.Credential()
	if !ok {
		return runner.Fail(s.ID(), runner.ExitConfig, "no upload credential loaded")
	}

	argv := defaultPublish
	index := "PyPI"
	if deps.Config != nil {
		if len(deps.Config.Publish) > 0 {
			argv = deps.Config.Publish
		}
		if deps.Config.Index.Name != "" {
			index = deps.Config.Index.Name
		}
	}

	if _, err := deps.Shell.LookPath(argv[0]); err != nil {
		return runner.Fail(s.ID(), runner.ExitCommand,
			fmt.Sprintf("%s not found on PATH; it is required to publish the package", argv[0]))
	}

	deps.UI.Printf("Publishing to %s...\n", index)
	deps.UI.Printf("(Authenticating using %s token from the credential file)\n\n", index)

	cmd := shell.Command{
		Name:    argv[0],
		Args:    argv[1:],
		Env:     TokenEnv(cred),
		Secrets: []string{cred.Token},
	}
	res, err := deps.ExecWithSpinner(ctx, cmd, "uploading")
	if err := shell.Check(cmd, res, err); err != nil {
		return runner.Fail(s.ID(), runner.ExitCommand, err.Error())
	}

	deps.UI.Success("Published to %s", index)
	return runner.Pass(s.ID(), "published "+deps.Version)
}

// TokenEnv is the environment understood by uv and twine for token uploads.
func TokenEnv(cred pypirc.Credential) []string {
	return []string{
		"UV_PUBLISH_USERNAME=" + cred.Username,
		"UV_PUBLISH_PASSWORD=" + cred.Token,
		"TWINE_USERNAME=" + cred.Username,
		"TWINE_PASSWORD=" + cred.Token,
	}
}
