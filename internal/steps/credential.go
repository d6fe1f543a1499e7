// SPDX-License-Identifier: AGPL-3.0-or-later

package steps

import (
	"context"

	"github.com/bartekus/stubrelease/internal/config"
	"github.com/bartekus/stubrelease/internal/pypirc"
	"github.com/bartekus/stubrelease/internal/runner"
)

// LoadCredential reads the upload token and keeps it on deps for Publish.
type LoadCredential struct{}

func (s *LoadCredential) ID() string { return IDCredential }

func (s *LoadCredential) Run(ctx context.Context, deps *runner.Deps) runner.StepResult {
	opts := pypirc.Options{Section: pypirc.DefaultSection, Prefix: pypirc.DefaultPrefix}
	file := "~/" + pypirc.DefaultFile
	if deps.Config != nil {
		if deps.Config.Index.CredentialFile != "" {
			file = deps.Config.Index.CredentialFile
		}
		if deps.Config.Index.Section != "" {
			opts.Section = deps.Config.Index.Section
		}
		if deps.Config.Index.TokenPrefix != "" {
			opts.Prefix = deps.Config.Index.TokenPrefix
		}
	}

	path, err := config.ExpandHome(file)
	if err != nil {
		return runner.Fail(s.ID(), runner.ExitConfig, err.Error())
	}
	opts.Path = path

	deps.UI.Println("Reading PyPI credentials...")
	cred, err := pypirc.Load(opts)
	if err != nil {
		return runner.Fail(s.ID(), runner.ExitConfig, err.Error())
	}
	deps.SetCredential(cred)
	deps.Log.Debug().Str("file", path).Str("credential", cred.String()).Msg("credential loaded")

	deps.UI.Success("Credentials loaded")
	return runner.Pass(s.ID(), "loaded from "+path)
}
