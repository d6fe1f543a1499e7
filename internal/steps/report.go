// SPDX-License-Identifier: AGPL-3.0-or-later

package steps

import (
	"context"

	"github.com/bartekus/stubrelease/internal/config"
	"github.com/bartekus/stubrelease/internal/runner"
)

// Report prints the closing summary with an install hint.
type Report struct{}

func (s *Report) ID() string { return IDReport }

func (s *Report) Run(ctx context.Context, deps *runner.Deps) runner.StepResult {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}

	deps.UI.Header("Release Complete!")
	deps.UI.Highlight("Version %s released successfully!", deps.Version)
	deps.UI.Printf("Verify on %s:\n", cfg.Index.Name)
	deps.UI.Printf("  pip install %s==%s\n", deps.Package, deps.Version)
	deps.UI.Printf("  %s\n\n", cfg.ProjectURL(deps.Package))
	return runner.Pass(s.ID(), "")
}
