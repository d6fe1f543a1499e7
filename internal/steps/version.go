// SPDX-License-Identifier: AGPL-3.0-or-later

package steps

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/bartekus/stubrelease/internal/pyproject"
	"github.com/bartekus/stubrelease/internal/runner"
	"github.com/bartekus/stubrelease/internal/versioning"
)

// ResolveVersion settles the version being released: the CLI argument when
// given, otherwise the version already in the project file.
type ResolveVersion struct{}

func (s *ResolveVersion) ID() string { return IDResolveVersion }

func (s *ResolveVersion) Run(ctx context.Context, deps *runner.Deps) runner.StepResult {
	if deps.RequestedVersion != "" {
		if err := versioning.Validate(deps.RequestedVersion); err != nil {
			return runner.Fail(s.ID(), runner.ExitUsage, err.Error())
		}
	}

	path := deps.ProjectFile()
	f, err := pyproject.Load(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return runner.Fail(s.ID(), runner.ExitConfig, fmt.Sprintf("%s not found", path))
		case errors.Is(err, pyproject.ErrVersionMissing):
			return runner.Fail(s.ID(), runner.ExitConfig, fmt.Sprintf("Could not read version from %s", path))
		default:
			return runner.Fail(s.ID(), runner.ExitConfig, err.Error())
		}
	}

	deps.Package = f.Name
	if deps.Config != nil && deps.Config.Package != "" {
		deps.Package = deps.Config.Package
	}
	if deps.Package == "" {
		return runner.Fail(s.ID(), runner.ExitConfig,
			fmt.Sprintf("no package name in %s; set [project] name or 'package' in the tool configuration", path))
	}

	deps.UI.Header(deps.Package + " Release")
	deps.UI.Section("Release Configuration:")

	if deps.RequestedVersion != "" {
		deps.Version = deps.RequestedVersion
		deps.UI.Printf("  Target version: %s\n", deps.Version)
		deps.UI.Printf("  Current version: %s\n\n", f.Version)
		return runner.Pass(s.ID(), "requested "+deps.Version)
	}

	deps.UI.Printf("  %s version: %s\n\n", filepath.Base(path), f.Version)
	if err := versioning.Validate(f.Version); err != nil {
		return runner.Fail(s.ID(), runner.ExitConfig, fmt.Sprintf("%s (read from %s)", err, path))
	}
	deps.Version = f.Version
	return runner.Pass(s.ID(), "from project file "+deps.Version)
}

// PersistVersion writes an explicitly requested version into the project file.
type PersistVersion struct{}

func (s *PersistVersion) ID() string { return IDPersistVersion }

func (s *PersistVersion) Run(ctx context.Context, deps *runner.Deps) runner.StepResult {
	if deps.RequestedVersion == "" {
		return runner.Skip(s.ID(), "no version argument; keeping the project file version")
	}

	path := deps.ProjectFile()
	previous, err := pyproject.SetVersion(path, deps.Version)
	if err != nil {
		if errors.Is(err, pyproject.ErrVersionMissing) {
			return runner.Fail(s.ID(), runner.ExitConfig,
				fmt.Sprintf("Could not update version: no version field in %s", path))
		}
		if errors.Is(err, pyproject.ErrRewriteMismatch) {
			return runner.Fail(s.ID(), runner.ExitConfig,
				fmt.Sprintf("Could not update version: the version field of %s could not be located safely; edit it by hand", path))
		}
		return runner.Fail(s.ID(), runner.ExitGeneral, fmt.Sprintf("Could not update version: %v", err))
	}

	if previous == deps.Version {
		deps.UI.Success("Version already set to %s", deps.Version)
		return runner.Pass(s.ID(), "unchanged")
	}

	if cmp, err := versioning.Compare(deps.Version, previous); err == nil && cmp <= 0 {
		deps.UI.Warn(
			fmt.Sprintf("Version %s does not come after %s", deps.Version, previous),
			"The index may reject a version it has already seen.",
		)
	}
	deps.UI.Success("Updated version to %s", deps.Version)
	return runner.Pass(s.ID(), previous+" -> "+deps.Version)
}
