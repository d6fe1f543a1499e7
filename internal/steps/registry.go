// SPDX-License-Identifier: AGPL-3.0-or-later

// Package steps holds the stages of a release, in the order they run.
package steps

import (
	"github.com/bartekus/stubrelease/internal/runner"
)

// Step ids, also used as file names under the run state directory.
const (
	IDResolveVersion = "version:resolve"
	IDPersistVersion = "version:persist"
	IDCommitPush     = "git:commit-push"
	IDBuild          = "package:build"
	IDCredential     = "credential:load"
	IDPublish        = "package:publish"
	IDGitHubRelease  = "release:github"
	IDReport         = "release:report"
)

// Pipeline returns a fresh release pipeline. Everything up to and including
// publishing is fail-fast; the hosted release only ever passes or warns.
func Pipeline() []runner.Step {
	return []runner.Step{
		&ResolveVersion{},
		&PersistVersion{},
		&CommitPush{},
		&Build{},
		&LoadCredential{},
		&Publish{},
		&GitHubRelease{},
		&Report{},
	}
}

// IDs lists the pipeline step ids in order.
func IDs() []string {
	p := Pipeline()
	ids := make([]string, 0, len(p))
	for _, s := range p {
		ids = append(ids, s.ID())
	}
	return ids
}
