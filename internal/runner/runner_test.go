// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/stubrelease/internal/shell"
	"github.com/bartekus/stubrelease/internal/shell/shelltest"
	"github.com/bartekus/stubrelease/internal/ui"
)

// MockStep implements Step for testing.
type MockStep struct {
	id     string
	result StepResult
	called bool
	run    func(deps *Deps)
}

func (m *MockStep) ID() string {
	return m.id
}

func (m *MockStep) Run(ctx context.Context, deps *Deps) StepResult {
	m.called = true
	if m.run != nil {
		m.run(deps)
	}
	return m.result
}

func newDeps(out *bytes.Buffer) *Deps {
	return &Deps{
		Shell: shelltest.New(),
		UI:    ui.New(out),
		Log:   zerolog.Nop(),
	}
}

func TestRunner_Run(t *testing.T) {
	store := NewStateStore(t.TempDir())
	var out bytes.Buffer

	s1 := &MockStep{id: "version:resolve", result: Pass("", ""), run: func(d *Deps) { d.Version = "1.2.3" }}
	s2 := &MockStep{id: "version:persist", result: Skip("version:persist", "no version argument")}
	s3 := &MockStep{id: "release:github", result: Warn("release:github", "gh not found")}
	s4 := &MockStep{id: "release:report", result: Pass("release:report", "")}

	last, err := NewRunner([]Step{s1, s2, s3, s4}, store, newDeps(&out)).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, s4.called, "warnings and skips do not stop the pipeline")
	assert.Equal(t, "pass", last.Status)
	assert.Equal(t, "1.2.3", last.Version)
	assert.Equal(t, []string{"release:github"}, last.Warnings)

	stored, err := store.ReadLastRun()
	require.NoError(t, err)
	assert.Equal(t, "pass", stored.Status)
	assert.Equal(t, []string{"version:resolve", "version:persist", "release:github", "release:report"}, stored.Steps)
	assert.Empty(t, stored.Failed)

	res, err := store.ReadStep("version:resolve")
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "version:resolve", res.Step, "empty step ids are filled in")
	assert.Equal(t, StatusPass, res.Status)
}

func TestRunner_Run_FailFast(t *testing.T) {
	store := NewStateStore(t.TempDir())
	var out bytes.Buffer

	s1 := &MockStep{id: "package:build", result: Pass("package:build", "")}
	s2 := &MockStep{id: "credential:load", result: Fail("credential:load", ExitConfig, "~/.pypirc not found\nExpected format: ...")}
	s3 := &MockStep{id: "package:publish", result: Pass("package:publish", "")}

	last, err := NewRunner([]Step{s1, s2, s3}, store, newDeps(&out)).Run(context.Background())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, "credential:load", stepErr.Step)
	assert.Equal(t, ExitConfig, stepErr.ExitCode)
	assert.Equal(t, "step credential:load failed: ~/.pypirc not found", err.Error())

	assert.True(t, s1.called)
	assert.False(t, s3.called, "nothing runs after a failure")
	assert.Contains(t, out.String(), "✗ ~/.pypirc not found")

	assert.Equal(t, "fail", last.Status)
	assert.Equal(t, "credential:load", last.Failed)
	assert.Equal(t, []string{"package:build", "credential:load"}, last.Steps)

	stored, err := store.ReadLastRun()
	require.NoError(t, err)
	assert.Equal(t, "fail", stored.Status)
	assert.Equal(t, "credential:load", stored.Failed)
}

func TestRunner_Run_DefaultsExitCode(t *testing.T) {
	s1 := &MockStep{id: "x", result: StepResult{Status: StatusFail}}

	_, err := NewRunner([]Step{s1}, NewStateStore(t.TempDir()), newDeps(&bytes.Buffer{})).Run(context.Background())

	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, ExitGeneral, stepErr.ExitCode)
	assert.Equal(t, "step x failed", err.Error())
}

func TestRunner_Run_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s1 := &MockStep{id: "package:build", result: Pass("package:build", "")}

	_, err := NewRunner([]Step{s1}, NewStateStore(t.TempDir()), newDeps(&bytes.Buffer{})).Run(ctx)

	require.Error(t, err)
	assert.False(t, s1.called)
	assert.Contains(t, err.Error(), "interrupted")
}

func TestStateStore_EmptyAndReset(t *testing.T) {
	dir := t.TempDir()
	store := NewStateStore(dir + "/run")

	last, err := store.ReadLastRun()
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, store.WriteStepResult(Pass("git:commit-push", "")))
	assert.FileExists(t, dir+"/run/steps/git_commit-push.json")

	require.NoError(t, store.Reset())
	assert.NoDirExists(t, dir+"/run")
}

func TestDeps_ExecEchoesMaskedCommand(t *testing.T) {
	var out bytes.Buffer
	fake := shelltest.New()
	d := &Deps{WorkDir: "/repo", Shell: fake, UI: ui.New(&out), Log: zerolog.Nop()}

	_, err := d.Exec(context.Background(), shell.Command{
		Name:    "uv",
		Args:    []string{"publish", "--password", "pypi-secret"},
		Secrets: []string{"pypi-secret"},
	})
	require.NoError(t, err)

	assert.Equal(t, "→ uv publish --password ***\n", out.String())
	assert.Equal(t, "/repo", fake.Calls()[0].Dir)
}

func TestDeps_Credential(t *testing.T) {
	d := &Deps{}
	_, ok := d.Credential()
	assert.False(t, ok)
}
