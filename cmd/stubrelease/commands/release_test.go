// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/stubrelease/cmd/stubrelease/internal/clierr"
	"github.com/bartekus/stubrelease/internal/shell"
	"github.com/bartekus/stubrelease/internal/shell/shelltest"
)

const testToken = "pypi-AgEIcHlwaS5vcmcCLITEST"

type project struct {
	dir    string
	pypirc string
	shell  *shelltest.Fake
}

func newProject(t *testing.T, version string, withPypirc bool) *project {
	t.Helper()
	dir := t.TempDir()
	home := t.TempDir()
	pypirc := filepath.Join(home, ".pypirc")

	write := func(path, content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}
	write(filepath.Join(dir, "pyproject.toml"), "[project]\nname = \"sqlean-stubs\"\nversion = \""+version+"\"\n")
	write(filepath.Join(dir, ".stubrelease.yaml"),
		"index:\n  credential_file: "+pypirc+"\nhistory_db: "+filepath.Join(home, "history.db")+"\n")
	if withPypirc {
		write(pypirc, "[pypi]\nusername = __token__\npassword = "+testToken+"\n")
	}

	fake := shelltest.New().
		On("git rev-parse --abbrev-ref HEAD", shell.Result{Stdout: "main"}).
		On("git diff --cached --quiet", shell.Result{ExitCode: 1})

	return &project{dir: dir, pypirc: pypirc, shell: fake}
}

func (p *project) exec(args ...string) (string, string, error) {
	cmd := NewRootCmdWith(Options{Shell: p.shell, WorkDir: p.dir})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRelease_Success(t *testing.T) {
	p := newProject(t, "0.0.3", true)
	p.shell.Missing("gh")

	out, _, err := p.exec("0.0.4")
	require.NoError(t, err)

	assert.Contains(t, out, "sqlean-stubs Release")
	assert.Contains(t, out, "GitHub CLI (gh) not found")
	assert.Contains(t, out, "Version 0.0.4 released successfully!")
	assert.NotContains(t, out, testToken)

	data, err := os.ReadFile(filepath.Join(p.dir, "pyproject.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `version = "0.0.4"`)

	assert.FileExists(t, filepath.Join(p.dir, ".stubrelease", "run", "last-run.json"))

	out, _, err = p.exec("report", "--json")
	require.NoError(t, err)
	var rep runReport
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	require.NotNil(t, rep.LastRun)
	assert.Equal(t, "pass", rep.LastRun.Status)
	assert.Equal(t, "0.0.4", rep.LastRun.Version)
	assert.Equal(t, []string{"release:github"}, rep.LastRun.Warnings)
	assert.Len(t, rep.Steps, 8)
	assert.NotContains(t, out, testToken)

	out, _, err = p.exec("report")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: pass")
	assert.Contains(t, out, "Version: 0.0.4")
	assert.Contains(t, out, "package:publish")
	assert.Contains(t, out, "Warnings: release:github")

	out, _, err = p.exec("history")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlean-stubs")
	assert.Contains(t, out, "0.0.4")
	assert.Contains(t, out, "main")
}

func TestRelease_MissingCredentialFile(t *testing.T) {
	p := newProject(t, "0.0.3", false)

	out, _, err := p.exec("0.0.4")
	require.Error(t, err)

	assert.Equal(t, clierr.ExitConfig, clierr.ExitCodeOf(err))
	assert.True(t, clierr.IsReported(err), "the failure is printed by the pipeline")
	assert.Contains(t, out, p.pypirc+" not found")
	assert.Contains(t, out, "username = __token__")
	assert.False(t, p.shell.Ran("uv publish"))

	out, _, err = p.exec("history")
	require.NoError(t, err)
	assert.Contains(t, out, "fail")
	assert.Contains(t, out, "credential:load")
}

func TestRelease_InvalidVersion(t *testing.T) {
	p := newProject(t, "0.0.3", true)

	out, _, err := p.exec("v1.0.0")
	require.Error(t, err)

	assert.Equal(t, clierr.ExitUsage, clierr.ExitCodeOf(err))
	assert.Contains(t, out, "invalid version format 'v1.0.0'")
	assert.Empty(t, p.shell.Calls())

	out, _, err = p.exec("history")
	require.NoError(t, err)
	assert.Contains(t, out, "No releases recorded.")
}

func TestRelease_BadConfig(t *testing.T) {
	p := newProject(t, "0.0.3", true)
	require.NoError(t, os.WriteFile(filepath.Join(p.dir, ".stubrelease.yaml"), []byte("remote: \"\"\n"), 0o600))

	_, _, err := p.exec("0.0.4")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitConfig, clierr.ExitCodeOf(err))
	assert.False(t, clierr.IsReported(err))
	assert.Contains(t, err.Error(), "remote must not be empty")
}

func TestRelease_ExplicitConfigMustExist(t *testing.T) {
	p := newProject(t, "0.0.3", true)

	_, _, err := p.exec("--config", "missing.yaml", "0.0.4")
	require.Error(t, err)
	assert.Equal(t, clierr.ExitConfig, clierr.ExitCodeOf(err))
}

func TestReport_NoState(t *testing.T) {
	p := newProject(t, "0.0.3", true)

	out, _, err := p.exec("report")
	require.NoError(t, err)
	assert.Equal(t, "No release run recorded.\n", out)

	out, _, err = p.exec("report", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_run": null, "steps": []}`, out)
}

func TestRelease_VerboseLogsToStderr(t *testing.T) {
	p := newProject(t, "0.0.3", true)

	out, stderr, err := p.exec("--verbose", "0.0.4")
	require.NoError(t, err)
	assert.Contains(t, stderr, "command finished")
	assert.NotContains(t, stderr, testToken)
	assert.NotContains(t, out, "command finished")
}
