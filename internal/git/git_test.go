// SPDX-License-Identifier: AGPL-3.0-or-later

package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/stubrelease/internal/shell"
	"github.com/bartekus/stubrelease/internal/shell/shelltest"
)

func TestClient_CommitAndPush(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	ctx := context.Background()

	remote := t.TempDir()
	runGit(t, remote, "init", "--bare")

	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "symbolic-ref", "HEAD", "refs/heads/main")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	runGit(t, dir, "remote", "add", "origin", remote)
	createFile(t, dir, "pyproject.toml", "[project]\nversion = \"0.0.1\"\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "Initial commit")

	c := New(shell.New(), dir)

	staged, err := c.HasStagedChanges(ctx)
	require.NoError(t, err)
	assert.False(t, staged)

	createFile(t, dir, "pyproject.toml", "[project]\nversion = \"0.0.2\"\n")
	require.NoError(t, c.Add(ctx, "pyproject.toml"))

	staged, err = c.HasStagedChanges(ctx)
	require.NoError(t, err)
	assert.True(t, staged)

	require.NoError(t, c.Commit(ctx, "Bump version to 0.0.2"))

	branch, err := c.CurrentBranch(ctx)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	require.NoError(t, c.Push(ctx, "origin", branch))

	out := runGit(t, remote, "log", "-1", "--format=%s", "main")
	assert.Equal(t, "Bump version to 0.0.2", out)
}

func TestClient_CommitNothingStaged(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test User")

	err := New(shell.New(), dir).Commit(context.Background(), "Bump version to 1.0.0")
	var cmdErr *shell.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, cmdErr.Command, "git commit")
}

func TestClient_CurrentBranchDetached(t *testing.T) {
	sh := shelltest.New().On("git rev-parse --abbrev-ref HEAD", shell.Result{Stdout: "HEAD\n"})

	_, err := New(sh, "").CurrentBranch(context.Background())
	assert.ErrorIs(t, err, ErrDetachedHead)
}

func TestClient_PushRejected(t *testing.T) {
	sh := shelltest.New().On("git push", shell.Result{ExitCode: 1, Stderr: "! [rejected] main -> main (fetch first)"})

	err := New(sh, "/repo").Push(context.Background(), "origin", "main")
	require.Error(t, err)
	assert.Equal(t, "git push origin main failed with exit code 1: ! [rejected] main -> main (fetch first)", err.Error())
	assert.Equal(t, "/repo", sh.Calls()[0].Dir)
}

func TestClient_HasStagedChangesError(t *testing.T) {
	sh := shelltest.New().On("git diff --cached --quiet", shell.Result{ExitCode: 128, Stderr: "fatal: not a git repository"})

	_, err := New(sh, "").HasStagedChanges(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\nOutput: %s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

func createFile(t *testing.T, dir, path, content string) {
	t.Helper()
	fullPath := filepath.Join(dir, path)
	require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
	require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o644))
}
