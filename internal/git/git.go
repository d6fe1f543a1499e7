// SPDX-License-Identifier: AGPL-3.0-or-later

// Package git wraps the git CLI operations needed to publish a version bump.
package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bartekus/stubrelease/internal/shell"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD is not on a branch.
var ErrDetachedHead = errors.New("HEAD is detached; check out a branch before releasing")

// Client runs git inside one working tree.
type Client struct {
	sh  shell.Runner
	dir string
}

// New returns a Client operating on dir. An empty dir means the current directory.
func New(sh shell.Runner, dir string) *Client {
	return &Client{sh: sh, dir: dir}
}

// Command builds the shell command for git args without running it.
func (c *Client) Command(args ...string) shell.Command {
	return shell.Command{Name: "git", Args: args, Dir: c.dir}
}

func (c *Client) run(ctx context.Context, args ...string) (shell.Result, error) {
	cmd := c.Command(args...)
	res, err := c.sh.Run(ctx, cmd)
	if err := shell.Check(cmd, res, err); err != nil {
		return res, err
	}
	return res, nil
}

// Add stages paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	_, err := c.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// HasStagedChanges reports whether the index differs from HEAD.
func (c *Client) HasStagedChanges(ctx context.Context) (bool, error) {
	cmd := c.Command("diff", "--cached", "--quiet")
	res, err := c.sh.Run(ctx, cmd)
	if err != nil {
		return false, err
	}
	switch res.ExitCode {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, shell.Check(cmd, res, nil)
	}
}

// Commit records the staged changes with message.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", "-m", message)
	return err
}

// CurrentBranch returns the short name of the checked-out branch.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	res, err := c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	branch := strings.TrimSpace(res.Stdout)
	if branch == "" {
		return "", fmt.Errorf("git rev-parse returned an empty branch name")
	}
	if branch == "HEAD" {
		return "", ErrDetachedHead
	}
	return branch, nil
}

// Push pushes branch to remote.
func (c *Client) Push(ctx context.Context, remote, branch string) error {
	_, err := c.run(ctx, "push", remote, branch)
	return err
}
