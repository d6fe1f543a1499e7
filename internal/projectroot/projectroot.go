// SPDX-License-Identifier: AGPL-3.0-or-later

// Package projectroot locates the Python project a release runs against.
package projectroot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bartekus/stubrelease/internal/pyproject"
)

// ErrNotFound is returned when no ancestor of the start directory holds a
// project file.
var ErrNotFound = errors.New("no " + pyproject.DefaultPath + " found in this directory or any parent")

// Find walks up from start to the nearest directory containing a project file.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for {
		info, err := os.Stat(filepath.Join(dir, pyproject.DefaultPath))
		if err == nil && !info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotFound
		}
		dir = parent
	}
}
