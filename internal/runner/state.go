// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bartekus/stubrelease/internal/atomicfile"
)

// StateStore handles reading and writing run state.
type StateStore struct {
	baseDir string
}

// NewStateStore creates a store at the given base directory (e.g. .stubrelease/run).
func NewStateStore(baseDir string) *StateStore {
	return &StateStore{baseDir: baseDir}
}

// Dir is the base directory of the store.
func (s *StateStore) Dir() string { return s.baseDir }

func (s *StateStore) lastRunPath() string {
	return filepath.Join(s.baseDir, "last-run.json")
}

func (s *StateStore) stepPath(stepID string) string {
	// Step ids contain ':' which is not portable in file names.
	return filepath.Join(s.baseDir, "steps", safeName(stepID)+".json")
}

// ReadLastRun loads the last execution summary. A missing file yields nil, nil.
func (s *StateStore) ReadLastRun() (*LastRun, error) {
	var last LastRun
	ok, err := readJSON(s.lastRunPath(), &last)
	if err != nil || !ok {
		return nil, err
	}
	return &last, nil
}

// ReadStep loads the stored result of stepID. A missing file yields nil, nil.
func (s *StateStore) ReadStep(stepID string) (*StepResult, error) {
	var res StepResult
	ok, err := readJSON(s.stepPath(stepID), &res)
	if err != nil || !ok {
		return nil, err
	}
	return &res, nil
}

// WriteLastRun saves the execution summary.
func (s *StateStore) WriteLastRun(last LastRun) error {
	return writeJSON(s.lastRunPath(), last)
}

// WriteStepResult saves a step's result.
func (s *StateStore) WriteStepResult(res StepResult) error {
	return writeJSON(s.stepPath(res.Step), res)
}

// Reset clears the state directory.
func (s *StateStore) Reset() error {
	return os.RemoveAll(s.baseDir)
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is under the state dir
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil // Not found is clean state
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decoding %s: %w", path, err)
	}
	return true, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return atomicfile.Write(path, append(data, '\n'), 0o644)
}

func safeName(id string) string {
	out := []rune(id)
	for i, r := range out {
		switch r {
		case ':', '/', '\\':
			out[i] = '_'
		}
	}
	return string(out)
}
