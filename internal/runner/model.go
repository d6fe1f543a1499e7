// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import "time"

// StepStatus represents the outcome of a step execution.
type StepStatus string

const (
	StatusPass StepStatus = "pass"
	StatusFail StepStatus = "fail"
	StatusSkip StepStatus = "skip"
	// StatusWarn marks a best-effort step that could not do its job. The
	// pipeline keeps going.
	StatusWarn StepStatus = "warn"
)

// Exit codes carried by failing step results.
const (
	ExitGeneral = 1
	ExitUsage   = 2
	ExitConfig  = 3
	ExitCommand = 4
)

// StepResult represents the result of a single step execution.
// Matches <state_dir>/steps/<step>.json.
type StepResult struct {
	Step     string     `json:"step"`
	Status   StepStatus `json:"status"`
	ExitCode int        `json:"exit_code"`
	Note     string     `json:"note,omitempty"`
}

// Pass builds a passing result.
func Pass(step, note string) StepResult {
	return StepResult{Step: step, Status: StatusPass, Note: note}
}

// Skip builds a skipped result.
func Skip(step, note string) StepResult {
	return StepResult{Step: step, Status: StatusSkip, Note: note}
}

// Warn builds a degraded-but-continuing result.
func Warn(step, note string) StepResult {
	return StepResult{Step: step, Status: StatusWarn, Note: note}
}

// Fail builds a failing result with exit code code.
func Fail(step string, code int, note string) StepResult {
	return StepResult{Step: step, Status: StatusFail, ExitCode: code, Note: note}
}

// LastRun represents the summary of the last execution.
// Matches <state_dir>/last-run.json.
type LastRun struct {
	Status     string    `json:"status"` // "pass" or "fail"
	Version    string    `json:"version,omitempty"`
	Steps      []string  `json:"steps"` // Ordered list of steps run
	Failed     string    `json:"failed,omitempty"`
	Warnings   []string  `json:"warnings,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
