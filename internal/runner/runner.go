// SPDX-License-Identifier: AGPL-3.0-or-later

package runner

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StepError is returned by Run when a step fails. The pipeline has stopped and
// the failure has already been shown to the user.
type StepError struct {
	Step     string
	ExitCode int
	Note     string
}

func (e *StepError) Error() string {
	note, _, _ := strings.Cut(e.Note, "\n")
	if note == "" {
		return fmt.Sprintf("step %s failed", e.Step)
	}
	return fmt.Sprintf("step %s failed: %s", e.Step, note)
}

// Runner manages the execution of steps.
type Runner struct {
	steps []Step
	store *StateStore
	deps  *Deps
	now   func() time.Time
}

// NewRunner creates a new runner with the given steps and dependencies.
func NewRunner(steps []Step, store *StateStore, deps *Deps) *Runner {
	return &Runner{
		steps: steps,
		store: store,
		deps:  deps,
		now:   time.Now,
	}
}

// Run executes the steps in order and stops at the first failure. Skipped
// and warning steps do not stop the pipeline. The returned summary is always
// non-nil; the error is a *StepError for step failures.
func (r *Runner) Run(ctx context.Context) (*LastRun, error) {
	last := &LastRun{Status: "pass", StartedAt: r.now()}

	var runErr error
	for _, step := range r.steps {
		id := step.ID()
		last.Steps = append(last.Steps, id)

		var res StepResult
		if err := ctx.Err(); err != nil {
			res = Fail(id, ExitGeneral, fmt.Sprintf("release interrupted: %v", err))
		} else {
			r.deps.Log.Debug().Str("step", id).Msg("starting step")
			res = step.Run(ctx, r.deps)
		}
		if res.Step == "" {
			res.Step = id
		}
		last.Version = r.deps.Version

		if err := r.store.WriteStepResult(res); err != nil {
			last.Status = "fail"
			last.Failed = id
			return r.finish(last, fmt.Errorf("writing result for %s: %w", id, err))
		}

		r.deps.Log.Debug().Str("step", id).Str("status", string(res.Status)).Msg("step finished")

		switch res.Status {
		case StatusPass, StatusSkip:
			continue
		case StatusWarn:
			last.Warnings = append(last.Warnings, id)
			continue
		}

		last.Status = "fail"
		last.Failed = id
		if r.deps.UI != nil && res.Note != "" {
			r.deps.UI.Error("%s", res.Note)
		}
		code := res.ExitCode
		if code <= 0 {
			code = ExitGeneral
		}
		runErr = &StepError{Step: id, ExitCode: code, Note: res.Note}
		break
	}

	return r.finish(last, runErr)
}

func (r *Runner) finish(last *LastRun, runErr error) (*LastRun, error) {
	last.FinishedAt = r.now()
	if err := r.store.WriteLastRun(*last); err != nil {
		if runErr != nil {
			return last, runErr
		}
		return last, fmt.Errorf("writing last run: %w", err)
	}
	return last, runErr
}
