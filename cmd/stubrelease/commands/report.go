// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bartekus/stubrelease/cmd/stubrelease/internal/clierr"
	"github.com/bartekus/stubrelease/internal/runner"
	"github.com/bartekus/stubrelease/internal/steps"
)

type runReport struct {
	LastRun *runner.LastRun     `json:"last_run"`
	Steps   []runner.StepResult `json:"steps"`
}

func newReportCmd(flags *rootFlags, opts Options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the outcome of the last release run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveEnv(cmd, flags, opts)
			if err != nil {
				return err
			}

			rep, err := loadReport(runner.NewStateStore(e.stateDir()))
			if err != nil {
				return clierr.Wrap(clierr.ExitGeneral, "reading run state", err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(rep)
			}

			if rep.LastRun == nil {
				_, _ = fmt.Fprintln(out, "No release run recorded.")
				return nil
			}

			last := rep.LastRun
			_, _ = fmt.Fprintf(out, "Status: %s\n", last.Status)
			if last.Version != "" {
				_, _ = fmt.Fprintf(out, "Version: %s\n", last.Version)
			}
			_, _ = fmt.Fprintf(out, "Finished: %s (took %s)\n", last.FinishedAt.Local().Format("2006-01-02 15:04:05"),
				last.FinishedAt.Sub(last.StartedAt).Round(time.Millisecond))

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"Step", "Status", "Note"})
			for _, res := range rep.Steps {
				note, _, _ := strings.Cut(res.Note, "\n")
				t.AppendRow(table.Row{res.Step, strings.ToUpper(string(res.Status)), note})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()

			if last.Failed != "" {
				_, _ = fmt.Fprintf(out, "Failed at: %s\n", last.Failed)
			}
			if len(last.Warnings) > 0 {
				_, _ = fmt.Fprintf(out, "Warnings: %s\n", strings.Join(last.Warnings, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output results in JSON")
	return cmd
}

// loadReport reads the last run and the results of the steps it ran.
func loadReport(store *runner.StateStore) (runReport, error) {
	rep := runReport{Steps: []runner.StepResult{}}

	last, err := store.ReadLastRun()
	if err != nil || last == nil {
		return rep, err
	}
	rep.LastRun = last

	ids := last.Steps
	if len(ids) == 0 {
		ids = steps.IDs()
	}
	for _, id := range ids {
		res, err := store.ReadStep(id)
		if err != nil {
			return rep, err
		}
		if res != nil {
			rep.Steps = append(rep.Steps, *res)
		}
	}
	return rep, nil
}
