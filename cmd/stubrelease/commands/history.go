// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/bartekus/stubrelease/cmd/stubrelease/internal/clierr"
	"github.com/bartekus/stubrelease/internal/history"
)

func newHistoryCmd(flags *rootFlags, opts Options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent release attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return clierr.Newf(clierr.ExitUsage, "--limit must be positive, got %d", limit)
			}

			e, err := resolveEnv(cmd, flags, opts)
			if err != nil {
				return err
			}
			path, err := e.historyPath()
			if err != nil {
				return clierr.Wrap(clierr.ExitConfig, "", err)
			}

			store, err := history.Open(path)
			if err != nil {
				return clierr.Wrap(clierr.ExitGeneral, "", err)
			}
			defer func() { _ = store.Close() }()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return clierr.Wrap(clierr.ExitGeneral, "", err)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out, "No releases recorded.")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.AppendHeader(table.Row{"#", "Package", "Version", "Status", "Failed Step", "Warnings", "Branch", "Started", "Took"})
			for _, en := range entries {
				t.AppendRow(table.Row{
					en.ID, en.Package, en.Version, en.Status, en.FailedStep, en.Warnings, en.Branch,
					en.StartedAt.Local().Format("2006-01-02 15:04:05"),
					en.Duration().Round(time.Millisecond),
				})
			}
			t.SetStyle(table.StyleRounded)
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of releases to list")
	return cmd
}
