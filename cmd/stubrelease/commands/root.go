// SPDX-License-Identifier: AGPL-3.0-or-later

/*
stubrelease - release automation for Python type-stub packages.
It bumps the project version, commits and pushes it, builds and publishes the
distribution and cuts a GitHub release.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

// Package commands contains the Cobra commands of the stubrelease CLI.
package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bartekus/stubrelease/cmd/stubrelease/internal/clierr"
	"github.com/bartekus/stubrelease/internal/config"
	"github.com/bartekus/stubrelease/internal/logging"
	"github.com/bartekus/stubrelease/internal/projectroot"
	"github.com/bartekus/stubrelease/internal/shell"
)

// Version is stamped at build time with -ldflags "-X ...commands.Version=...".
var Version = "0.0.0-dev"

// Options replaces parts of the process environment, for tests.
type Options struct {
	// Shell runs external commands. Defaults to the real shell.
	Shell shell.Runner

	// WorkDir is the project directory. Defaults to the nearest directory
	// holding pyproject.toml, or the current directory when there is none.
	WorkDir string
}

type rootFlags struct {
	verbose    bool
	configPath string
}

// env is what every subcommand resolves before doing its work.
type env struct {
	workDir string
	cfg     *config.Config
	shell   shell.Runner
	log     zerolog.Logger
}

// NewRootCmd constructs the stubrelease root Cobra command.
func NewRootCmd() *cobra.Command {
	return NewRootCmdWith(Options{})
}

// NewRootCmdWith is NewRootCmd with injected collaborators.
func NewRootCmdWith(opts Options) *cobra.Command {
	version := os.Getenv("STUBRELEASE_VERSION")
	if version == "" {
		version = Version
	}

	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "stubrelease [version]",
		Short: "Release a Python stub package to PyPI and GitHub",
		Long: `Release a Python stub package to PyPI and GitHub.

With a version argument the project file is bumped to that version first.
Without one, the version already in the project file is released.`,
		Example: `  stubrelease          # release the version in pyproject.toml
  stubrelease 0.0.3    # bump to 0.0.3 and release`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
				return clierr.Wrap(clierr.ExitUsage, "", err)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := resolveEnv(cmd, flags, opts)
			if err != nil {
				return err
			}
			requested := ""
			if len(args) == 1 {
				requested = args[0]
			}
			return runRelease(cmd, e, requested)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return clierr.Wrap(clierr.ExitUsage, "", err)
	})

	// Global flags
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to the tool configuration (default ./"+config.DefaultFile+")")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of stubrelease",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "stubrelease version %s\n", version)
		},
	})
	cmd.AddCommand(newReportCmd(flags, opts))
	cmd.AddCommand(newHistoryCmd(flags, opts))

	return cmd
}

func resolveEnv(cmd *cobra.Command, flags *rootFlags, opts Options) (*env, error) {
	wd := opts.WorkDir
	if wd == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, clierr.Wrap(clierr.ExitGeneral, "resolving working directory", err)
		}
		// Releases may be started from anywhere inside the project.
		if wd, err = projectroot.Find(cwd); err != nil {
			wd = cwd
		}
	}

	path, required := filepath.Join(wd, config.DefaultFile), false
	if flags.configPath != "" {
		path, required = inDir(wd, flags.configPath), true
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return nil, clierr.Wrap(clierr.ExitConfig, "", err)
	}

	sh := opts.Shell
	if sh == nil {
		sh = shell.New()
	}

	log := logging.New(cmd.ErrOrStderr(), flags.verbose)
	log.Debug().Str("workdir", wd).Str("config", path).Msg("environment resolved")

	return &env{workDir: wd, cfg: cfg, shell: sh, log: log}, nil
}

func (e *env) stateDir() string {
	return inDir(e.workDir, e.cfg.StateDir)
}

func (e *env) historyPath() (string, error) {
	p, err := config.ExpandHome(e.cfg.HistoryDB)
	if err != nil {
		return "", err
	}
	return inDir(e.workDir, p), nil
}

func inDir(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
