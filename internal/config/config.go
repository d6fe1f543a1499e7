// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads the optional .stubrelease.yaml tool configuration.
// A missing file is not an error: every field has a default matching a
// uv-built package published to PyPI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bartekus/stubrelease/internal/pypirc"
	"github.com/bartekus/stubrelease/internal/pyproject"
)

// DefaultFile is looked up in the working directory when --config is not set.
const DefaultFile = ".stubrelease.yaml"

// IndexConfig describes the package index the release publishes to.
type IndexConfig struct {
	Name           string `yaml:"name"`
	URL            string `yaml:"url"`
	CredentialFile string `yaml:"credential_file"`
	Section        string `yaml:"section"`
	TokenPrefix    string `yaml:"token_prefix"`
}

// Config models .stubrelease.yaml.
type Config struct {
	// Package overrides the distribution name read from the project file.
	Package     string      `yaml:"package"`
	ProjectFile string      `yaml:"project_file"`
	Remote      string      `yaml:"remote"`
	Build       []string    `yaml:"build"`
	Publish     []string    `yaml:"publish"`
	Index       IndexConfig `yaml:"index"`
	StateDir    string      `yaml:"state_dir"`
	HistoryDB   string      `yaml:"history_db"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ProjectFile: pyproject.DefaultPath,
		Remote:      "origin",
		Build:       []string{"uv", "build"},
		Publish:     []string{"uv", "publish", "--username", pypirc.TokenUsername},
		Index: IndexConfig{
			Name:           "PyPI",
			URL:            "https://pypi.org",
			CredentialFile: "~/" + pypirc.DefaultFile,
			Section:        pypirc.DefaultSection,
			TokenPrefix:    pypirc.DefaultPrefix,
		},
		StateDir:  filepath.Join(".stubrelease", "run"),
		HistoryDB: "~/.stubrelease/history.db",
	}
}

// Load reads path over the defaults. When required is false a missing file
// yields the defaults.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // G304: config path is chosen by the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every field the pipeline relies on is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProjectFile) == "" {
		return errors.New("project_file must not be empty")
	}
	if strings.TrimSpace(c.Remote) == "" {
		return errors.New("remote must not be empty")
	}
	if len(c.Build) == 0 || strings.TrimSpace(c.Build[0]) == "" {
		return errors.New("build must name a command")
	}
	if len(c.Publish) == 0 || strings.TrimSpace(c.Publish[0]) == "" {
		return errors.New("publish must name a command")
	}
	if strings.TrimSpace(c.Index.CredentialFile) == "" {
		return errors.New("index.credential_file must not be empty")
	}
	if strings.TrimSpace(c.Index.Section) == "" {
		return errors.New("index.section must not be empty")
	}
	if strings.TrimSpace(c.StateDir) == "" {
		return errors.New("state_dir must not be empty")
	}
	return nil
}

// ProjectURL is the index page of pkg.
func (c *Config) ProjectURL(pkg string) string {
	return strings.TrimRight(c.Index.URL, "/") + "/project/" + pkg + "/"
}

// ExpandHome resolves a leading "~/" against the user's home directory.
func ExpandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return filepath.Clean(p), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	if p == "~" {
		return home, nil
	}
	return filepath.Join(home, p[2:]), nil
}
