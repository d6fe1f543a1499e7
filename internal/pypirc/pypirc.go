// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pypirc loads package-index upload credentials from a .pypirc file.
package pypirc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	// DefaultFile is the credential file name inside the user's home directory.
	DefaultFile = ".pypirc"

	// DefaultSection is the index section holding the upload token.
	DefaultSection = "pypi"

	// DefaultPrefix is the literal every PyPI API token starts with.
	DefaultPrefix = "pypi-"

	// TokenUsername is the username the index expects alongside an API token.
	TokenUsername = "__token__"
)

// Sentinel causes, each wrapped in a *FormatError.
var (
	ErrNotFound       = errors.New("credential file not found")
	ErrInvalid        = errors.New("credential file could not be parsed")
	ErrMissingSection = errors.New("section not found")
	ErrMissingKey     = errors.New("password option not found")
	ErrEmptyToken     = errors.New("token is empty")
	ErrBadPrefix      = errors.New("token has the wrong prefix")
)

// Credential is an index upload credential. String never reveals the token.
type Credential struct {
	Username string
	Token    string
}

func (c Credential) String() string {
	return fmt.Sprintf("%s:***", c.Username)
}

// Options selects where and how the token is read.
type Options struct {
	Path    string
	Section string
	Prefix  string
}

// DefaultPath returns ~/.pypirc.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, DefaultFile), nil
}

// ExpectedFormat renders the file layout users are asked to create.
func ExpectedFormat(section, prefix string) string {
	return fmt.Sprintf("[%s]\nusername = %s\npassword = %sAgEIcHlwaS5vcmc...", section, TokenUsername, prefix)
}

// FormatError explains why a credential file was rejected. Its message always
// ends with the expected file layout so the user can fix the file directly.
type FormatError struct {
	Path    string
	Section string
	Prefix  string
	Detail  string
	Err     error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s\n\nExpected format of %s:\n%s", e.Detail, e.Path, ExpectedFormat(e.Section, e.Prefix))
}

func (e *FormatError) Unwrap() error { return e.Err }

// Load reads the token from opts.Path. Every rejection is a *FormatError.
func Load(opts Options) (Credential, error) {
	if opts.Section == "" {
		opts.Section = DefaultSection
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	fail := func(cause error, format string, args ...any) (Credential, error) {
		return Credential{}, &FormatError{
			Path:    opts.Path,
			Section: opts.Section,
			Prefix:  opts.Prefix,
			Detail:  fmt.Sprintf(format, args...),
			Err:     cause,
		}
	}

	if _, err := os.Stat(opts.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fail(ErrNotFound, "%s not found. Please create it with your PyPI token.", opts.Path)
		}
		return fail(err, "cannot access %s: %v", opts.Path, err)
	}

	// Option names are case-insensitive in .pypirc, section names are not.
	cfg, err := ini.LoadSources(ini.LoadOptions{
		InsensitiveKeys:         true,
		IgnoreInlineComment:     true,
		SkipUnrecognizableLines: false,
	}, opts.Path)
	if err != nil {
		return fail(fmt.Errorf("%w: %v", ErrInvalid, err), "failed to parse %s: %v", opts.Path, err)
	}

	if !cfg.HasSection(opts.Section) {
		return fail(ErrMissingSection, "no [%s] section found in %s", opts.Section, opts.Path)
	}
	sec := cfg.Section(opts.Section)
	if !sec.HasKey("password") {
		return fail(ErrMissingKey, "no 'password' option found in [%s] section of %s", opts.Section, opts.Path)
	}

	token := strings.TrimSpace(sec.Key("password").String())
	if token == "" {
		return fail(ErrEmptyToken, "token is empty in [%s] section of %s", opts.Section, opts.Path)
	}
	if !strings.HasPrefix(token, opts.Prefix) {
		return fail(ErrBadPrefix, "token should start with '%s'. Check %s", opts.Prefix, opts.Path)
	}

	username := strings.TrimSpace(sec.Key("username").String())
	if username == "" {
		username = TokenUsername
	}
	return Credential{Username: username, Token: token}, nil
}
