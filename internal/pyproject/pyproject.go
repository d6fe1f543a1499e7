// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pyproject reads and rewrites the version of a Python project file.
//
// The version is looked up in [project], then [tool.poetry], then at the top
// level. Reading goes through a TOML decoder; rewriting edits only the matching
// line so comments and formatting elsewhere in the file survive.
package pyproject

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/bartekus/stubrelease/internal/atomicfile"
)

// DefaultPath is the project file looked up in the working directory.
const DefaultPath = "pyproject.toml"

// ErrVersionMissing is returned when no table carries a string version field.
var ErrVersionMissing = errors.New("version field not found")

// ErrRewriteMismatch is returned when the edited line is not the field the
// TOML decoder reads. The file is left untouched.
var ErrRewriteMismatch = errors.New("rewritten file does not carry the new version")

// tables lists where the version may live, in lookup order. "" is the top level.
var tables = []string{"project", "tool.poetry", ""}

// File is the subset of a project file the release needs.
type File struct {
	Path    string
	Name    string
	Version string
}

// Load parses path and extracts the package name and version.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: project file path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return parse(path, data)
}

func parse(path string, data []byte) (*File, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	f := &File{Path: path}
	for _, table := range tables {
		fields := lookupTable(doc, table)
		if fields == nil {
			continue
		}
		if f.Version == "" {
			if v, ok := fields["version"].(string); ok {
				f.Version = v
			}
		}
		if f.Name == "" {
			if n, ok := fields["name"].(string); ok {
				f.Name = n
			}
		}
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrVersionMissing)
	}
	return f, nil
}

func lookupTable(doc map[string]any, dotted string) map[string]any {
	if dotted == "" {
		return doc
	}
	cur := doc
	for _, part := range strings.Split(dotted, ".") {
		next, ok := cur[part].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

var (
	tableHeader = regexp.MustCompile(`^\s*\[\s*([^\[\]]+?)\s*\]\s*(#.*)?$`)
	arrayHeader = regexp.MustCompile(`^\s*\[\[`)
	versionLine = regexp.MustCompile(`^(\s*version\s*=\s*)(["'])([^"']*)(["'])(.*)$`)
)

// SetVersion rewrites the version field of path to version and returns the
// previous value. The file is left untouched when the field is absent, and is
// not rewritten when it already holds version.
func SetVersion(path, version string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: project file path comes from configuration
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	lines := strings.SplitAfter(string(data), "\n")
	idx := locateVersion(lines)
	if idx < 0 {
		return "", fmt.Errorf("%s: %w", path, ErrVersionMissing)
	}

	line := lines[idx]
	body := strings.TrimRight(line, "\r\n")
	eol := line[len(body):]
	m := versionLine.FindStringSubmatch(body)
	previous := m[3]
	if previous == version {
		return previous, nil
	}
	lines[idx] = m[1] + m[2] + version + m[4] + m[5] + eol
	updated := []byte(strings.Join(lines, ""))

	// The line scan is only trusted when the decoder agrees with it.
	if f, err := parse(path, updated); err != nil || f.Version != version {
		return "", fmt.Errorf("%s: %w", path, ErrRewriteMismatch)
	}

	if err := atomicfile.Write(path, updated, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return previous, nil
}

// locateVersion returns the index of the line holding the version field, using
// the same table precedence as Load, or -1.
func locateVersion(lines []string) int {
	found := map[string]int{}
	section := ""
	open := "" // delimiter of the multi-line string being skipped
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")
		if open != "" {
			if strings.Count(line, open)%2 == 1 {
				open = ""
			}
			continue
		}
		if d := multilineOpener(line); d != "" {
			open = d
			continue
		}
		if arrayHeader.MatchString(line) {
			section = "[[array]]"
			continue
		}
		if m := tableHeader.FindStringSubmatch(line); m != nil {
			section = m[1]
			continue
		}
		m := versionLine.FindStringSubmatch(line)
		if m == nil || m[2] != m[4] {
			continue
		}
		if _, seen := found[section]; !seen {
			found[section] = i
		}
	}
	for _, table := range tables {
		if i, ok := found[table]; ok {
			return i
		}
	}
	return -1
}

// multilineOpener returns the delimiter of a multi-line string that starts on
// line and is still open at its end, or "".
func multilineOpener(line string) string {
	dq := strings.Index(line, `"""`)
	sq := strings.Index(line, `'''`)
	var delim string
	switch {
	case dq >= 0 && (sq < 0 || dq < sq):
		delim = `"""`
	case sq >= 0:
		delim = `'''`
	default:
		return ""
	}
	if strings.Count(line, delim)%2 == 1 {
		return delim
	}
	return ""
}
