// SPDX-License-Identifier: AGPL-3.0-or-later

// Package versioning validates release version strings and derives tags from them.
//
// Accepted versions have the shape MAJOR.MINOR.PATCH with an optional
// alphanumeric pre-release suffix ("1.2.3", "0.0.4-rc1"). Dotted pre-releases
// and build metadata are rejected even though full semver allows them, because
// the package index and the tag naming both rely on the narrower form.
package versioning

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

var pattern = regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+(-[a-zA-Z0-9]+)?$`)

// Example is shown to users alongside validation errors.
const Example = "0.0.2"

// InvalidError reports a version string with the wrong shape.
type InvalidError struct {
	Value string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid version format '%s'. Use semantic versioning (e.g., %s)", e.Value, Example)
}

// Validate returns an *InvalidError when v is not MAJOR.MINOR.PATCH[-PRERELEASE].
func Validate(v string) error {
	if !pattern.MatchString(v) {
		return &InvalidError{Value: v}
	}
	return nil
}

// Tag returns the source-control tag for v.
func Tag(v string) string {
	return "v" + v
}

// Compare orders two versions using semver precedence, so "1.0.0-rc1" sorts
// before "1.0.0". It returns -1, 0 or 1.
func Compare(a, b string) (int, error) {
	va, err := semver.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return va.Compare(vb), nil
}
