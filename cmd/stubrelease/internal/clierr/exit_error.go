// SPDX-License-Identifier: AGPL-3.0-or-later

package clierr

import (
	"errors"
	"fmt"
)

// Process exit codes used by stubrelease.
const (
	ExitGeneral = 1
	ExitUsage   = 2
	ExitConfig  = 3
	ExitCommand = 4
)

type ExitCoder interface {
	error
	ExitCode() int
}

// ExitError is an error that carries an explicit process exit code.
// It supports wrapping via Unwrap so errors.Is/As work as expected.
type ExitError struct {
	code     int
	msg      string
	cause    error
	reported bool
}

func (e *ExitError) Error() string {
	// Stable and user-facing; the code is not part of the message.
	if e.cause == nil {
		return e.msg
	}
	if e.msg == "" {
		return e.cause.Error()
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

func (e *ExitError) ExitCode() int { return e.code }

// Unwrap enables errors.Is/As to traverse the underlying cause.
func (e *ExitError) Unwrap() error { return e.cause }

// New creates an ExitError with a message.
func New(code int, msg string) error {
	return &ExitError{code: normalize(code), msg: msg}
}

// Wrap creates an ExitError that wraps an underlying cause.
// An empty msg makes the error print as the cause alone.
func Wrap(code int, msg string, cause error) error {
	if cause == nil {
		return New(code, msg)
	}
	return &ExitError{code: normalize(code), msg: msg, cause: cause}
}

// Newf is a formatted variant.
func Newf(code int, format string, args ...any) error {
	return &ExitError{code: normalize(code), msg: fmt.Sprintf(format, args...)}
}

// Reported wraps a cause the user has already been shown. main exits with
// code without printing it again.
func Reported(code int, cause error) error {
	return &ExitError{code: normalize(code), cause: cause, reported: true}
}

// IsReported reports whether err was built by Reported.
func IsReported(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.reported
}

// ExitCodeOf extracts an exit code from any error, defaulting to 1.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitGeneral
}

func normalize(code int) int {
	// Exit code 0 means success; errors should never be 0.
	if code <= 0 {
		return ExitGeneral
	}
	return code
}
