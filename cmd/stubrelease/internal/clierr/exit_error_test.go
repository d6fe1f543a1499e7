// SPDX-License-Identifier: AGPL-3.0-or-later

package clierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf(t *testing.T) {
	cause := errors.New("boom")

	assert.Equal(t, 0, ExitCodeOf(nil))
	assert.Equal(t, ExitGeneral, ExitCodeOf(cause))
	assert.Equal(t, ExitUsage, ExitCodeOf(New(ExitUsage, "bad version")))
	assert.Equal(t, ExitCommand, ExitCodeOf(fmt.Errorf("outer: %w", Wrap(ExitCommand, "push", cause))))
	assert.Equal(t, ExitGeneral, ExitCodeOf(New(0, "zero is not an error code")))
}

func TestWrap_Message(t *testing.T) {
	cause := errors.New("exit status 1")

	assert.Equal(t, "git push failed: exit status 1", Wrap(ExitCommand, "git push failed", cause).Error())
	assert.Equal(t, "exit status 1", Wrap(ExitCommand, "", cause).Error())
	assert.Equal(t, "only message", Wrap(ExitCommand, "only message", nil).Error())
	assert.ErrorIs(t, Wrap(ExitCommand, "x", cause), cause)
}

func TestReported(t *testing.T) {
	cause := errors.New("step package:build failed")
	err := fmt.Errorf("release: %w", Reported(ExitCommand, cause))

	assert.True(t, IsReported(err))
	assert.Equal(t, ExitCommand, ExitCodeOf(err))
	assert.ErrorIs(t, err, cause)
	assert.False(t, IsReported(Wrap(ExitCommand, "", cause)))
	assert.False(t, IsReported(cause))
}
