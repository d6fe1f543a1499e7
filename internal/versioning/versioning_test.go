// SPDX-License-Identifier: AGPL-3.0-or-later

package versioning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := []string{"0.0.1", "1.2.3", "10.20.30", "0.0.4-rc1", "1.0.0-beta", "1.0.0-ALPHA2", "01.2.3"}
	for _, v := range valid {
		t.Run(v, func(t *testing.T) {
			assert.NoError(t, Validate(v))
		})
	}

	invalid := []string{"", "1.0", "v1.0.0", "1.0.0-", "1.0.0-rc.1", "1.0.0+build", "1.0.0 ", " 1.0.0", "1.0.0-rc_1", "a.b.c", "1..0"}
	for _, v := range invalid {
		t.Run("reject "+v, func(t *testing.T) {
			err := Validate(v)
			var invalidErr *InvalidError
			require.ErrorAs(t, err, &invalidErr)
			assert.Equal(t, v, invalidErr.Value)
			assert.Contains(t, err.Error(), "'"+v+"'")
		})
	}
}

func TestTag(t *testing.T) {
	assert.Equal(t, "v0.0.4", Tag("0.0.4"))
	assert.Equal(t, "v1.0.0-rc1", Tag("1.0.0-rc1"))
}

func TestCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"0.0.3", "0.0.4", -1},
		{"0.0.4", "0.0.4", 0},
		{"0.1.0", "0.0.9", 1},
		{"1.0.0-rc1", "1.0.0", -1},
		{"1.0.0", "1.0.0-rc1", 1},
	}
	for _, tt := range tests {
		got, err := Compare(tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s vs %s", tt.a, tt.b)
	}

	_, err := Compare("not-a-version", "1.0.0")
	assert.Error(t, err)
}
