// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package term

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		input   string
		want    ColorMode
		wantErr bool
	}{
		{"", ColorAuto, false},
		{"auto", ColorAuto, false},
		{"ALWAYS", ColorAlways, false},
		{" never ", ColorNever, false},
		{"sometimes", "", true},
	}

	for _, tc := range tests {
		got, err := ParseColorMode(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "ParseColorMode(%q)", tc.input)
			continue
		}
		require.NoError(t, err, "ParseColorMode(%q)", tc.input)
		assert.Equal(t, tc.want, got)
	}
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer

	assert.True(t, ColorEnabled(&buf, ColorAlways))
	assert.False(t, ColorEnabled(&buf, ColorNever))
	assert.False(t, ColorEnabled(&buf, ColorAuto), "a buffer is not a terminal")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(&buf, ColorAuto))
	assert.True(t, ColorEnabled(&buf, ColorAlways), "always overrides NO_COLOR")
}

func TestRendererPlainForBuffers(t *testing.T) {
	var buf bytes.Buffer
	r := Renderer(&buf, ColorAuto)

	got := r.NewStyle().Bold(true).Render("[Error]")
	assert.Equal(t, "[Error]", got)
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(&bytes.Buffer{}))
	assert.False(t, IsTerminal(nil))
}
