// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/rigrun-repl/commands"
)

var wantDeploy = []*commands.Command{{
	Name:  "deploy",
	About: "Manage deployments",
	Subcommands: []*commands.Command{{
		Name:  "status",
		About: "Show deployment status",
		Args: []commands.Arg{{
			Name:  "state",
			Long:  "state",
			Short: 's',
			Help:  "Filter by state",
			PossibleValues: []commands.PossibleValue{
				{Name: "ok", Help: "Healthy"},
				{Name: "fail"},
			},
		}},
	}},
}}

func TestLoadCommandsYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "commands.yaml", `
commands:
  - name: deploy
    about: Manage deployments
    subcommands:
      - name: status
        about: Show deployment status
        args:
          - name: state
            long: state
            short: s
            help: Filter by state
            values:
              - {name: ok, help: Healthy}
              - {name: fail}
`)

	got, err := LoadCommands(path)
	require.NoError(t, err)
	if diff := cmp.Diff(wantDeploy, got); diff != "" {
		t.Errorf("LoadCommands mismatch (-want +got):\n%s", diff)
	}

	tree := commands.NewTree()
	for _, cmd := range got {
		require.NoError(t, tree.Register(cmd))
	}
	_, ok := tree.Resolve([]string{"deploy", "status"})
	assert.True(t, ok)
}

func TestLoadCommandsTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "commands.toml", `
[[commands]]
name = "deploy"
about = "Manage deployments"

[[commands.subcommands]]
name = "status"
about = "Show deployment status"

[[commands.subcommands.args]]
name = "state"
long = "state"
short = "s"
help = "Filter by state"
values = [{ name = "ok", help = "Healthy" }, { name = "fail" }]
`)

	got, err := LoadCommands(path)
	require.NoError(t, err)
	if diff := cmp.Diff(wantDeploy, got); diff != "" {
		t.Errorf("LoadCommands mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCommandsErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"unsupported extension", "commands.json", `{}`, "unsupported command file type"},
		{"unknown yaml field", "bad.yaml", "commands:\n  - name: x\n    abuot: typo\n", "abuot"},
		{"unknown toml key", "bad.toml", "[[commands]]\nname = \"x\"\nabuot = \"typo\"\n", "abuot"},
		{"long short flag", "short.yaml", "commands:\n  - name: x\n    args:\n      - {name: v, short: vv}\n", "single character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			_, err := LoadCommands(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := LoadCommands(dir + "/missing.yaml")
	assert.Error(t, err)
}

func TestLoadCommandsEmptyFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "")

	got, err := LoadCommands(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}
