// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the shell.
//
// Engine settings are read from TOML with sensible defaults, environment
// variable overrides and validation. Command definitions can be loaded
// from a separate YAML or TOML file.
//
// # Key Types
//
//   - Config: shell identity, history, colour and logging settings
//   - CommandFile: declarative command definitions
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (RIGRUN_REPL_*, NO_COLOR)
//   - The file passed to Load, or ~/.rigrun-repl/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cmds, err := config.LoadCommands(cfg.Shell.Commands)
package config
