// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

// =============================================================================
// CONFIGURATION ERROR
// =============================================================================

// ConfigurationError reports an invalid command definition. It is only
// produced while the tree is being built.
type ConfigurationError struct {
	Command string // Command path (e.g., "deploy status")
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Command == "" {
		return "invalid command configuration: " + e.Reason
	}
	return "invalid command configuration for '" + e.Command + "': " + e.Reason
}

// =============================================================================
// SYNTAX ERROR
// =============================================================================

// SyntaxError reports a line that does not match the command grammar.
type SyntaxError struct {
	Command    string // Command path the error occurred in
	Arg        string // Argument or flag involved, if any
	Message    string
	Got        string
	Expected   string
	Suggestion string // Closest known name for a mistyped command or flag
}

func (e *SyntaxError) Error() string {
	msg := e.Message
	if e.Command != "" {
		msg = e.Command + ": " + msg
	}
	if e.Arg != "" {
		msg += " for argument '" + e.Arg + "'"
	}
	if e.Got != "" {
		msg += " (got: " + e.Got + ")"
	}
	if e.Expected != "" {
		msg += " - expected: " + e.Expected
	}
	if e.Suggestion != "" {
		msg += " (did you mean '" + e.Suggestion + "'?)"
	}
	return msg
}
