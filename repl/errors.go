// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"errors"
	"fmt"
)

// ErrInterrupted is returned by a LineReader when the user aborts the
// prompt (Ctrl+C). The session ends cleanly.
var ErrInterrupted = errors.New("prompt interrupted")

// =============================================================================
// PER-TURN ERRORS
// =============================================================================

// DispatchError reports a command that parses but has no callback bound.
// This is a configuration bug in the embedding application.
type DispatchError struct {
	Command string
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("no callback bound for command '%s'", e.Command)
}

// CallbackError wraps an error returned by a command callback.
type CallbackError struct {
	Command string
	Err     error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CallbackError) Unwrap() error {
	return e.Err
}

// =============================================================================
// FATAL ERRORS
// =============================================================================

// HookError wraps an error returned by a before/after command hook.
// It aborts the session and is returned from Run.
type HookError struct {
	Stage string // "before" or "after"
	Err   error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s-command hook aborted the session: %v", e.Stage, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}

// message returns the text shown to the user for a per-turn error.
// Callback errors show the callback's own message.
func message(err error) string {
	var cbErr *CallbackError
	if errors.As(err, &cbErr) && cbErr.Err != nil {
		return cbErr.Err.Error()
	}
	return err.Error()
}
