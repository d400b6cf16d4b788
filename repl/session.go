// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-repl/commands"
	"github.com/jeranaias/rigrun-repl/internal/term"
)

// =============================================================================
// SESSION LOOP
// =============================================================================

// Run freezes the command tree and reads, dispatches and prints one line at
// a time until the input ends, the user quits, or a hook aborts.
//
// Run returns nil on a normal end of session. Setup errors from the
// builder, *HookError aborts and input failures are returned.
func (r *Repl[C]) Run() error {
	if r.setupErr != nil {
		return r.setupErr
	}
	r.tree.Freeze()

	logger := r.logger.With(zap.String("session", uuid.NewString()))
	input := r.input
	if input == nil {
		input = r.defaultInput(logger)
	}
	defer func() {
		if err := input.Close(); err != nil {
			logger.Warn("could not close input", zap.Error(err))
		}
	}()

	logger.Info("session started", zap.String("name", r.info.Name), zap.Int("commands", len(r.tree.Roots())))
	prompt := r.renderPrompt()

	turns := 0
	for {
		line, err := input.ReadLine(prompt)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, ErrInterrupted) {
				logger.Info("session ended", zap.Int("turns", turns), zap.String("reason", endReason(err)))
				return nil
			}
			logger.Error("input failed", zap.Error(err))
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		turns++

		done, err := r.turn(line, logger)
		if err != nil {
			logger.Error("session aborted", zap.Int("turns", turns), zap.Error(err))
			return err
		}
		if done {
			logger.Info("session ended", zap.Int("turns", turns), zap.String("reason", "quit"))
			return nil
		}
	}
}

// turn runs one line. It reports whether the session should end and
// returns only fatal errors; per-turn errors are printed.
func (r *Repl[C]) turn(line string, logger *zap.Logger) (bool, error) {
	tokens := commands.Split(line)
	if len(tokens) == 0 {
		return false, nil
	}

	switch tokens[0] {
	case quitDirective, exitDirective:
		return true, nil
	case commands.HelpCommand:
		text, err := r.tree.Help(r.info, tokens[1:])
		if err != nil {
			r.printError(err)
			return false, nil
		}
		r.print(text)
		return false, nil
	}

	matches, err := r.tree.Parse(tokens)
	if err != nil {
		logger.Debug("syntax error", zap.String("line", line), zap.Error(err))
		r.printError(err)
		var syntaxErr *commands.SyntaxError
		if _, known := r.tree.Lookup(tokens[0]); !known && errors.As(err, &syntaxErr) {
			text, _ := r.tree.Help(r.info, nil)
			r.print(text)
		}
		return false, nil
	}

	if leaf := matches.Leaf(); leaf.HelpRequested() {
		text, _ := r.tree.Help(r.info, leaf.Command().Path())
		r.print(text)
		return false, nil
	}

	name := matches.Name()
	callback, ok := r.callbacks[name]
	if !ok {
		err := &DispatchError{Command: name}
		logger.Warn("dispatch failed", zap.String("command", name), zap.Error(err))
		r.printError(err)
		return false, nil
	}

	logger.Debug("dispatching command", zap.String("command", matches.Leaf().Command().FullName()))
	return false, r.dispatch(name, callback, matches, logger)
}

// dispatch runs the before hook, the callback and the after hook in order.
// Only hook errors are returned.
func (r *Repl[C]) dispatch(name string, callback Callback[C], matches *commands.Matches, logger *zap.Logger) error {
	if r.before != nil {
		out, err := r.before(&r.context)
		if err != nil {
			return &HookError{Stage: "before", Err: err}
		}
		r.print(out)
	}

	out, err := callback(matches, &r.context)
	if err != nil {
		err = &CallbackError{Command: name, Err: err}
		logger.Info("command failed", zap.String("command", name), zap.Error(err))
		r.printError(err)
	} else {
		r.print(out)
	}

	if r.after != nil {
		out, err := r.after(&r.context)
		if err != nil {
			return &HookError{Stage: "after", Err: err}
		}
		r.print(out)
	}
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// print writes text to stdout followed by a newline. Empty text prints
// nothing.
func (r *Repl[C]) print(text string) {
	if text == "" {
		return
	}
	fmt.Fprintln(r.stdout, strings.TrimSuffix(text, "\n"))
}

func (r *Repl[C]) printError(err error) {
	if r.onError != nil {
		r.onError(r.stderr, err)
		return
	}
	fmt.Fprintf(r.stderr, "%s %s\n", r.currentTheme().ErrorLabel.Render("[Error]"), message(err))
}

func (r *Repl[C]) defaultInput(logger *zap.Logger) LineReader {
	if term.IsStdinTTY() {
		return NewLinerReader(r.Complete, r.historyFile, logger)
	}
	return NewScriptReader(stdin)
}

func endReason(err error) string {
	if errors.Is(err, ErrInterrupted) {
		return "interrupted"
	}
	return "end of input"
}
