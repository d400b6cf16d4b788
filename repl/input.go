// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-repl/commands"
)

// LineReader is the line-editing collaborator: it shows the prompt and
// returns one line per call. It returns io.EOF when input is exhausted and
// ErrInterrupted when the user aborts.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// CompleteFunc proposes completions for line with the cursor at byte
// offset pos.
type CompleteFunc func(line string, pos int) []commands.Suggestion

// =============================================================================
// INTERACTIVE INPUT
// =============================================================================

// LinerReader reads from the terminal with line editing, history
// navigation and tab completion.
type LinerReader struct {
	line        *liner.State
	historyFile string
	logger      *zap.Logger
}

// NewLinerReader takes over the terminal. historyFile may be empty to
// disable persistent history.
func NewLinerReader(complete CompleteFunc, historyFile string, logger *zap.Logger) *LinerReader {
	if logger == nil {
		logger = zap.NewNop()
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	if complete != nil {
		line.SetWordCompleter(wordCompleter(complete))
	}

	r := &LinerReader{
		line:        line,
		historyFile: historyFile,
		logger:      logger,
	}
	r.loadHistory()
	return r
}

// ReadLine shows prompt and reads one edited line.
// Non-blank lines are added to history.
func (r *LinerReader) ReadLine(prompt string) (string, error) {
	input, err := r.line.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", ErrInterrupted
		}
		return "", err
	}

	if strings.TrimSpace(input) != "" {
		r.line.AppendHistory(input)
	}
	return input, nil
}

// Close saves history and restores the terminal.
func (r *LinerReader) Close() error {
	r.saveHistory()
	return r.line.Close()
}

func (r *LinerReader) loadHistory() {
	if r.historyFile == "" {
		return
	}
	f, err := os.Open(r.historyFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("could not open history file", zap.String("path", r.historyFile), zap.Error(err))
		}
		return
	}
	defer f.Close()

	if _, err := r.line.ReadHistory(f); err != nil {
		r.logger.Warn("could not read history", zap.String("path", r.historyFile), zap.Error(err))
	}
}

// saveHistory persists history with owner-only permissions.
func (r *LinerReader) saveHistory() {
	if r.historyFile == "" {
		return
	}
	f, err := os.OpenFile(r.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		r.logger.Warn("could not save history", zap.String("path", r.historyFile), zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := r.line.WriteHistory(f); err != nil {
		r.logger.Warn("could not write history", zap.String("path", r.historyFile), zap.Error(err))
	}
}

// wordCompleter adapts a CompleteFunc to liner. liner reports the cursor
// in runes; suggestions use byte offsets.
func wordCompleter(complete CompleteFunc) liner.WordCompleter {
	return func(line string, pos int) (string, []string, string) {
		runes := []rune(line)
		if pos < 0 {
			pos = 0
		}
		if pos > len(runes) {
			pos = len(runes)
		}
		offset := len(string(runes[:pos]))

		suggestions := complete(line, offset)
		if len(suggestions) == 0 {
			return line[:offset], nil, line[offset:]
		}

		start := suggestions[0].Span.Start
		list := make([]string, 0, len(suggestions))
		for _, s := range suggestions {
			if s.Span.Start != start {
				continue
			}
			value := s.Value
			if s.AppendWhitespace {
				value += " "
			}
			list = append(list, value)
		}
		return line[:start], list, line[offset:]
	}
}

// =============================================================================
// SCRIPTED INPUT
// =============================================================================

// ScriptReader reads newline-separated lines from a non-interactive source
// such as a pipe or a file. Prompts are not shown.
type ScriptReader struct {
	scanner *bufio.Scanner
}

// maxScriptLine bounds a single scripted line.
const maxScriptLine = 1 << 20

// NewScriptReader reads lines from r.
func NewScriptReader(r io.Reader) *ScriptReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxScriptLine)
	return &ScriptReader{scanner: scanner}
}

// ReadLine returns the next line without its terminator.
func (s *ScriptReader) ReadLine(string) (string, error) {
	if s.scanner.Scan() {
		return strings.TrimSuffix(s.scanner.Text(), "\r"), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Close is a no-op; the caller owns the underlying reader.
func (s *ScriptReader) Close() error {
	return nil
}
