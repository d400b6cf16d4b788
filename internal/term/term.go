// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package term provides terminal detection for the shell.
//
// It decides whether input comes from an interactive terminal (line
// editing) or a script, and whether output may carry colour:
//   - Interactive terminals (line editing, colours)
//   - Piped input or output (no editing, no colours)
//   - NO_COLOR set in the environment (no colours)
package term

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTerminal reports whether v is an *os.File attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// IsStdinTTY returns true if stdin is a terminal.
// Use this to decide between line editing and scripted input.
func IsStdinTTY() bool {
	return IsTerminal(os.Stdin)
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// ColorMode selects when styled output is used.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode accepts auto, always or never (case-insensitive).
// An empty string means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ColorAuto, nil
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// ColorEnabled reports whether output written to w should be coloured.
// In auto mode NO_COLOR disables colour and so does a non-terminal w.
// See https://no-color.org/ for the NO_COLOR specification.
func ColorEnabled(w io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if termenv.EnvNoColor() {
		return false
	}
	return IsTerminal(w)
}

// Renderer returns a lipgloss renderer for w honouring mode.
func Renderer(w io.Writer, mode ColorMode) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch {
	case !ColorEnabled(w, mode):
		r.SetColorProfile(termenv.Ascii)
	case mode == ColorAlways && !IsTerminal(w):
		r.SetColorProfile(termenv.ANSI256)
	}
	return r
}
