// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling of the shell.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// COLORS
// =============================================================================

// Cyan - Brand color, prompt
var Cyan = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}

// Purple - Help headings
var Purple = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Rose - Errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// TextSecondary - Descriptions, less prominent text
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// =============================================================================
// THEME
// =============================================================================

// Theme holds the styles used by the session loop.
type Theme struct {
	// Prompt renders the input prompt
	Prompt lipgloss.Style

	// ErrorLabel renders the "[Error]" prefix of error lines
	ErrorLabel lipgloss.Style

	// WarningLabel renders the "[Warning]" prefix
	WarningLabel lipgloss.Style
}

// NewTheme builds the theme for a renderer. A renderer with the Ascii
// profile yields plain text.
func NewTheme(r *lipgloss.Renderer) Theme {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	return Theme{
		Prompt: r.NewStyle().
			Foreground(Cyan).
			Bold(true),
		ErrorLabel: r.NewStyle().
			Foreground(Rose).
			Bold(true),
		WarningLabel: r.NewStyle().
			Foreground(Amber),
	}
}
