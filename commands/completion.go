// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// SUGGESTION
// =============================================================================

// Span is a byte range [Start, End) of the input line.
type Span struct {
	Start int
	End   int
}

// Suggestion is one completion candidate. Replacing the Span of the line
// with Value yields the completed text.
type Suggestion struct {
	// Value to insert
	Value string

	// Description shown alongside, may be empty
	Description string

	// Span of the line being replaced
	Span Span

	// AppendWhitespace asks the editor to add a space after Value
	AppendWhitespace bool
}

// helpDescription describes the help pseudo-command in completion lists.
const helpDescription = "show help"

// =============================================================================
// RESOLVER
// =============================================================================

// Resolver proposes completions for a partial line. It only reads the
// tree: it never sees callbacks or application state, so it is safe to
// call from inside the line editor while a prompt is being edited.
type Resolver struct {
	tree *Tree
}

// NewResolver creates a resolver over tree.
func NewResolver(tree *Tree) *Resolver {
	return &Resolver{tree: tree}
}

// Complete returns the suggestions for line with the cursor at byte offset
// pos. Text after the cursor is ignored. The result keeps discovery order
// and never contains two suggestions with the same value and span.
func (r *Resolver) Complete(line string, pos int) []Suggestion {
	if r == nil || r.tree == nil {
		return nil
	}

	pos = clampCursor(line, pos)
	prefix := line[:pos]

	var completions []Suggestion
	if strings.IndexFunc(prefix, unicode.IsSpace) < 0 {
		// Still typing the command name
		completions = r.commandsStartingWith(prefix, Span{Start: 0, End: pos})
	} else {
		words := splitWords(prefix)

		// Find the deepest command named on the line. A word that does not
		// resolve leaves the previous match in place.
		var deepest Node
		for _, word := range words {
			if deepest.Valid() {
				if sub, ok := deepest.FindSubcommand(word); ok {
					deepest = sub
				}
				continue
			}
			if cmd, ok := r.tree.Lookup(word); ok {
				deepest = cmd
			}
		}

		if !deepest.Valid() {
			return nil
		}

		search := words[len(words)-1]
		span := Span{Start: pos - len(search), End: pos}
		completions = r.parameterValuesStartingWith(deepest, search, span)
	}

	return dedupSuggestions(completions)
}

// =============================================================================
// COMMAND COMPLETION
// =============================================================================

// commandsStartingWith matches top-level command names, then "help".
func (r *Resolver) commandsStartingWith(search string, span Span) []Suggestion {
	var completions []Suggestion
	for _, cmd := range r.tree.Roots() {
		if strings.HasPrefix(cmd.Name(), search) {
			completions = append(completions, buildSuggestion(cmd.Name(), cmd.About(), span))
		}
	}
	if strings.HasPrefix(HelpCommand, search) {
		completions = append(completions, buildSuggestion(HelpCommand, helpDescription, span))
	}
	return completions
}

// =============================================================================
// ARGUMENT COMPLETION
// =============================================================================

// parameterValuesStartingWith matches, for every non-global argument in
// declaration order, its possible values, then its long flag, then its
// short flag; then the sub-command names of cmd.
func (r *Resolver) parameterValuesStartingWith(cmd Node, search string, span Span) []Suggestion {
	var completions []Suggestion

	for _, arg := range cmd.Args() {
		// skips --help
		if arg.Global {
			continue
		}

		for _, value := range arg.PossibleValues {
			if strings.HasPrefix(value.Name, search) {
				completions = append(completions, buildSuggestion(value.Name, value.Help, span))
			}
		}

		if arg.Long != "" {
			if value := "--" + arg.Long; strings.HasPrefix(value, search) {
				completions = append(completions, buildSuggestion(value, arg.Help, span))
			}
		}

		if arg.Short != 0 {
			if value := "-" + string(arg.Short); strings.HasPrefix(value, search) {
				completions = append(completions, buildSuggestion(value, arg.Help, span))
			}
		}
	}

	for _, sub := range cmd.Subcommands() {
		if strings.HasPrefix(sub.Name(), search) {
			completions = append(completions, buildSuggestion(sub.Name(), sub.About(), span))
		}
	}

	return completions
}

// =============================================================================
// HELPERS
// =============================================================================

func buildSuggestion(value, description string, span Span) Suggestion {
	return Suggestion{
		Value:            value,
		Description:      description,
		Span:             span,
		AppendWhitespace: true,
	}
}

// clampCursor keeps pos inside line and on a rune boundary.
func clampCursor(line string, pos int) int {
	if pos < 0 {
		return 0
	}
	if pos >= len(line) {
		return len(line)
	}
	for pos > 0 && !utf8.RuneStart(line[pos]) {
		pos--
	}
	return pos
}

// splitWords splits on every whitespace rune. Consecutive separators and
// a trailing separator produce empty words, so a line ending in a space
// completes an empty search.
func splitWords(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if unicode.IsSpace(r) {
			words = append(words, s[start:i])
			start = i + utf8.RuneLen(r)
		}
	}
	return append(words, s[start:])
}

func dedupSuggestions(in []Suggestion) []Suggestion {
	if len(in) < 2 {
		return in
	}
	type key struct {
		value string
		span  Span
	}
	seen := make(map[key]bool, len(in))
	out := in[:0]
	for _, s := range in {
		k := key{value: s.Value, span: s.Span}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
