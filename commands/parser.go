// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/spf13/pflag"
)

// =============================================================================
// TOKENIZER
// =============================================================================

// Split splits a command line into tokens, respecting quotes.
// Supports both single and double quotes for arguments with spaces;
// a backslash escapes a quote or backslash inside quotes.
func Split(input string) []string {
	var tokens []string
	var current strings.Builder
	var inSingleQuote, inDoubleQuote, quoted bool

	runes := []rune(input)
	for i := 0; i < len(runes); i++ {
		char := runes[i]

		switch {
		case char == '\'' && !inDoubleQuote:
			inSingleQuote = !inSingleQuote
			quoted = true

		case char == '"' && !inSingleQuote:
			inDoubleQuote = !inDoubleQuote
			quoted = true

		case char == '\\' && i+1 < len(runes) && (inDoubleQuote || inSingleQuote):
			next := runes[i+1]
			if next == '"' || next == '\'' || next == '\\' {
				current.WriteRune(next)
				i++
			} else {
				current.WriteRune(char)
			}

		case unicode.IsSpace(char) && !inSingleQuote && !inDoubleQuote:
			if current.Len() > 0 || quoted {
				tokens = append(tokens, current.String())
				current.Reset()
				quoted = false
			}

		default:
			current.WriteRune(char)
		}
	}

	if current.Len() > 0 || quoted {
		tokens = append(tokens, current.String())
	}

	return tokens
}

// =============================================================================
// MATCHES
// =============================================================================

// Matches holds the parsed arguments of one command level. The sub-command
// chosen on the line, if any, is available through Subcommand.
type Matches struct {
	node     Node
	values   map[string][]string
	explicit map[string]bool
	help     bool
	sub      *Matches
}

func newMatches(n Node) *Matches {
	return &Matches{
		node:     n,
		values:   make(map[string][]string),
		explicit: make(map[string]bool),
	}
}

// Command returns the command these matches belong to.
func (m *Matches) Command() Node {
	return m.node
}

// Name returns the command name.
func (m *Matches) Name() string {
	return m.node.Name()
}

// Get returns the first value of an argument, including defaults.
func (m *Matches) Get(name string) (string, bool) {
	vals, ok := m.values[name]
	if !ok || len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Value returns the first value of an argument or "".
func (m *Matches) Value(name string) string {
	v, _ := m.Get(name)
	return v
}

// All returns every value of an argument.
func (m *Matches) All(name string) []string {
	return m.values[name]
}

// Bool reports whether a switch was given.
func (m *Matches) Bool(name string) bool {
	return m.Value(name) == "true"
}

// Int parses the first value of an argument as an integer.
func (m *Matches) Int(name string) (int, error) {
	v, ok := m.Get(name)
	if !ok {
		return 0, &SyntaxError{Command: m.node.FullName(), Arg: name, Message: "argument not present"}
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &SyntaxError{Command: m.node.FullName(), Arg: name, Message: "not an integer", Got: v}
	}
	return n, nil
}

// Has reports whether the argument was given on the line (defaults excluded).
func (m *Matches) Has(name string) bool {
	return m.explicit[name]
}

// Subcommand returns the sub-command name and its matches, or "" and nil.
func (m *Matches) Subcommand() (string, *Matches) {
	if m.sub == nil {
		return "", nil
	}
	return m.sub.Name(), m.sub
}

// Leaf returns the deepest sub-command matches.
func (m *Matches) Leaf() *Matches {
	cur := m
	for cur.sub != nil {
		cur = cur.sub
	}
	return cur
}

// HelpRequested reports whether -h/--help appeared at this level.
func (m *Matches) HelpRequested() bool {
	return m.help
}

func (m *Matches) set(name string, values []string) {
	m.values[name] = values
	m.explicit[name] = true
}

// =============================================================================
// PARSER
// =============================================================================

// ParseLine tokenizes line and parses it against the tree.
func (t *Tree) ParseLine(line string) (*Matches, error) {
	return t.Parse(Split(line))
}

// Parse resolves tokens[0] as a top-level command and parses the rest
// against its grammar, descending into sub-commands as they appear.
func (t *Tree) Parse(tokens []string) (*Matches, error) {
	if len(tokens) == 0 {
		return nil, &SyntaxError{Message: "no command given"}
	}
	root, ok := t.Lookup(tokens[0])
	if !ok {
		names := make([]string, 0, len(t.roots)+1)
		for _, n := range t.Roots() {
			names = append(names, n.Name())
		}
		names = append(names, HelpCommand)
		return nil, &SyntaxError{
			Message:    "unrecognized command",
			Got:        tokens[0],
			Suggestion: closest(tokens[0], names),
		}
	}
	return parseNode(root, tokens[1:])
}

func parseNode(n Node, args []string) (*Matches, error) {
	head, tail, sub := splitAtSubcommand(n, args)
	m := newMatches(n)

	if err := checkHiddenLongs(n, head); err != nil {
		return nil, err
	}
	flagSet, flagNames := buildFlagSet(n)
	if err := flagSet.Parse(head); err != nil {
		return nil, translateFlagError(n, err)
	}

	if help, _ := flagSet.GetBool(HelpArg.Long); help {
		m.help = true
		return m, nil
	}

	for _, arg := range n.Flags() {
		if arg.Global {
			continue
		}
		if err := collectFlag(n, m, flagSet, flagNames[arg.Name], arg); err != nil {
			return nil, err
		}
	}

	if err := collectPositionals(n, m, flagSet.Args()); err != nil {
		return nil, err
	}

	if sub.Valid() {
		child, err := parseNode(sub, tail)
		if err != nil {
			return nil, err
		}
		m.sub = child
	}
	return m, nil
}

// splitAtSubcommand finds the first positional token naming a child of n.
// Tokens before it belong to n; tokens after it belong to the child.
func splitAtSubcommand(n Node, args []string) (head, tail []string, sub Node) {
	if len(n.Subcommands()) == 0 {
		return args, nil, Node{}
	}
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			break
		}
		if strings.HasPrefix(tok, "-") && tok != "-" {
			if flagConsumesNext(n, tok) {
				i++
			}
			continue
		}
		if child, ok := n.FindSubcommand(tok); ok {
			return args[:i], args[i+1:], child
		}
		break
	}
	return args, nil, Node{}
}

// flagConsumesNext reports whether tok is a value-taking flag whose value
// is the following token.
func flagConsumesNext(n Node, tok string) bool {
	if long, ok := strings.CutPrefix(tok, "--"); ok {
		if strings.Contains(long, "=") {
			return false
		}
		for _, arg := range n.Flags() {
			if arg.Long == long {
				return arg.TakesValue()
			}
		}
		return false
	}

	cluster := []rune(tok[1:])
	for i, r := range cluster {
		for _, arg := range n.Flags() {
			if arg.Short == r && arg.TakesValue() {
				return i == len(cluster)-1
			}
		}
	}
	return false
}

// checkHiddenLongs rejects "--name" for short-only flags. pflag knows them
// under their argument name but help only shows the short form.
func checkHiddenLongs(n Node, args []string) error {
	for i := 0; i < len(args); i++ {
		tok := args[i]
		if tok == "--" {
			return nil
		}
		if !strings.HasPrefix(tok, "-") || tok == "-" {
			continue
		}
		if long, ok := strings.CutPrefix(tok, "--"); ok {
			long, _, _ = strings.Cut(long, "=")
			for _, arg := range n.Flags() {
				if arg.Long == "" && arg.Short != 0 && arg.Name == long {
					return unknownLongFlag(n, long)
				}
			}
		}
		if flagConsumesNext(n, tok) {
			i++
		}
	}
	return nil
}

// buildFlagSet creates a pflag set for the flags of n. The returned map
// gives the pflag name used for each argument.
func buildFlagSet(n Node) (*pflag.FlagSet, map[string]string) {
	flagSet := pflag.NewFlagSet(n.FullName(), pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.SetInterspersed(true)

	names := make(map[string]string)
	for _, arg := range n.Flags() {
		name := arg.Long
		if name == "" {
			name = arg.Name
		}
		short := ""
		if arg.Short != 0 {
			short = string(arg.Short)
		}

		switch {
		case arg.Switch:
			flagSet.BoolP(name, short, false, arg.Help)
		case arg.Multiple:
			flagSet.StringArrayP(name, short, nil, arg.Help)
		default:
			flagSet.StringP(name, short, "", arg.Help)
		}
		if arg.Long == "" {
			if f := flagSet.Lookup(name); f != nil {
				f.Hidden = true
			}
		}
		names[arg.Name] = name
	}
	return flagSet, names
}

func collectFlag(n Node, m *Matches, flagSet *pflag.FlagSet, flagName string, arg Arg) error {
	f := flagSet.Lookup(flagName)
	if f == nil || !f.Changed {
		if arg.Required {
			return &SyntaxError{Command: n.FullName(), Arg: flagDisplay(arg), Message: "required flag missing"}
		}
		if arg.Default != "" {
			m.values[arg.Name] = []string{arg.Default}
		}
		return nil
	}

	var values []string
	switch {
	case arg.Switch:
		on, _ := flagSet.GetBool(flagName)
		if !on {
			return nil
		}
		values = []string{"true"}
	case arg.Multiple:
		values, _ = flagSet.GetStringArray(flagName)
	default:
		v, _ := flagSet.GetString(flagName)
		values = []string{v}
	}

	for _, v := range values {
		if err := checkPossibleValue(n, arg, v); err != nil {
			return err
		}
	}
	m.set(arg.Name, values)
	return nil
}

func collectPositionals(n Node, m *Matches, values []string) error {
	positionals := n.Positionals()
	i := 0
	for _, arg := range positionals {
		if i >= len(values) {
			if arg.Required {
				return &SyntaxError{Command: n.FullName(), Arg: "<" + arg.Name + ">", Message: "required argument missing", Expected: arg.Help}
			}
			if arg.Default != "" {
				m.values[arg.Name] = []string{arg.Default}
			}
			continue
		}

		taken := values[i : i+1]
		if arg.Multiple {
			taken = values[i:]
		}
		for _, v := range taken {
			if err := checkPossibleValue(n, arg, v); err != nil {
				return err
			}
		}
		m.set(arg.Name, append([]string(nil), taken...))
		i += len(taken)
	}

	if i < len(values) {
		extra := values[i]
		msg := "unexpected argument"
		suggestion := ""
		if subs := n.Subcommands(); len(subs) > 0 {
			msg = "unrecognized subcommand"
			names := make([]string, len(subs))
			for j, s := range subs {
				names[j] = s.Name()
			}
			suggestion = closest(extra, names)
		}
		return &SyntaxError{Command: n.FullName(), Message: msg, Got: extra, Suggestion: suggestion}
	}
	return nil
}

func checkPossibleValue(n Node, arg Arg, v string) error {
	if len(arg.PossibleValues) == 0 || arg.HasValue(v) {
		return nil
	}
	display := "<" + arg.Name + ">"
	if !arg.IsPositional() {
		display = flagDisplay(arg)
	}
	return &SyntaxError{
		Command:    n.FullName(),
		Arg:        display,
		Message:    "invalid value",
		Got:        v,
		Expected:   strings.Join(arg.ValueNames(), ", "),
		Suggestion: closest(v, arg.ValueNames()),
	}
}

func flagDisplay(arg Arg) string {
	if arg.Long != "" {
		return "--" + arg.Long
	}
	return "-" + string(arg.Short)
}

// translateFlagError turns a pflag parse error into a SyntaxError,
// suggesting the closest defined long flag for unknown ones.
func translateFlagError(n Node, err error) error {
	msg := err.Error()
	if unknown, ok := strings.CutPrefix(msg, "unknown flag: --"); ok {
		return unknownLongFlag(n, unknown)
	}
	return &SyntaxError{Command: n.FullName(), Message: msg}
}

func unknownLongFlag(n Node, unknown string) *SyntaxError {
	syntaxErr := &SyntaxError{Command: n.FullName(), Message: "unknown flag: --" + unknown}
	var longs []string
	for _, arg := range n.Flags() {
		if arg.Long != "" {
			longs = append(longs, arg.Long)
		}
	}
	if s := closest(unknown, longs); s != "" {
		syntaxErr.Suggestion = "--" + s
	}
	return syntaxErr
}

// =============================================================================
// HELPERS
// =============================================================================

// closest returns the candidate nearest to unknown, or "" if nothing is
// within an edit distance of 3.
func closest(unknown string, candidates []string) string {
	best := ""
	bestDistance := 4
	for _, c := range candidates {
		if d := levenshtein(unknown, c); d < bestDistance {
			bestDistance = d
			best = c
		}
	}
	return best
}

func levenshtein(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	previous := make([]int, len(a)+1)
	for i := range previous {
		previous[i] = i
	}

	for j := 1; j <= len(b); j++ {
		current := make([]int, len(a)+1)
		current[0] = j

		for i := 1; i <= len(a); i++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			current[i] = min(previous[i]+1, current[i-1]+1, previous[i-1]+cost)
		}

		previous = current
	}

	return previous[len(a)]
}
