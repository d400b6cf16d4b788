// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"strings"
	"unicode"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command is the declarative definition of a command and its sub-commands.
// It is consumed by Tree.Register and never referenced again afterwards.
type Command struct {
	// Name is the word typed to invoke the command (e.g., "append")
	Name string

	// About is the one-line description shown in help and completion
	About string

	// LongAbout replaces About in the command's own help page
	LongAbout string

	// Args defines positional arguments and flags, in declaration order
	Args []Arg

	// Subcommands are nested commands, in declaration order
	Subcommands []*Command
}

// Arg defines a positional argument or a flag.
// An Arg without Long and Short is positional.
type Arg struct {
	// Name identifies the argument in Matches
	Name string

	// Long is the flag word without dashes (e.g., "state" for --state)
	Long string

	// Short is the single-letter flag without the dash (e.g., 's' for -s)
	Short rune

	// Help explains the argument
	Help string

	// Required arguments must be present on the line
	Required bool

	// Switch flags take no value; they are either present or not
	Switch bool

	// Multiple collects repeated flags, or all trailing positionals
	Multiple bool

	// Default is used when the argument is absent
	Default string

	// PossibleValues restricts the accepted values
	PossibleValues []PossibleValue

	// Global marks engine-injected arguments (help)
	Global bool
}

// PossibleValue is one accepted value of an enumerated argument.
type PossibleValue struct {
	Name string
	Help string
}

// IsPositional reports whether the argument is matched by position.
func (a Arg) IsPositional() bool {
	return a.Long == "" && a.Short == 0
}

// TakesValue reports whether the argument consumes a value.
func (a Arg) TakesValue() bool {
	return a.IsPositional() || !a.Switch
}

// HasValue reports whether name is one of the argument's possible values.
func (a Arg) HasValue(name string) bool {
	for _, v := range a.PossibleValues {
		if v.Name == name {
			return true
		}
	}
	return false
}

// ValueNames returns the possible value names in declaration order.
func (a Arg) ValueNames() []string {
	names := make([]string, 0, len(a.PossibleValues))
	for _, v := range a.PossibleValues {
		names = append(names, v.Name)
	}
	return names
}

// HelpArg is the engine-injected help flag present on every command.
var HelpArg = Arg{
	Name:   "help",
	Long:   "help",
	Short:  'h',
	Help:   "Print help information",
	Switch: true,
	Global: true,
}

// HelpCommand is the reserved pseudo-command that prints help.
const HelpCommand = "help"

// =============================================================================
// TREE
// =============================================================================

// node is one arena slot. Children are indices into Tree.nodes.
type node struct {
	name     string
	about    string
	long     string
	args     []Arg
	parent   int
	children []int
	index    map[string]int
}

// Tree is the immutable command hierarchy. Commands are added with Register
// during setup; after Freeze the tree only serves reads, so it is safe to
// share with the completion resolver without synchronization.
type Tree struct {
	nodes  []node
	roots  []int
	index  map[string]int
	frozen bool
}

// NewTree creates an empty command tree.
func NewTree() *Tree {
	return &Tree{index: make(map[string]int)}
}

// Register validates cmd and adds it as a top-level command.
// On error the tree is left unchanged.
func (t *Tree) Register(cmd *Command) error {
	if t.frozen {
		name := ""
		if cmd != nil {
			name = cmd.Name
		}
		return &ConfigurationError{Command: name, Reason: "command tree is frozen; register commands before the session starts"}
	}
	if cmd == nil {
		return &ConfigurationError{Reason: "nil command"}
	}
	if cmd.Name == HelpCommand {
		return &ConfigurationError{Command: cmd.Name, Reason: "name is reserved"}
	}
	if _, exists := t.index[cmd.Name]; exists {
		return &ConfigurationError{Command: cmd.Name, Reason: "a top-level command with this name is already registered"}
	}
	if err := validateCommand(cmd, cmd.Name); err != nil {
		return err
	}

	id := t.add(cmd, -1)
	t.roots = append(t.roots, id)
	t.index[cmd.Name] = id
	return nil
}

// Freeze forbids further registration.
func (t *Tree) Freeze() {
	t.frozen = true
}

// Frozen reports whether Freeze has been called.
func (t *Tree) Frozen() bool {
	return t.frozen
}

// Len returns the number of top-level commands.
func (t *Tree) Len() int {
	return len(t.roots)
}

// Lookup finds a top-level command by exact name.
func (t *Tree) Lookup(name string) (Node, bool) {
	id, ok := t.index[name]
	if !ok {
		return Node{}, false
	}
	return Node{tree: t, id: id}, true
}

// Roots returns the top-level commands in registration order.
func (t *Tree) Roots() []Node {
	out := make([]Node, len(t.roots))
	for i, id := range t.roots {
		out[i] = Node{tree: t, id: id}
	}
	return out
}

// Resolve walks path from the top level, one exact name per level.
func (t *Tree) Resolve(path []string) (Node, bool) {
	if len(path) == 0 {
		return Node{}, false
	}
	n, ok := t.Lookup(path[0])
	for _, name := range path[1:] {
		if !ok {
			break
		}
		n, ok = n.FindSubcommand(name)
	}
	return n, ok
}

func (t *Tree) add(cmd *Command, parent int) int {
	args := make([]Arg, 0, len(cmd.Args)+1)
	args = append(args, cmd.Args...)
	args = append(args, HelpArg)

	id := len(t.nodes)
	t.nodes = append(t.nodes, node{
		name:   cmd.Name,
		about:  cmd.About,
		long:   cmd.LongAbout,
		args:   args,
		parent: parent,
		index:  make(map[string]int, len(cmd.Subcommands)),
	})

	for _, sub := range cmd.Subcommands {
		child := t.add(sub, id)
		t.nodes[id].children = append(t.nodes[id].children, child)
		t.nodes[id].index[sub.Name] = child
	}
	return id
}

// =============================================================================
// VALIDATION
// =============================================================================

func validateName(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, unicode.IsSpace) < 0
}

func validateCommand(cmd *Command, path string) error {
	if !validateName(cmd.Name) {
		return &ConfigurationError{Command: path, Reason: "command names must be non-empty and contain no whitespace"}
	}

	names := make(map[string]bool, len(cmd.Args))
	longs := make(map[string]bool, len(cmd.Args))
	shorts := make(map[rune]bool, len(cmd.Args))
	sawOptional := false
	sawMultiple := false

	for _, arg := range cmd.Args {
		if arg.Name == "" {
			return &ConfigurationError{Command: path, Reason: "argument without a name"}
		}
		if names[arg.Name] || arg.Name == HelpArg.Name {
			return &ConfigurationError{Command: path, Reason: "duplicate argument name " + quote(arg.Name)}
		}
		names[arg.Name] = true

		if arg.Global {
			return &ConfigurationError{Command: path, Reason: "argument " + quote(arg.Name) + " cannot be marked global"}
		}

		if arg.IsPositional() {
			if arg.Switch {
				return &ConfigurationError{Command: path, Reason: "positional argument " + quote(arg.Name) + " cannot be a switch"}
			}
			if sawMultiple {
				return &ConfigurationError{Command: path, Reason: "only the last positional argument may take multiple values"}
			}
			if arg.Required && sawOptional {
				return &ConfigurationError{Command: path, Reason: "required positional " + quote(arg.Name) + " follows an optional one"}
			}
			if !arg.Required {
				sawOptional = true
			}
			if arg.Multiple {
				sawMultiple = true
			}
			continue
		}

		if arg.Long != "" {
			if !validateName(arg.Long) || strings.HasPrefix(arg.Long, "-") {
				return &ConfigurationError{Command: path, Reason: "invalid long flag " + quote(arg.Long)}
			}
			if longs[arg.Long] || arg.Long == HelpArg.Long {
				return &ConfigurationError{Command: path, Reason: "duplicate flag --" + arg.Long}
			}
			longs[arg.Long] = true
		} else if arg.Short != 0 {
			// A short-only flag is parsed under its argument name.
			if longs[arg.Name] {
				return &ConfigurationError{Command: path, Reason: "flag name " + quote(arg.Name) + " is already used by another flag"}
			}
			longs[arg.Name] = true
		}
		if arg.Short != 0 {
			if unicode.IsSpace(arg.Short) || arg.Short == '-' {
				return &ConfigurationError{Command: path, Reason: "invalid short flag " + quote(string(arg.Short))}
			}
			if arg.Short > unicode.MaxASCII {
				return &ConfigurationError{Command: path, Reason: "short flag " + quote(string(arg.Short)) + " must be a single ASCII character"}
			}
			if shorts[arg.Short] || arg.Short == HelpArg.Short {
				return &ConfigurationError{Command: path, Reason: "duplicate flag -" + string(arg.Short)}
			}
			shorts[arg.Short] = true
		}
		if arg.Switch && len(arg.PossibleValues) > 0 {
			return &ConfigurationError{Command: path, Reason: "switch " + quote(arg.Name) + " cannot have possible values"}
		}
	}

	if arg, ok := defaultOutsideValues(cmd.Args); ok {
		return &ConfigurationError{Command: path, Reason: "default " + quote(arg.Default) + " of " + quote(arg.Name) + " is not a possible value"}
	}

	siblings := make(map[string]bool, len(cmd.Subcommands))
	for _, sub := range cmd.Subcommands {
		if sub == nil {
			return &ConfigurationError{Command: path, Reason: "nil subcommand"}
		}
		if sub.Name == HelpCommand {
			return &ConfigurationError{Command: path + " " + sub.Name, Reason: "name is reserved"}
		}
		if siblings[sub.Name] {
			return &ConfigurationError{Command: path + " " + sub.Name, Reason: "duplicate subcommand name"}
		}
		siblings[sub.Name] = true
		if err := validateCommand(sub, path+" "+sub.Name); err != nil {
			return err
		}
	}
	return nil
}

func defaultOutsideValues(args []Arg) (Arg, bool) {
	for _, arg := range args {
		if arg.Default != "" && len(arg.PossibleValues) > 0 && !arg.HasValue(arg.Default) {
			return arg, true
		}
	}
	return Arg{}, false
}

func quote(s string) string {
	return "'" + s + "'"
}

// =============================================================================
// NODE VIEW
// =============================================================================

// Node is a read-only handle to a command in a Tree.
// The zero Node is invalid.
type Node struct {
	tree *Tree
	id   int
}

// Valid reports whether the handle refers to a command.
func (n Node) Valid() bool {
	return n.tree != nil
}

func (n Node) data() *node {
	return &n.tree.nodes[n.id]
}

// Name returns the command name.
func (n Node) Name() string {
	return n.data().name
}

// About returns the one-line description.
func (n Node) About() string {
	return n.data().about
}

// LongAbout returns the long description, falling back to About.
func (n Node) LongAbout() string {
	if d := n.data(); d.long != "" {
		return d.long
	}
	return n.About()
}

// Args returns the arguments including the injected global help flag.
// The returned slice must not be modified.
func (n Node) Args() []Arg {
	return n.data().args
}

// Arg finds an argument by name.
func (n Node) Arg(name string) (Arg, bool) {
	for _, arg := range n.data().args {
		if arg.Name == name {
			return arg, true
		}
	}
	return Arg{}, false
}

// Positionals returns the positional arguments in declaration order.
func (n Node) Positionals() []Arg {
	var out []Arg
	for _, arg := range n.data().args {
		if arg.IsPositional() {
			out = append(out, arg)
		}
	}
	return out
}

// Flags returns the flag arguments in declaration order, global ones last.
func (n Node) Flags() []Arg {
	var out []Arg
	for _, arg := range n.data().args {
		if !arg.IsPositional() {
			out = append(out, arg)
		}
	}
	return out
}

// Subcommands returns the direct children in declaration order.
func (n Node) Subcommands() []Node {
	d := n.data()
	out := make([]Node, len(d.children))
	for i, id := range d.children {
		out[i] = Node{tree: n.tree, id: id}
	}
	return out
}

// FindSubcommand finds a direct child by exact name.
func (n Node) FindSubcommand(name string) (Node, bool) {
	id, ok := n.data().index[name]
	if !ok {
		return Node{}, false
	}
	return Node{tree: n.tree, id: id}, true
}

// Parent returns the enclosing command, if any.
func (n Node) Parent() (Node, bool) {
	p := n.data().parent
	if p < 0 {
		return Node{}, false
	}
	return Node{tree: n.tree, id: p}, true
}

// Path returns the command names from the top level down to n.
func (n Node) Path() []string {
	var path []string
	for cur, ok := n, true; ok; cur, ok = cur.Parent() {
		path = append(path, cur.Name())
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FullName returns the space-joined path.
func (n Node) FullName() string {
	return strings.Join(n.Path(), " ")
}
