// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-repl/commands"
	"github.com/jeranaias/rigrun-repl/internal/styles"
	"github.com/jeranaias/rigrun-repl/internal/term"
)

// Callback runs a command. It receives the parsed arguments and the
// session context. A non-empty result is printed; an error is printed to
// the error stream and the session continues.
type Callback[C any] func(args *commands.Matches, ctx *C) (string, error)

// Hook runs before or after every command. A non-empty result is printed;
// an error aborts the session.
type Hook[C any] func(ctx *C) (string, error)

// ErrorHandler renders a per-turn error (syntax, dispatch or callback).
type ErrorHandler func(w io.Writer, err error)

// Directives handled by the engine itself.
const (
	quitDirective = "quit"
	exitDirective = "exit"
)

// stdin is read as a script when it is not a terminal.
var stdin io.Reader = os.Stdin

// =============================================================================
// REPL
// =============================================================================

// Repl is an interactive command shell over an application context of
// type C. Configure it with the With* methods, then call Run.
type Repl[C any] struct {
	info   commands.AppInfo
	prompt string

	tree      *commands.Tree
	resolver  *commands.Resolver
	callbacks map[string]Callback[C]

	before Hook[C]
	after  Hook[C]

	context C

	input       LineReader
	historyFile string
	stdout      io.Writer
	stderr      io.Writer
	color       term.ColorMode
	theme       *styles.Theme
	onError     ErrorHandler

	logger   *zap.Logger
	setupErr error
}

// New creates a shell whose callbacks share context.
func New[C any](context C) *Repl[C] {
	tree := commands.NewTree()
	return &Repl[C]{
		info:      commands.AppInfo{Name: "repl"},
		tree:      tree,
		resolver:  commands.NewResolver(tree),
		callbacks: make(map[string]Callback[C]),
		context:   context,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		color:     term.ColorAuto,
		logger:    zap.NewNop(),
	}
}

// WithName sets the name shown in help and the default prompt.
func (r *Repl[C]) WithName(name string) *Repl[C] {
	r.info.Name = name
	return r
}

// WithVersion sets the version shown in help.
func (r *Repl[C]) WithVersion(version string) *Repl[C] {
	r.info.Version = version
	return r
}

// WithDescription sets the description shown in help.
func (r *Repl[C]) WithDescription(description string) *Repl[C] {
	r.info.Description = description
	return r
}

// WithPrompt overrides the default "<name>>" prompt.
func (r *Repl[C]) WithPrompt(prompt string) *Repl[C] {
	r.prompt = prompt
	return r
}

// WithCommand registers cmd and binds callback to it. A nil callback
// leaves the command unbound. Registration errors are reported by Run.
func (r *Repl[C]) WithCommand(cmd *commands.Command, callback Callback[C]) *Repl[C] {
	r.recordSetupError(r.AddCommand(cmd, callback))
	return r
}

// WithCallback binds callback to an already registered top-level command,
// e.g. one loaded from a command file.
func (r *Repl[C]) WithCallback(name string, callback Callback[C]) *Repl[C] {
	r.recordSetupError(r.Bind(name, callback))
	return r
}

// WithBeforeCommand sets the hook run before every command callback.
func (r *Repl[C]) WithBeforeCommand(hook Hook[C]) *Repl[C] {
	r.before = hook
	return r
}

// WithAfterCommand sets the hook run after every command callback.
func (r *Repl[C]) WithAfterCommand(hook Hook[C]) *Repl[C] {
	r.after = hook
	return r
}

// WithLogger sets the logger. The default discards everything.
func (r *Repl[C]) WithLogger(logger *zap.Logger) *Repl[C] {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// WithInput replaces the default input. By default a terminal stdin gets
// line editing and anything else is read as a script.
func (r *Repl[C]) WithInput(input LineReader) *Repl[C] {
	r.input = input
	return r
}

// WithHistoryFile persists interactive history to path.
func (r *Repl[C]) WithHistoryFile(path string) *Repl[C] {
	r.historyFile = path
	return r
}

// WithOutput redirects command output and error output.
func (r *Repl[C]) WithOutput(stdout, stderr io.Writer) *Repl[C] {
	if stdout != nil {
		r.stdout = stdout
	}
	if stderr != nil {
		r.stderr = stderr
	}
	return r
}

// WithColor sets when prompts and error labels are coloured.
func (r *Repl[C]) WithColor(mode term.ColorMode) *Repl[C] {
	r.color = mode
	r.theme = nil
	return r
}

// WithErrorHandler replaces the rendering of per-turn errors.
func (r *Repl[C]) WithErrorHandler(handler ErrorHandler) *Repl[C] {
	r.onError = handler
	return r
}

// =============================================================================
// REGISTRATION
// =============================================================================

// AddCommand registers cmd as a top-level command and binds callback.
func (r *Repl[C]) AddCommand(cmd *commands.Command, callback Callback[C]) error {
	if cmd != nil && (cmd.Name == quitDirective || cmd.Name == exitDirective) {
		return &commands.ConfigurationError{Command: cmd.Name, Reason: "name is reserved"}
	}
	if err := r.tree.Register(cmd); err != nil {
		return err
	}
	if callback != nil {
		r.callbacks[cmd.Name] = callback
	}
	return nil
}

// Bind binds callback to a registered top-level command.
func (r *Repl[C]) Bind(name string, callback Callback[C]) error {
	if r.tree.Frozen() {
		return &commands.ConfigurationError{Command: name, Reason: "cannot bind callbacks after the session started"}
	}
	if _, ok := r.tree.Lookup(name); !ok {
		return &commands.ConfigurationError{Command: name, Reason: "no such command"}
	}
	if callback == nil {
		return &commands.ConfigurationError{Command: name, Reason: "nil callback"}
	}
	if _, bound := r.callbacks[name]; bound {
		return &commands.ConfigurationError{Command: name, Reason: "a callback is already bound"}
	}
	r.callbacks[name] = callback
	return nil
}

func (r *Repl[C]) recordSetupError(err error) {
	if err != nil {
		r.setupErr = errors.Join(r.setupErr, err)
	}
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Context returns the session context. After Run returns the caller may
// inspect it.
func (r *Repl[C]) Context() *C {
	return &r.context
}

// Tree returns the command tree.
func (r *Repl[C]) Tree() *commands.Tree {
	return r.tree
}

// Info returns the name, version and description.
func (r *Repl[C]) Info() commands.AppInfo {
	return r.info
}

// Complete proposes completions for line at byte offset pos.
func (r *Repl[C]) Complete(line string, pos int) []commands.Suggestion {
	return r.resolver.Complete(line, pos)
}

// Help renders the help for path; an empty path gives the top-level help.
func (r *Repl[C]) Help(path ...string) (string, error) {
	return r.tree.Help(r.info, path)
}

func (r *Repl[C]) currentTheme() styles.Theme {
	if r.theme == nil {
		theme := styles.NewTheme(term.Renderer(r.stderr, r.color))
		r.theme = &theme
	}
	return *r.theme
}

func (r *Repl[C]) renderPrompt() string {
	if r.prompt != "" {
		return r.prompt
	}
	return r.currentTheme().Prompt.Render(fmt.Sprintf("%s>", r.info.Name)) + " "
}
