// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package repl

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/rigrun-repl/commands"
	"github.com/jeranaias/rigrun-repl/internal/term"
)

// =============================================================================
// FIXTURES
// =============================================================================

type myList struct {
	list []string
}

var appendCommand = &commands.Command{
	Name:  "append",
	About: "Append name to end of list",
	Args:  []commands.Arg{{Name: "name", Required: true}},
}

var prependCommand = &commands.Command{
	Name:  "prepend",
	About: "Prepend name to front of list",
	Args:  []commands.Arg{{Name: "name", Required: true}},
}

func appendName(args *commands.Matches, ctx *myList) (string, error) {
	ctx.list = append(ctx.list, args.Value("name"))
	return fmt.Sprintf("appended %s", args.Value("name")), nil
}

func prependName(args *commands.Matches, ctx *myList) (string, error) {
	ctx.list = append([]string{args.Value("name")}, ctx.list...)
	return "", nil
}

type harness struct {
	shell  *Repl[myList]
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(script string) *harness {
	h := &harness{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.shell = New(myList{}).
		WithName("MyList").
		WithVersion("v0.1.0").
		WithDescription("My very cool list").
		WithInput(NewScriptReader(strings.NewReader(script))).
		WithOutput(h.stdout, h.stderr).
		WithColor(term.ColorNever)
	return h
}

// failingReader returns err after its lines are used up.
type failingReader struct {
	lines []string
	err   error
}

func (f *failingReader) ReadLine(string) (string, error) {
	if len(f.lines) == 0 {
		return "", f.err
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func (f *failingReader) Close() error { return nil }

// =============================================================================
// DISPATCH TESTS
// =============================================================================

func TestRunDispatchesCallbacks(t *testing.T) {
	h := newHarness("append alice\nprepend bob\n\n   \nappend carol\n")
	h.shell.WithCommand(appendCommand, appendName).WithCommand(prependCommand, prependName)

	require.NoError(t, h.shell.Run())

	assert.Equal(t, []string{"bob", "alice", "carol"}, h.shell.Context().list)
	assert.Equal(t, "appended alice\nappended carol\n", h.stdout.String(), "empty output prints nothing")
	assert.Empty(t, h.stderr.String())
}

func TestRunCallbackErrorContinues(t *testing.T) {
	h := newHarness("fail\nappend alice\n")
	h.shell.
		WithCommand(&commands.Command{Name: "fail", About: "Always fails"}, func(*commands.Matches, *myList) (string, error) {
			return "", errors.New("boom")
		}).
		WithCommand(appendCommand, appendName)

	require.NoError(t, h.shell.Run())

	assert.Equal(t, "[Error] boom\n", h.stderr.String())
	assert.Equal(t, "appended alice\n", h.stdout.String())
	assert.Equal(t, []string{"alice"}, h.shell.Context().list)
}

func TestRunDispatchErrorContinues(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	h := newHarness("prepend bob\nappend alice\n")
	h.shell.
		WithCommand(prependCommand, nil).
		WithCommand(appendCommand, appendName).
		WithLogger(zap.New(core))

	require.NoError(t, h.shell.Run())

	assert.Equal(t, "[Error] no callback bound for command 'prepend'\n", h.stderr.String())
	assert.Equal(t, []string{"alice"}, h.shell.Context().list, "the next line is still accepted")

	warnings := logs.FilterMessage("dispatch failed").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "prepend", warnings[0].ContextMap()["command"])
	assert.NotEmpty(t, warnings[0].ContextMap()["session"])
}

func TestRunSyntaxErrorContinues(t *testing.T) {
	h := newHarness("append\nappend a b\nappend alice\n")
	h.shell.WithCommand(appendCommand, appendName)

	require.NoError(t, h.shell.Run())

	lines := strings.Split(strings.TrimSpace(h.stderr.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "required argument missing")
	assert.Contains(t, lines[1], "unexpected argument")
	assert.Equal(t, []string{"alice"}, h.shell.Context().list)
}

func TestRunUnknownCommandPrintsHelp(t *testing.T) {
	h := newHarness("apend alice\n")
	h.shell.WithCommand(appendCommand, appendName)

	require.NoError(t, h.shell.Run())

	assert.Contains(t, h.stderr.String(), "unrecognized command (got: apend) (did you mean 'append'?)")
	assert.Contains(t, h.stdout.String(), "COMMANDS:\n    append    Append name to end of list\n")
}

// =============================================================================
// DIRECTIVE TESTS
// =============================================================================

func TestRunHelpDirective(t *testing.T) {
	h := newHarness("help\nhelp append\nappend --help\nhelp nope\n")
	h.shell.WithCommand(appendCommand, appendName)

	require.NoError(t, h.shell.Run())

	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "MyList v0.1.0: My very cool list\n\nCOMMANDS:\n"))
	assert.Contains(t, out, "    help      Print this message or the help of the given subcommand(s)\n")
	assert.Equal(t, 2, strings.Count(out, "USAGE:\n    append <name>\n"), "help append and append --help")
	assert.Empty(t, h.shell.Context().list)
	assert.Contains(t, h.stderr.String(), "no help topic (got: nope)")
}

func TestRunQuitDirective(t *testing.T) {
	for _, directive := range []string{"quit", "exit"} {
		t.Run(directive, func(t *testing.T) {
			h := newHarness("append alice\n" + directive + "\nappend bob\n")
			h.shell.WithCommand(appendCommand, appendName)

			require.NoError(t, h.shell.Run())
			assert.Equal(t, []string{"alice"}, h.shell.Context().list)
		})
	}
}

func TestReservedDirectivesCannotBeRegistered(t *testing.T) {
	shell := New(myList{})

	err := shell.AddCommand(&commands.Command{Name: "quit"}, nil)
	var cfgErr *commands.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "quit", cfgErr.Command)

	err = shell.AddCommand(&commands.Command{Name: "help"}, nil)
	assert.ErrorAs(t, err, &cfgErr)
}

// =============================================================================
// HOOK TESTS
// =============================================================================

func TestRunHooks(t *testing.T) {
	var order []string

	h := newHarness("append alice\nfail\n")
	h.shell.
		WithCommand(appendCommand, func(args *commands.Matches, ctx *myList) (string, error) {
			order = append(order, "append")
			return appendName(args, ctx)
		}).
		WithCommand(&commands.Command{Name: "fail"}, func(*commands.Matches, *myList) (string, error) {
			order = append(order, "fail")
			return "", errors.New("boom")
		}).
		WithBeforeCommand(func(*myList) (string, error) {
			order = append(order, "before")
			return "", nil
		}).
		WithAfterCommand(func(ctx *myList) (string, error) {
			order = append(order, "after")
			return fmt.Sprintf("MyList [%d]", len(ctx.list)), nil
		})

	require.NoError(t, h.shell.Run())

	assert.Equal(t, []string{"before", "append", "after", "before", "fail", "after"}, order)
	assert.Equal(t, "appended alice\nMyList [1]\nMyList [1]\n", h.stdout.String())
}

func TestRunHookAbort(t *testing.T) {
	stop := errors.New("list is full")

	h := newHarness("append alice\nappend bob\nappend carol\n")
	h.shell.
		WithCommand(appendCommand, appendName).
		WithAfterCommand(func(ctx *myList) (string, error) {
			if len(ctx.list) >= 2 {
				return "", stop
			}
			return "", nil
		})

	err := h.shell.Run()

	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "after", hookErr.Stage)
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"alice", "bob"}, h.shell.Context().list)
}

func TestRunBeforeHookAbortSkipsCallback(t *testing.T) {
	h := newHarness("append alice\n")
	h.shell.
		WithCommand(appendCommand, appendName).
		WithBeforeCommand(func(*myList) (string, error) {
			return "", errors.New("locked")
		})

	err := h.shell.Run()

	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "before", hookErr.Stage)
	assert.Empty(t, h.shell.Context().list)
}

// =============================================================================
// SETUP AND INPUT TESTS
// =============================================================================

func TestRunReportsSetupErrors(t *testing.T) {
	h := newHarness("append alice\n")
	h.shell.
		WithCommand(appendCommand, appendName).
		WithCommand(appendCommand, appendName).
		WithCallback("missing", appendName)

	err := h.shell.Run()

	var cfgErr *commands.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "missing")
	assert.Empty(t, h.shell.Context().list, "no line is read after a setup error")
}

func TestRunRejectsUnparseableFlagGrammar(t *testing.T) {
	tests := []struct {
		name string
		cmd  *commands.Command
	}{
		{"short-only name equals long", &commands.Command{Name: "shout", Args: []commands.Arg{
			{Name: "verbose", Long: "loud", Switch: true},
			{Name: "loud", Short: 'v', Switch: true},
		}}},
		{"non-ASCII short", &commands.Command{Name: "shout", Args: []commands.Arg{
			{Name: "accent", Short: 'é', Switch: true},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("shout -v\nshout\nappend alice\n")
			h.shell.
				WithCommand(appendCommand, appendName).
				WithCommand(tt.cmd, func(*commands.Matches, *myList) (string, error) { return "", nil })

			var err error
			require.NotPanics(t, func() { err = h.shell.Run() })

			var cfgErr *commands.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, "shout", cfgErr.Command)
			assert.Empty(t, h.shell.Context().list, "no line is read after a setup error")
		})
	}
}

func TestRunShortOnlyFlags(t *testing.T) {
	shout := &commands.Command{Name: "shout", Args: []commands.Arg{
		{Name: "loud", Short: 'l', Switch: true},
		{Name: "times", Short: 'n', Default: "1"},
		{Name: "word", Required: true},
	}}
	h := newHarness("shout -l -n 2 hi\nshout --loud hi\nshout -n\nshout -h\nappend alice\n")
	h.shell.
		WithCommand(appendCommand, appendName).
		WithCommand(shout, func(args *commands.Matches, _ *myList) (string, error) {
			word := args.Value("word")
			if args.Bool("loud") {
				word = strings.ToUpper(word)
			}
			times, err := args.Int("times")
			if err != nil {
				return "", err
			}
			return strings.Repeat(word, times), nil
		})

	require.NotPanics(t, func() { require.NoError(t, h.shell.Run()) })

	assert.Contains(t, h.stdout.String(), "HIHI\n")
	assert.Contains(t, h.stdout.String(), "USAGE:")
	assert.Contains(t, h.stderr.String(), "unknown flag: --loud")
	assert.Equal(t, []string{"alice"}, h.shell.Context().list)
}

func TestBindAfterRunFails(t *testing.T) {
	h := newHarness("")
	h.shell.WithCommand(appendCommand, nil)
	require.NoError(t, h.shell.Run())

	err := h.shell.Bind("append", appendName)
	var cfgErr *commands.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.True(t, h.shell.Tree().Frozen())
}

func TestWithCallbackBindsLoadedCommand(t *testing.T) {
	h := newHarness("append alice\n")
	require.NoError(t, h.shell.AddCommand(appendCommand, nil))
	h.shell.WithCallback("append", appendName)

	require.NoError(t, h.shell.Run())
	assert.Equal(t, []string{"alice"}, h.shell.Context().list)
}

func TestRunInputEnd(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
	}{
		{"interrupted", ErrInterrupted, false},
		{"read failure", errors.New("device gone"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness("")
			h.shell.
				WithCommand(appendCommand, appendName).
				WithInput(&failingReader{lines: []string{"append alice"}, err: tt.err})

			err := h.shell.Run()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.err)
				assert.Contains(t, err.Error(), "read input")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, []string{"alice"}, h.shell.Context().list)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	var seen []error

	h := newHarness("nope\n")
	h.shell.WithErrorHandler(func(_ io.Writer, err error) {
		seen = append(seen, err)
	})

	require.NoError(t, h.shell.Run())

	require.Len(t, seen, 1)
	var syntaxErr *commands.SyntaxError
	assert.ErrorAs(t, seen[0], &syntaxErr)
	assert.Empty(t, h.stderr.String())
}

func TestCompleteUsesTree(t *testing.T) {
	shell := New(myList{}).WithCommand(appendCommand, appendName)

	got := shell.Complete("ap", 2)
	require.Len(t, got, 1)
	assert.Equal(t, "append", got[0].Value)
	assert.Equal(t, commands.Span{Start: 0, End: 2}, got[0].Span)

	assert.Empty(t, shell.Complete("append ", 7))
}
