// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jeranaias/rigrun-repl/commands"
	"github.com/jeranaias/rigrun-repl/repl"
)

// listContext is the state shared by every command of the shell.
type listContext struct {
	list        []string
	deployments []deployment
}

type deployment struct {
	target string
	state  string
}

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

var nameArg = commands.Arg{Name: "name", Required: true, Help: "Name to add"}

func builtinCommands() []*commands.Command {
	return []*commands.Command{
		{
			Name:  "append",
			About: "Append name to end of list",
			Args:  []commands.Arg{nameArg},
		},
		{
			Name:  "prepend",
			About: "Prepend name to front of list",
			Args:  []commands.Arg{nameArg},
		},
		{
			Name:  "list",
			About: "Inspect or reorder the list",
			Subcommands: []*commands.Command{
				{Name: "show", About: "Print the list"},
				{Name: "clear", About: "Remove every name"},
				{
					Name:  "sort",
					About: "Sort the list",
					Args: []commands.Arg{{
						Name:    "order",
						Long:    "order",
						Short:   'o',
						Help:    "Sort direction",
						Default: "asc",
						PossibleValues: []commands.PossibleValue{
							{Name: "asc", Help: "A to Z"},
							{Name: "desc", Help: "Z to A"},
						},
					}},
				},
			},
		},
		{
			Name:  "deploy",
			About: "Manage deployments",
			Subcommands: []*commands.Command{
				{
					Name:  "status",
					About: "Show deployment status",
					Args: []commands.Arg{
						{
							Name:  "state",
							Long:  "state",
							Short: 's',
							Help:  "Filter by state",
							PossibleValues: []commands.PossibleValue{
								{Name: "ok", Help: "Running"},
								{Name: "fail", Help: "Failed"},
							},
						},
						{Name: "target", Help: "Deployment target"},
					},
				},
				{
					Name:  "start",
					About: "Start a deployment",
					Args: []commands.Arg{
						{Name: "target", Required: true, Help: "Deployment target"},
						{Name: "fail", Long: "fail", Switch: true, Help: "Record the deployment as failed"},
					},
				},
			},
		},
	}
}

// handlers binds command names to callbacks. Commands loaded from a file
// are bound by name; a loaded command without a handler stays unbound.
var handlers = map[string]repl.Callback[listContext]{
	"append":  appendName,
	"prepend": prependName,
	"list":    listCommand,
	"deploy":  deployCommand,
}

// =============================================================================
// CALLBACKS
// =============================================================================

func appendName(args *commands.Matches, ctx *listContext) (string, error) {
	ctx.list = append(ctx.list, args.Value("name"))
	return strings.Join(ctx.list, ", "), nil
}

func prependName(args *commands.Matches, ctx *listContext) (string, error) {
	ctx.list = append([]string{args.Value("name")}, ctx.list...)
	return strings.Join(ctx.list, ", "), nil
}

func listCommand(args *commands.Matches, ctx *listContext) (string, error) {
	name, sub := args.Subcommand()
	switch name {
	case "show":
		return strings.Join(ctx.list, ", "), nil
	case "clear":
		ctx.list = nil
		return "", nil
	case "sort":
		if sub.Value("order") == "desc" {
			sort.Sort(sort.Reverse(sort.StringSlice(ctx.list)))
		} else {
			sort.Strings(ctx.list)
		}
		return strings.Join(ctx.list, ", "), nil
	case "":
		return "", fmt.Errorf("missing subcommand, try 'help list'")
	}
	return "", fmt.Errorf("unsupported subcommand '%s'", name)
}

func deployCommand(args *commands.Matches, ctx *listContext) (string, error) {
	name, sub := args.Subcommand()
	switch name {
	case "status":
		var lines []string
		for _, d := range ctx.deployments {
			if state, ok := sub.Get("state"); ok && d.state != state {
				continue
			}
			if target, ok := sub.Get("target"); ok && d.target != target {
				continue
			}
			lines = append(lines, fmt.Sprintf("%s: %s", d.target, d.state))
		}
		if len(lines) == 0 {
			return "no deployments", nil
		}
		return strings.Join(lines, "\n"), nil
	case "start":
		target := sub.Value("target")
		state := "ok"
		if sub.Bool("fail") {
			state = "fail"
		}
		for i := range ctx.deployments {
			if ctx.deployments[i].target == target {
				ctx.deployments[i].state = state
				return fmt.Sprintf("restarted %s", target), nil
			}
		}
		ctx.deployments = append(ctx.deployments, deployment{target: target, state: state})
		return fmt.Sprintf("started %s", target), nil
	case "":
		return "", fmt.Errorf("missing subcommand, try 'help deploy'")
	}
	return "", fmt.Errorf("unsupported subcommand '%s'", name)
}

func listLength(ctx *listContext) (string, error) {
	return fmt.Sprintf("MyList [%d]", len(ctx.list)), nil
}

// =============================================================================
// SHELL
// =============================================================================

// newShell registers defs, or the built-in commands when defs is nil, and
// binds the handlers by name.
func newShell(defs []*commands.Command) *repl.Repl[listContext] {
	if defs == nil {
		defs = builtinCommands()
	}

	shell := repl.New(listContext{}).
		WithName("MyList").
		WithVersion(version).
		WithDescription("My very cool list").
		WithAfterCommand(listLength)

	for _, cmd := range defs {
		shell.WithCommand(cmd, handlers[cmd.Name])
	}
	return shell
}
