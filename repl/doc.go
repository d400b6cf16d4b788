// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repl runs an interactive command shell over a command tree.
//
// A Repl owns the tree, the callbacks bound to its top-level commands and
// an application context value. Each turn reads one line, parses it, runs
// the before hook, the callback and the after hook, and prints whatever
// they return:
//
//	shell := repl.New(MyList{}).
//		WithName("MyList").
//		WithVersion("v0.1.0").
//		WithCommand(&commands.Command{
//			Name:  "append",
//			About: "Append name to end of list",
//			Args:  []commands.Arg{{Name: "name", Required: true}},
//		}, appendName).
//		WithAfterCommand(printLength)
//	if err := shell.Run(); err != nil {
//		log.Fatal(err)
//	}
//
// Syntax errors, unbound commands and failing callbacks are printed to the
// error stream and the session continues. The session ends on quit or
// exit, at the end of input, on Ctrl+C, or when a hook returns an error.
//
// On a terminal the shell uses liner for line editing, history and tab
// completion. Any other stdin is read line by line as a script.
package repl
