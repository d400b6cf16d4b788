// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the command tree behind an interactive shell.
//
// It owns the declarative command definitions, parses lines against them,
// renders help, and proposes tab completions.
//
// # Key Types
//
//   - Command, Arg: declarative definitions passed to Tree.Register
//   - Tree: immutable command hierarchy, frozen when the session starts
//   - Node: read-only handle to one command in the tree
//   - Matches: parsed arguments of a line
//   - Resolver: completion of a partial line at a cursor position
//
// # Usage
//
// Build a tree and parse a line:
//
//	tree := commands.NewTree()
//	err := tree.Register(&commands.Command{
//	    Name:  "append",
//	    About: "Append name to end of list",
//	    Args:  []commands.Arg{{Name: "name", Required: true}},
//	})
//	m, err := tree.ParseLine("append alice")
//	// m.Value("name") == "alice"
//
// Get completions:
//
//	suggestions := commands.NewResolver(tree).Complete("ap", 2)
//	// Returns [{Value: "append", Span: {0, 2}}]
package commands
