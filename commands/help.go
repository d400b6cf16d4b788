// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
)

// AppInfo is the metadata shown in the summary line of the top-level help.
type AppInfo struct {
	Name        string
	Version     string
	Description string
}

// helpAbout is the help entry for the help pseudo-command.
const helpAbout = "Print this message or the help of the given subcommand(s)"

// helpIndent prefixes every entry line.
const helpIndent = "    "

// Help renders the help for path: the top-level help when path is empty,
// otherwise the help of the command it names.
func (t *Tree) Help(info AppInfo, path []string) (string, error) {
	var b strings.Builder
	if len(path) == 0 {
		WriteRootHelp(&b, info, t)
		return b.String(), nil
	}
	n, ok := t.Resolve(path)
	if !ok {
		return "", &SyntaxError{
			Message: "no help topic",
			Got:     strings.Join(path, " "),
		}
	}
	WriteCommandHelp(&b, n)
	return b.String(), nil
}

// WriteRootHelp writes the summary line and the COMMANDS block.
func WriteRootHelp(w io.Writer, info AppInfo, t *Tree) {
	summary := info.Name
	if info.Version != "" {
		summary += " " + info.Version
	}
	if info.Description != "" {
		summary += ": " + info.Description
	}
	if summary != "" {
		fmt.Fprintf(w, "%s\n\n", summary)
	}

	var rows [][2]string
	for _, n := range t.Roots() {
		rows = append(rows, [2]string{n.Name(), n.About()})
	}
	rows = append(rows, [2]string{HelpCommand, helpAbout})
	sort.SliceStable(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	fmt.Fprintln(w, "COMMANDS:")
	writeRows(w, rows)
}

// WriteCommandHelp writes the help page of one command.
func WriteCommandHelp(w io.Writer, n Node) {
	fmt.Fprintln(w, n.FullName())
	if about := n.LongAbout(); about != "" {
		fmt.Fprintln(w, about)
	}

	fmt.Fprintf(w, "\nUSAGE:\n%s%s\n", helpIndent, Usage(n))

	if positionals := n.Positionals(); len(positionals) > 0 {
		rows := make([][2]string, 0, len(positionals))
		for _, arg := range positionals {
			rows = append(rows, [2]string{positionalDisplay(arg), argHelp(arg)})
		}
		fmt.Fprintln(w, "\nARGS:")
		writeRows(w, rows)
	}

	flags := n.Flags()
	rows := make([][2]string, 0, len(flags))
	for _, arg := range flags {
		rows = append(rows, [2]string{optionDisplay(arg), argHelp(arg)})
	}
	fmt.Fprintln(w, "\nOPTIONS:")
	writeRows(w, rows)

	if subs := n.Subcommands(); len(subs) > 0 {
		rows := make([][2]string, 0, len(subs))
		for _, sub := range subs {
			rows = append(rows, [2]string{sub.Name(), sub.About()})
		}
		fmt.Fprintln(w, "\nSUBCOMMANDS:")
		writeRows(w, rows)
	}
}

// Usage returns the usage line of a command, e.g. "deploy status [OPTIONS] <target>".
func Usage(n Node) string {
	parts := []string{n.FullName()}
	for _, arg := range n.Flags() {
		if !arg.Global {
			parts = append(parts, "[OPTIONS]")
			break
		}
	}
	for _, arg := range n.Positionals() {
		parts = append(parts, positionalDisplay(arg))
	}
	if len(n.Subcommands()) > 0 {
		parts = append(parts, "<SUBCOMMAND>")
	}
	return strings.Join(parts, " ")
}

func positionalDisplay(arg Arg) string {
	s := arg.Name
	if arg.Multiple {
		s += "..."
	}
	if arg.Required {
		return "<" + s + ">"
	}
	return "[" + s + "]"
}

func optionDisplay(arg Arg) string {
	var s string
	switch {
	case arg.Short != 0 && arg.Long != "":
		s = "-" + string(arg.Short) + ", --" + arg.Long
	case arg.Long != "":
		s = "    --" + arg.Long
	default:
		s = "-" + string(arg.Short)
	}
	if arg.TakesValue() {
		s += " <" + arg.Name + ">"
	}
	return s
}

func argHelp(arg Arg) string {
	parts := []string{}
	if arg.Help != "" {
		parts = append(parts, arg.Help)
	}
	if arg.Default != "" {
		parts = append(parts, "[default: "+arg.Default+"]")
	}
	if len(arg.PossibleValues) > 0 {
		parts = append(parts, "[possible values: "+strings.Join(arg.ValueNames(), ", ")+"]")
	}
	return strings.Join(parts, " ")
}

// writeRows writes two aligned columns, padding by display width.
func writeRows(w io.Writer, rows [][2]string) {
	width := 0
	for _, row := range rows {
		width = max(width, runewidth.StringWidth(row[0]))
	}
	for _, row := range rows {
		if row[1] == "" {
			fmt.Fprintf(w, "%s%s\n", helpIndent, row[0])
			continue
		}
		fmt.Fprintf(w, "%s%s%s\n", helpIndent, runewidth.FillRight(row[0], width+4), row[1])
	}
}
