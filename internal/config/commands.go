// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/rigrun-repl/commands"
)

// =============================================================================
// COMMAND FILES
// =============================================================================

// CommandFile is the on-disk form of a set of command definitions.
//
// YAML:
//
//	commands:
//	  - name: deploy
//	    about: Manage deployments
//	    subcommands:
//	      - name: status
//	        args:
//	          - name: state
//	            long: state
//	            short: s
//	            values: [{name: ok}, {name: fail}]
//
// TOML uses the same keys with [[commands]] tables.
type CommandFile struct {
	Commands []CommandSpec `yaml:"commands" toml:"commands"`
}

// CommandSpec defines one command and its sub-commands.
type CommandSpec struct {
	Name        string        `yaml:"name" toml:"name"`
	About       string        `yaml:"about" toml:"about"`
	LongAbout   string        `yaml:"long_about" toml:"long_about"`
	Args        []ArgSpec     `yaml:"args" toml:"args"`
	Subcommands []CommandSpec `yaml:"subcommands" toml:"subcommands"`
}

// ArgSpec defines one argument. Without long and short it is positional.
type ArgSpec struct {
	Name     string      `yaml:"name" toml:"name"`
	Long     string      `yaml:"long" toml:"long"`
	Short    string      `yaml:"short" toml:"short"`
	Help     string      `yaml:"help" toml:"help"`
	Required bool        `yaml:"required" toml:"required"`
	Switch   bool        `yaml:"switch" toml:"switch"`
	Multiple bool        `yaml:"multiple" toml:"multiple"`
	Default  string      `yaml:"default" toml:"default"`
	Values   []ValueSpec `yaml:"values" toml:"values"`
}

// ValueSpec is one allowed value of an argument.
type ValueSpec struct {
	Name string `yaml:"name" toml:"name"`
	Help string `yaml:"help" toml:"help"`
}

// LoadCommands reads command definitions from a .yaml, .yml or .toml file.
// The result is ready for registration; name collisions and grammar
// problems are reported by the command tree.
func LoadCommands(path string) ([]*commands.Command, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read command file: %w", err)
	}

	var file CommandFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &file)
	case ".toml":
		err = decodeTOML(data, &file)
	default:
		return nil, fmt.Errorf("unsupported command file type '%s'", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode command file %s: %w", path, err)
	}

	cmds := make([]*commands.Command, 0, len(file.Commands))
	for _, spec := range file.Commands {
		cmd, err := spec.Command()
		if err != nil {
			return nil, fmt.Errorf("command file %s: %w", path, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func decodeYAML(data []byte, file *CommandFile) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(file); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func decodeTOML(data []byte, file *CommandFile) error {
	meta, err := toml.Decode(string(data), file)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys: %v", undecoded)
	}
	return nil
}

// Command converts the spec into a command definition.
func (s CommandSpec) Command() (*commands.Command, error) {
	cmd := &commands.Command{
		Name:      s.Name,
		About:     s.About,
		LongAbout: s.LongAbout,
	}

	for _, a := range s.Args {
		arg, err := a.arg()
		if err != nil {
			return nil, fmt.Errorf("command '%s': %w", s.Name, err)
		}
		cmd.Args = append(cmd.Args, arg)
	}

	for _, sub := range s.Subcommands {
		child, err := sub.Command()
		if err != nil {
			return nil, fmt.Errorf("command '%s': %w", s.Name, err)
		}
		cmd.Subcommands = append(cmd.Subcommands, child)
	}
	return cmd, nil
}

func (a ArgSpec) arg() (commands.Arg, error) {
	arg := commands.Arg{
		Name:     a.Name,
		Long:     a.Long,
		Help:     a.Help,
		Required: a.Required,
		Switch:   a.Switch,
		Multiple: a.Multiple,
		Default:  a.Default,
	}

	if a.Short != "" {
		r, size := utf8.DecodeRuneInString(a.Short)
		if size != len(a.Short) {
			return commands.Arg{}, fmt.Errorf("argument '%s': short flag '%s' must be a single character", a.Name, a.Short)
		}
		arg.Short = r
	}

	for _, v := range a.Values {
		arg.PossibleValues = append(arg.PossibleValues, commands.PossibleValue{Name: v.Name, Help: v.Help})
	}
	return arg, nil
}
