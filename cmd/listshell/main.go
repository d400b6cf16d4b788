// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// listshell is an example shell built on the repl package. It keeps a list
// of names and a set of deployments in its session context.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/rigrun-repl/commands"
	"github.com/jeranaias/rigrun-repl/internal/config"
	"github.com/jeranaias/rigrun-repl/internal/logging"
	"github.com/jeranaias/rigrun-repl/internal/styles"
	"github.com/jeranaias/rigrun-repl/internal/term"
	"github.com/jeranaias/rigrun-repl/repl"
)

// Version information (set via ldflags)
var version = "v0.1.0"

var (
	// Global flags
	configPath   string
	commandsPath string
	logLevel     string
	colorFlag    string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd starts the interactive shell.
var rootCmd = &cobra.Command{
	Use:   "listshell",
	Short: "MyList - an interactive list shell",
	Long: `listshell keeps a list of names and a set of deployments.

Run without arguments to start the shell. Type 'help' for the commands
and 'quit' to leave. Input that is not a terminal is read as a script.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if commandsPath != "" {
			cfg.Shell.Commands = commandsPath
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if colorFlag != "" {
			cfg.UI.Color = colorFlag
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}

		logger, err = logging.New(cfg.Log)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell()
	},
}

// completeCmd prints the completions for a line, one per row.
var completeCmd = &cobra.Command{
	Use:   "complete [line]",
	Short: "Print the completions the shell would offer for a line",
	Long: `Prints the completions for a line with the cursor at its end, as
"value<TAB>start<TAB>end<TAB>description".

Example:
  listshell complete "deploy status --state f"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		shell, err := buildShell()
		if err != nil {
			return err
		}
		line := ""
		if len(args) == 1 {
			line = args[0]
		}
		for _, s := range shell.Complete(line, len(line)) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%d\t%s\n", s.Value, s.Span.Start, s.Span.End, s.Description)
		}
		return nil
	},
}

// initConfigCmd writes the effective configuration.
var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write the current configuration to a TOML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			if err := config.EnsureConfigDir(); err != nil {
				return err
			}
			var err error
			if path, err = config.ConfigPathTOML(); err != nil {
				return err
			}
		}
		if err := config.SaveTOML(cfg, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.rigrun-repl/config.toml)")
	rootCmd.PersistentFlags().StringVar(&commandsPath, "commands", "", "command definition file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "", "color output: auto, always, never")

	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(initConfigCmd)
}

// buildShell creates the shell from the loaded configuration.
func buildShell() (*repl.Repl[listContext], error) {
	var defs []*commands.Command
	if cfg.Shell.Commands != "" {
		loaded, err := config.LoadCommands(cfg.Shell.Commands)
		if err != nil {
			return nil, err
		}
		defs = loaded
	}

	shell := newShell(defs).
		WithLogger(logger).
		WithColor(cfg.ColorMode()).
		WithHistoryFile(cfg.HistoryFile())
	if cfg.Shell.Name != config.Default().Shell.Name {
		shell.WithName(cfg.Shell.Name)
	}
	if cfg.Shell.Version != "" {
		shell.WithVersion(cfg.Shell.Version)
	}
	if cfg.Shell.Description != "" {
		shell.WithDescription(cfg.Shell.Description)
	}
	if cfg.Shell.Prompt != "" {
		shell.WithPrompt(cfg.Shell.Prompt)
	}
	return shell, nil
}

func runShell() error {
	if err := cfg.PrepareHistoryFile(); err != nil {
		logger.Warn("history disabled", zap.Error(err))
		cfg.History.Enabled = false
	}

	shell, err := buildShell()
	if err != nil {
		return err
	}
	if err := shell.Run(); err != nil {
		return err
	}

	ctx := shell.Context()
	logger.Info("session summary", zap.Int("names", len(ctx.list)), zap.Int("deployments", len(ctx.deployments)))
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorLabel(), err)
		os.Exit(1)
	}
}

func errorLabel() string {
	mode := term.ColorAuto
	if cfg != nil {
		mode = cfg.ColorMode()
	}
	return styles.NewTheme(term.Renderer(os.Stderr, mode)).ErrorLabel.Render("[Error]")
}
