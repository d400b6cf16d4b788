// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/rigrun-repl/internal/term"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete shell configuration.
type Config struct {
	// Shell identity and prompt
	Shell ShellConfig `toml:"shell"`

	// Persistent input history
	History HistoryConfig `toml:"history"`

	// Terminal output
	UI UIConfig `toml:"ui"`

	// Diagnostic logging
	Log LogConfig `toml:"log"`
}

// ShellConfig names the shell and sets its prompt.
type ShellConfig struct {
	// Name is shown in help and in the default prompt
	Name string `toml:"name"`
	// Version is shown in the help summary line
	Version string `toml:"version"`
	// Description is shown in the help summary line
	Description string `toml:"description"`
	// Prompt replaces the default "<name>> " prompt when set
	Prompt string `toml:"prompt"`
	// Commands is an optional command definition file (.yaml, .yml or .toml)
	Commands string `toml:"commands"`
}

// HistoryConfig controls the interactive history file.
type HistoryConfig struct {
	// Enabled turns history persistence on or off
	Enabled bool `toml:"enabled"`
	// File is the history file path; defaults to ~/.rigrun-repl/history
	File string `toml:"file"`
}

// UIConfig contains terminal output settings.
type UIConfig struct {
	// Color is "auto", "always" or "never"
	Color string `toml:"color"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is "debug", "info", "warn" or "error"
	Level string `toml:"level"`
	// File receives JSON log lines. Empty disables logging.
	File string `toml:"file"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Shell: ShellConfig{
			Name: "repl",
		},
		History: HistoryConfig{
			Enabled: true,
		},
		UI: UIConfig{
			Color: string(term.ColorAuto),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigrun-repl"), nil
}

// ConfigPathTOML returns the path to the default config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultHistoryPath returns the path of the default history file.
func DefaultHistoryPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions restricts path to owner read/write.
// History files can hold anything the user typed.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file at path, or the default location when path is
// empty. A missing default file yields the defaults; a missing explicit
// file is an error. Environment overrides are applied before validation.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		defaultPath, err := ConfigPathTOML()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	if err := LoadTOML(cfg, path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path over cfg. Keys cfg does not know
// are rejected.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// SaveTOML writes cfg to path, creating parent directories.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	return nil
}

// PrepareHistoryFile creates the history file's directory and restricts
// an existing file to owner-only permissions.
func (c *Config) PrepareHistoryFile() error {
	if !c.History.Enabled || c.History.File == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.History.File), 0700); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	if err := ensureSecurePermissions(c.History.File); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// HistoryFile returns the history path, or "" when history is disabled.
func (c *Config) HistoryFile() string {
	if !c.History.Enabled {
		return ""
	}
	return c.History.File
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Shell.Name == "" {
		errs = append(errs, ValidationError{Field: "shell.name", Message: "must not be empty"})
	} else if strings.IndexFunc(c.Shell.Name, unicode.IsSpace) >= 0 {
		errs = append(errs, ValidationError{
			Field:   "shell.name",
			Message: fmt.Sprintf("invalid name '%s', must not contain whitespace", c.Shell.Name),
		})
	}

	if c.Shell.Commands != "" {
		switch strings.ToLower(filepath.Ext(c.Shell.Commands)) {
		case ".yaml", ".yml", ".toml":
		default:
			errs = append(errs, ValidationError{
				Field:   "shell.commands",
				Message: fmt.Sprintf("unsupported file type '%s', must be .yaml, .yml or .toml", c.Shell.Commands),
			})
		}
	}

	if c.History.Enabled && c.History.File == "" {
		errs = append(errs, ValidationError{Field: "history.file", Message: "must be set when history is enabled"})
	}

	if _, err := term.ParseColorMode(c.UI.Color); err != nil {
		errs = append(errs, ValidationError{
			Field:   "ui.color",
			Message: fmt.Sprintf("invalid color mode '%s', must be one of: auto, always, never", c.UI.Color),
		})
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Shell.Name == "" {
		c.Shell.Name = defaults.Shell.Name
	}
	if c.History.Enabled && c.History.File == "" {
		if path, err := DefaultHistoryPath(); err == nil {
			c.History.File = path
		}
	}
	if c.UI.Color == "" {
		c.UI.Color = defaults.UI.Color
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

// ColorMode returns the parsed ui.color setting.
func (c *Config) ColorMode() term.ColorMode {
	mode, err := term.ParseColorMode(c.UI.Color)
	if err != nil {
		return term.ColorAuto
	}
	return mode
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides:
//   - RIGRUN_REPL_PROMPT: overrides shell.prompt
//   - RIGRUN_REPL_HISTORY: overrides history.file; "off" disables history
//   - RIGRUN_REPL_LOG_LEVEL: overrides log.level
//   - NO_COLOR: forces ui.color to never
func (c *Config) ApplyEnvOverrides() {
	if prompt := os.Getenv("RIGRUN_REPL_PROMPT"); prompt != "" {
		c.Shell.Prompt = prompt
	}

	if history := os.Getenv("RIGRUN_REPL_HISTORY"); history != "" {
		if strings.EqualFold(history, "off") {
			c.History.Enabled = false
			c.History.File = ""
		} else {
			c.History.Enabled = true
			c.History.File = history
		}
	}

	if level := os.Getenv("RIGRUN_REPL_LOG_LEVEL"); level != "" {
		c.Log.Level = strings.ToLower(level)
	}

	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.UI.Color = string(term.ColorNever)
	}
}
