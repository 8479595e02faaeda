// Package config handles configuration loading and validation for wlkbd.
//
// Configuration is optional: a client that only consumes
// compositor-supplied keymaps needs none of it. The file selects where
// the keymap comes from, the compose behavior, and logging.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"wlkbd/internal/logging"
	"wlkbd/xkb"
)

// Keymap sources.
const (
	// SourceCompositor loads the keymap from compositor notifications.
	SourceCompositor = "compositor"
	// SourceNames compiles the keymap from the configured RMLVO names
	// and ignores compositor keymaps.
	SourceNames = "names"
	// SourceLocaled queries systemd-localed for the RMLVO names and
	// ignores compositor keymaps.
	SourceLocaled = "localed"
)

// Config is the root configuration.
type Config struct {
	Keymap  KeymapConfig  `toml:"keymap"`
	Compose ComposeConfig `toml:"compose"`
	Logging LoggingConfig `toml:"logging"`
}

// KeymapConfig selects where the keymap comes from.
type KeymapConfig struct {
	// Source is one of "compositor", "names", "localed".
	Source string `toml:"source"`

	// RMLVO names, used when Source is "names". Empty fields select
	// engine defaults.
	Rules   string `toml:"rules"`
	Model   string `toml:"model"`
	Layout  string `toml:"layout"`
	Variant string `toml:"variant"`
	Options string `toml:"options"`
}

// ComposeConfig controls dead-key composition.
type ComposeConfig struct {
	// Enabled turns composition on. Default true.
	Enabled bool `toml:"enabled"`

	// Locale overrides the environment-derived compose locale.
	Locale string `toml:"locale"`

	// File is the compose file to watch for changes; empty selects
	// $XCOMPOSEFILE or ~/.XCompose.
	File string `toml:"file"`

	// Watch reloads the compose session when File changes on disk.
	Watch bool `toml:"watch"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	// Level is debug, info, warn, or error.
	Level string `toml:"level"`

	// Format is text or json.
	Format string `toml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Keymap:  KeymapConfig{Source: SourceCompositor},
		Compose: ComposeConfig{Enabled: true},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// DefaultPath returns the platform default configuration file path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "wlkbd", "config.toml")
}

// Load reads the configuration file at path, applies environment
// overrides, and validates the result. A missing file yields the
// defaults (with overrides applied), not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides applies the engine's conventional environment
// variables over the file contents: XKB_DEFAULT_{RULES,MODEL,LAYOUT,
// VARIANT,OPTIONS} for the RMLVO fields and XCOMPOSEFILE for the
// compose file.
func (c *Config) ApplyEnvOverrides() {
	overrides := []struct {
		env  string
		dest *string
	}{
		{"XKB_DEFAULT_RULES", &c.Keymap.Rules},
		{"XKB_DEFAULT_MODEL", &c.Keymap.Model},
		{"XKB_DEFAULT_LAYOUT", &c.Keymap.Layout},
		{"XKB_DEFAULT_VARIANT", &c.Keymap.Variant},
		{"XKB_DEFAULT_OPTIONS", &c.Keymap.Options},
		{"XCOMPOSEFILE", &c.Compose.File},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dest = v
		}
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Keymap.Source {
	case SourceCompositor, SourceNames, SourceLocaled:
	case "":
		c.Keymap.Source = SourceCompositor
	default:
		return fmt.Errorf("keymap.source: unknown source %q", c.Keymap.Source)
	}

	if err := c.RuleNames().Validate(); err != nil {
		return fmt.Errorf("keymap: %w", err)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		return fmt.Errorf("logging.format: %w", err)
	}
	return nil
}

// RuleNames returns the configured RMLVO names.
func (c *Config) RuleNames() xkb.RuleNames {
	return xkb.RuleNames{
		Rules:   c.Keymap.Rules,
		Model:   c.Keymap.Model,
		Layout:  c.Keymap.Layout,
		Variant: c.Keymap.Variant,
		Options: c.Keymap.Options,
	}
}

// LoggerConfig builds the logging configuration. Validate must have
// succeeded.
func (c *Config) LoggerConfig() *logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level, _ = logging.ParseLevel(c.Logging.Level)
	cfg.Format, _ = logging.ParseFormat(c.Logging.Format)
	return cfg
}
