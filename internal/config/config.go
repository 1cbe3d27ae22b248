// Package config handles configuration loading and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Default values.
const (
	DefaultLogLevel             = "info"
	DefaultLogFormat            = "text"
	DefaultSubmitTimeoutSeconds = 10
	DefaultResetAfterCreate     = true
)

// Config holds the full configuration for todo.
type Config struct {
	// Paths
	DBPath  string `toml:"db_path"`
	LogFile string `toml:"log_file"`

	// Logging
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Form behaviour
	SubmitTimeoutSeconds int  `toml:"submit_timeout_seconds"`
	ResetAfterCreate     bool `toml:"reset_after_create"`

	// Timezone used to split and join due dates. Empty means local time.
	Timezone string `toml:"timezone"`

	// Source is the config file that was read, if any
	Source string `toml:"-"`
}

// SubmitTimeout returns the submission deadline as a duration
func (c *Config) SubmitTimeout() time.Duration {
	return time.Duration(c.SubmitTimeoutSeconds) * time.Second
}

// Location resolves Timezone
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. Config file (path, or the user config file when path is empty)
// 3. Environment variables
func Load(path string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	explicit := path != ""
	if !explicit {
		path = userConfigFile()
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("loading config file %s: %w", path, err)
			}
		} else {
			cfg.Source = path
		}
	}

	loadFromEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.SubmitTimeoutSeconds = DefaultSubmitTimeoutSeconds
	cfg.ResetAfterCreate = DefaultResetAfterCreate
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TODO_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("TODO_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TODO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TODO_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("TODO_SUBMIT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SubmitTimeoutSeconds = n
		}
	}
}

func validate(cfg *Config) error {
	if cfg.SubmitTimeoutSeconds <= 0 {
		return fmt.Errorf("submit_timeout_seconds must be positive, got %d", cfg.SubmitTimeoutSeconds)
	}
	switch cfg.LogFormat {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log_format must be text, json or logfmt, got %q", cfg.LogFormat)
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	return nil
}

// userConfigFile returns $XDG_CONFIG_HOME/todo/config.toml or the OS equivalent
func userConfigFile() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		dir, err = os.UserConfigDir()
		if err != nil {
			return ""
		}
	}
	return filepath.Join(dir, "todo", "config.toml")
}

// StateDir returns the directory for logs and other runtime state
func StateDir() (string, error) {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "todo"), nil
}
