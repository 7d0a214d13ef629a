// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Configuration loading: defaults, YAML file, KTP_ environment

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when a loaded value cannot be used
var ErrInvalid = errors.New("invalid configuration")

// ConfigDir returns $XDG_CONFIG_HOME/ktp, falling back to ~/.config/ktp
func ConfigDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// SearchPaths returns the config files tried in order when no explicit file
// is given
func SearchPaths(opts LoadOptions) []string {
	workDir := opts.WorkDir
	if workDir == "" {
		workDir = "."
	}
	paths := []string{filepath.Join(workDir, LocalConfigFile)}

	dir := opts.ConfigDir
	if dir == "" {
		if d, err := ConfigDir(); err == nil {
			dir = d
		}
	}
	if dir != "" {
		paths = append(paths, filepath.Join(dir, ConfigFileName))
	}
	return paths
}

// Load builds the effective configuration. It returns the path of the file
// that was read, or "" when only defaults and environment apply.
func Load(opts LoadOptions) (*Config, string, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolved := ""
	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return nil, "", fmt.Errorf("config file not found: %s", opts.ConfigFile)
		}
		resolved = opts.ConfigFile
	} else {
		for _, path := range SearchPaths(opts) {
			if fileExists(path) {
				resolved = path
				break
			}
		}
	}

	if resolved != "" {
		v.SetConfigFile(resolved)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", fmt.Errorf("failed to read config %s: %w", resolved, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return &cfg, resolved, nil
}

// Validate checks values that would only fail later in a run
func (c *Config) Validate() error {
	if c.ProjectsRoot == "" {
		return fmt.Errorf("%w: projects_root cannot be empty", ErrInvalid)
	}
	if c.Manifest == "" {
		return fmt.Errorf("%w: manifest cannot be empty", ErrInvalid)
	}
	if len(c.Entry.Script) == 0 || len(c.Entry.Server) == 0 {
		return fmt.Errorf("%w: entry.script and entry.server need at least one file name", ErrInvalid)
	}
	if c.Server.Module == "" {
		return fmt.Errorf("%w: server.module cannot be empty", ErrInvalid)
	}
	if _, err := c.ReadyPattern(); err != nil {
		return fmt.Errorf("%w: server.ready_pattern: %w", ErrInvalid, err)
	}
	for _, kv := range c.Server.Env {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("%w: server.env entry %q is not KEY=VALUE", ErrInvalid, kv)
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return nil
}

// ReadyPattern compiles the server ready-signal pattern
func (c *Config) ReadyPattern() (*regexp.Regexp, error) {
	return regexp.Compile(c.Server.ReadyPattern)
}

// LogLevel parses the diagnostics level
func (c *Config) LogLevel() (log.Level, error) {
	return log.ParseLevel(c.Log.Level)
}

// Show renders the configuration as YAML
func (c *Config) Show() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(data), nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("projects_root", d.ProjectsRoot)
	v.SetDefault("temp_root", d.TempRoot)
	v.SetDefault("python", d.Python)
	v.SetDefault("manifest", d.Manifest)
	v.SetDefault("entry.script", d.Entry.Script)
	v.SetDefault("entry.server", d.Entry.Server)
	v.SetDefault("server.marker", d.Server.Marker)
	v.SetDefault("server.module", d.Server.Module)
	v.SetDefault("server.ready_pattern", d.Server.ReadyPattern)
	v.SetDefault("server.env", d.Server.Env)
	v.SetDefault("runner.pty", d.Runner.PTY)
	v.SetDefault("log.level", d.Log.Level)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
