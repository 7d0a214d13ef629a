// Copyright © 2026 ソニーレベル <C7kali3@gmail.com>
// Configuration types and defaults

package config

const (
	// AppName is used for the config directory and env prefix
	AppName = "ktp"
	// EnvPrefix prefixes environment overrides (KTP_PYTHON, KTP_RUNNER_PTY, ...)
	EnvPrefix = "KTP"
	// LocalConfigFile is looked up in the working directory
	LocalConfigFile = ".ktp.yaml"
	// ConfigFileName is looked up in the user config directory
	ConfigFileName = "config.yaml"
)

// Config is the effective ktp configuration
type Config struct {
	ProjectsRoot string       `mapstructure:"projects_root" yaml:"projects_root"`
	TempRoot     string       `mapstructure:"temp_root" yaml:"temp_root"`
	Python       string       `mapstructure:"python" yaml:"python"`
	Manifest     string       `mapstructure:"manifest" yaml:"manifest"`
	Entry        EntryConfig  `mapstructure:"entry" yaml:"entry"`
	Server       ServerConfig `mapstructure:"server" yaml:"server"`
	Runner       RunnerConfig `mapstructure:"runner" yaml:"runner"`
	Log          LogConfig    `mapstructure:"log" yaml:"log"`
}

// EntryConfig lists candidate entry files
type EntryConfig struct {
	Script []string `mapstructure:"script" yaml:"script"`
	Server []string `mapstructure:"server" yaml:"server"`
}

// ServerConfig controls server-mode detection and launch
type ServerConfig struct {
	Marker       string   `mapstructure:"marker" yaml:"marker"`
	Module       string   `mapstructure:"module" yaml:"module"`
	ReadyPattern string   `mapstructure:"ready_pattern" yaml:"ready_pattern"`
	Env          []string `mapstructure:"env" yaml:"env"`
}

// RunnerConfig controls script execution
type RunnerConfig struct {
	PTY bool `mapstructure:"pty" yaml:"pty"`
}

// LogConfig controls diagnostics
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// LoadOptions selects where configuration comes from
type LoadOptions struct {
	ConfigFile string // Explicit file (--config); must exist when set
	ConfigDir  string // Overrides the user config directory
	WorkDir    string // Directory searched for .ktp.yaml (default: current)
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		ProjectsRoot: "projects",
		TempRoot:     "",
		Python:       "",
		Manifest:     "requirements.txt",
		Entry: EntryConfig{
			Script: []string{"main.py"},
			Server: []string{"main.py", "app.py", "streamlit_app.py"},
		},
		Server: ServerConfig{
			Marker:       "streamlit",
			Module:       "streamlit",
			ReadyPattern: `Local URL:\s*(\S+)`,
			Env: []string{
				"STREAMLIT_BROWSER_GATHER_USAGE_STATS=false",
				"STREAMLIT_SERVER_HEADLESS=false",
			},
		},
		Runner: RunnerConfig{PTY: false},
		Log:    LogConfig{Level: "info"},
	}
}
