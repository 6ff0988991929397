package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds the compiler's optional settings. The zero-flag,
// zero-file behaviour is Default().
type Config struct {
	Input       InputConfig       `toml:"input" yaml:"input"`
	Output      OutputConfig      `toml:"output" yaml:"output"`
	Log         LogConfig         `toml:"log" yaml:"log"`
	Run         RunConfig         `toml:"run" yaml:"run"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics" yaml:"diagnostics"`
}

type InputConfig struct {
	MaxSize int64 `toml:"max_size" yaml:"max_size"`
}

// OutputConfig selects where assembly is written. An empty path means stdout.
type OutputConfig struct {
	Path string `toml:"path" yaml:"path"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// RunConfig bounds programs executed on the reference VM.
type RunConfig struct {
	GasLimit int `toml:"gas_limit" yaml:"gas_limit"`
}

type DiagnosticsConfig struct {
	Color bool `toml:"color" yaml:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Input:       InputConfig{MaxSize: 16 * 1024 * 1024},
		Log:         LogConfig{Level: "warn", Format: "text"},
		Run:         RunConfig{GasLimit: 10_000_000},
		Diagnostics: DiagnosticsConfig{Color: true},
	}
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case ".toml", "":
		md, err := toml.Decode(string(content), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown config key %q", undecoded[0].String())
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.Log.Format)
	}
	if c.Run.GasLimit <= 0 {
		return fmt.Errorf("run.gas_limit must be positive, got %d", c.Run.GasLimit)
	}
	if c.Input.MaxSize <= 0 {
		return fmt.Errorf("input.max_size must be positive, got %d", c.Input.MaxSize)
	}
	return nil
}
