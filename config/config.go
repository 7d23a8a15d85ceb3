// Package config loads the devflow server configuration.
//
// Configuration is read from a YAML (.yaml, .yml) or TOML (.toml) file and
// layered over Default(). Everything machine-specific (binary locations,
// toolchain roots, environment overlays) lives here rather than in the tools.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/zero-day-ai/devflow/toolerr"
)

// FileNames are the names Load looks for when given a directory, in order.
var FileNames = []string{"devflow.yaml", "devflow.yml", "devflow.toml"}

// Config represents a devflow configuration file.
type Config struct {
	Server ServerConfig `yaml:"server" toml:"server"`

	// Repository is an optional git work tree the server is bound to.
	// When set, startup fails unless it is a valid repository.
	Repository string `yaml:"repository,omitempty" toml:"repository"`

	Log       LogConfig         `yaml:"log" toml:"log"`
	Binaries  BinariesConfig    `yaml:"binaries" toml:"binaries"`
	Toolchain ToolchainConfig   `yaml:"toolchain" toml:"toolchain"`
	Exec      ExecConfig        `yaml:"exec" toml:"exec"`
	Publish   PublishConfig     `yaml:"publish" toml:"publish"`
	Compress  CompressConfig    `yaml:"compress" toml:"compress"`
	Guards    map[string]string `yaml:"guards,omitempty" toml:"guards"`
}

// ServerConfig is the identity advertised to clients.
type ServerConfig struct {
	Name    string `yaml:"name" toml:"name"`
	Version string `yaml:"version" toml:"version"`
}

// LogConfig controls the structured logger. Logs always go to stderr.
type LogConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // text or json
}

// BinariesConfig names the external executables the tools run.
type BinariesConfig struct {
	Git    string `yaml:"git" toml:"git"`
	Az     string `yaml:"az" toml:"az"`
	Dotnet string `yaml:"dotnet" toml:"dotnet"`
}

// ToolchainConfig supplies build-toolchain locations to child processes.
type ToolchainConfig struct {
	// DotnetRoot is exported to child processes as DOTNET_ROOT when set.
	DotnetRoot string `yaml:"dotnet_root,omitempty" toml:"dotnet_root"`

	// Env is overlaid on the inherited environment of every command.
	Env map[string]string `yaml:"env,omitempty" toml:"env"`
}

// ExecConfig tunes the command runner.
type ExecConfig struct {
	// Timeout bounds each command, as a Go duration string.
	// Empty or "0" means commands may run indefinitely.
	Timeout string `yaml:"timeout,omitempty" toml:"timeout"`
}

// PublishConfig tunes code_publish.
type PublishConfig struct {
	Configuration string `yaml:"configuration" toml:"configuration"`

	// Env is overlaid on the command environment of dotnet publish only,
	// after Toolchain.Env.
	Env map[string]string `yaml:"env,omitempty" toml:"env"`
}

// CompressConfig tunes compress_code.
type CompressConfig struct {
	ArchiveName string `yaml:"archive_name" toml:"archive_name"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "Specific workflow server",
			Version: "0.1.0",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Binaries: BinariesConfig{
			Git:    "git",
			Az:     "az",
			Dotnet: "dotnet",
		},
		Publish: PublishConfig{
			Configuration: "Release",
		},
		Compress: CompressConfig{
			ArchiveName: "api.zip",
		},
	}
}

// Load reads a configuration file and layers it over Default().
// If path is a directory, Load looks for one of FileNames inside it.
// The file extension selects the format; anything but .toml is parsed as YAML.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, configError("failed to stat path", err)
	}

	configPath := path
	if info.IsDir() {
		configPath = ""
		for _, name := range FileNames {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			return nil, configError(fmt.Sprintf("no %s found in %s", strings.Join(FileNames, ", "), path), nil)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, configError("failed to read config file", err)
	}

	cfg := Default()
	if strings.EqualFold(filepath.Ext(configPath), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, configError("failed to parse config file", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, configError("failed to parse config file", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at call time.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return configError("invalid log.level", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return configError(fmt.Sprintf("invalid log.format %q (want text or json)", c.Log.Format), nil)
	}
	if _, err := c.CommandTimeout(); err != nil {
		return configError("invalid exec.timeout", err)
	}
	name := c.Compress.ArchiveName
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) {
		return configError(fmt.Sprintf("invalid compress.archive_name %q (want a bare file name)", name), nil)
	}
	if c.Binaries.Git == "" || c.Binaries.Az == "" || c.Binaries.Dotnet == "" {
		return configError("binaries.git, binaries.az and binaries.dotnet must not be empty", nil)
	}
	return nil
}

// CommandTimeout parses Exec.Timeout. Zero means no timeout.
func (c *Config) CommandTimeout() (time.Duration, error) {
	if c.Exec.Timeout == "" || c.Exec.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Exec.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

// CommandEnv returns the environment overlay every command runs with.
func (c *Config) CommandEnv() map[string]string {
	env := make(map[string]string, len(c.Toolchain.Env)+1)
	for k, v := range c.Toolchain.Env {
		env[k] = v
	}
	if c.Toolchain.DotnetRoot != "" {
		env["DOTNET_ROOT"] = c.Toolchain.DotnetRoot
	}
	return env
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

func configError(msg string, cause error) error {
	err := toolerr.New("config", "load", toolerr.ErrCodeConfig, msg).
		WithClass(toolerr.ErrorClassInfrastructure)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}
