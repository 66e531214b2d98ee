// Package config provides configuration management for fira.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the default config file name.
const ConfigFileName = "fira.yaml"

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig controls the structured logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// Config represents the fira configuration.
type Config struct {
	// BaseDir is the directory holding project trees.
	BaseDir string `yaml:"base_dir"`

	// WIPConfigPath is the wip-config.json location.
	WIPConfigPath string `yaml:"wip_config"`

	// CFDDataPath is the cfd-data.json location.
	CFDDataPath string `yaml:"cfd_data"`

	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseDir:       "projects",
		WIPConfigPath: "wip-config.json",
		CFDDataPath:   "cfd-data.json",
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadFrom loads the config from a specific path. A missing file yields
// the defaults; file values are merged over them.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Load loads the config from the default location.
func Load() (*Config, error) {
	return LoadFrom(ConfigFileName)
}

// Save writes the config to a specific path.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// ApplyEnvVars applies FIRA_* environment overrides on top of the loaded
// values. Returns the names of the variables that took effect.
func (c *Config) ApplyEnvVars() []string {
	var applied []string

	set := func(name string, apply func(string)) {
		if v := os.Getenv(name); v != "" {
			apply(v)
			applied = append(applied, name)
		}
	}

	set("FIRA_BASE_DIR", func(v string) { c.BaseDir = v })
	set("FIRA_WIP_CONFIG", func(v string) { c.WIPConfigPath = v })
	set("FIRA_CFD_DATA", func(v string) { c.CFDDataPath = v })
	set("FIRA_HOST", func(v string) { c.Server.Host = v })
	set("FIRA_PORT", func(v string) {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	})
	set("FIRA_LOG_LEVEL", func(v string) { c.Log.Level = v })
	set("FIRA_LOG_FORMAT", func(v string) { c.Log.Format = v })

	return applied
}
