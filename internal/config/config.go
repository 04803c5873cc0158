// Package config handles loading and managing evdash configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the evdash configuration.
type Config struct {
	Data   DataConfig   `toml:"data"`
	Server ServerConfig `toml:"server"`

	// Computed at load time, not from the config file.
	HomeDir string `toml:"-"`
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	DataDir      string `toml:"data_dir"`
	DatabaseFile string `toml:"database_file"` // overrides the default path inside data_dir
}

// ServerConfig holds HTTP API server configuration.
type ServerConfig struct {
	BindAddr string `toml:"bind_addr"` // default: 127.0.0.1
	APIPort  int    `toml:"api_port"`  // default: 8080
	APIKey   string `toml:"api_key"`   // empty disables authentication
}

// DefaultHome returns the default evdash home directory.
// Respects the EVDASH_HOME environment variable.
func DefaultHome() string {
	if h := os.Getenv("EVDASH_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evdash"
	}
	return filepath.Join(home, ".evdash")
}

// Load reads the configuration from the specified file. If path is empty,
// the default location (<home>/config.toml) is used; if home is empty it
// falls back to DefaultHome. The config file is optional — defaults apply
// when it doesn't exist.
func Load(path, home string) (*Config, error) {
	if home == "" {
		home = DefaultHome()
	}
	if path == "" {
		path = filepath.Join(home, "config.toml")
	}

	cfg := &Config{
		HomeDir: home,
		Data: DataConfig{
			DataDir: home,
		},
		Server: ServerConfig{
			BindAddr: "127.0.0.1",
			APIPort:  8080,
		},
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Data.DataDir = expandPath(cfg.Data.DataDir)
	cfg.Data.DatabaseFile = expandPath(cfg.Data.DatabaseFile)

	return cfg, nil
}

// DatabasePath returns the path to the DuckDB database file.
func (c *Config) DatabasePath() string {
	if c.Data.DatabaseFile != "" {
		return c.Data.DatabaseFile
	}
	return filepath.Join(c.Data.DataDir, "evdash.duckdb")
}

// ConfigFilePath returns the path of the config file for this home dir.
func (c *Config) ConfigFilePath() string {
	return filepath.Join(c.HomeDir, "config.toml")
}

// EnsureHomeDir creates the home directory if it doesn't exist.
func (c *Config) EnsureHomeDir() error {
	return os.MkdirAll(c.HomeDir, 0o755)
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
