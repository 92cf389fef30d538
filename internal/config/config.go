// Package config loads inventario settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// AppID names the per-user data directory.
const AppID = "inventario"

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "inventario.db"

// FileName is the config file name inside the data directory.
const FileName = "config.yaml"

// Config holds the complete configuration.
type Config struct {
	DataDir   string `yaml:"data_dir"   env:"INVENTARIO_DATA_DIR"`
	ExportDir string `yaml:"export_dir" env:"INVENTARIO_EXPORT_DIR"`
	Addr      string `yaml:"addr"       env:"INVENTARIO_ADDR"`
	LogLevel  string `yaml:"log_level"  env:"INVENTARIO_LOG_LEVEL"`
	LogPath   string `yaml:"log_path"   env:"INVENTARIO_LOG_PATH"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:  DefaultDataDir(),
		Addr:     "127.0.0.1:8765",
		LogLevel: "info",
	}
}

// DefaultDataDir returns the per-app data directory for this platform.
func DefaultDataDir() string {
	if runtime.GOOS == "linux" {
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, AppID)
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", AppID)
		}
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, AppID)
	}
	return AppID
}

// DefaultPath returns the config file location. INVENTARIO_CONFIG overrides it.
func DefaultPath() string {
	if p := os.Getenv("INVENTARIO_CONFIG"); p != "" {
		return p
	}
	dir := DefaultDataDir()
	if d := os.Getenv("INVENTARIO_DATA_DIR"); d != "" {
		dir = d
	}
	return filepath.Join(dir, FileName)
}

// Load reads path (which may not exist) over the defaults and then applies
// environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir()
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// Validate returns an error if the configuration contains invalid values.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q: must be one of debug, info, warn, error", c.LogLevel)
	}

	host, _, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return fmt.Errorf("invalid addr %q: %w", c.Addr, err)
	}
	if host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			return fmt.Errorf("invalid addr %q: must be a loopback address", c.Addr)
		}
	}
	return nil
}

// DatabasePath returns the database file path.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, DatabaseFile)
}
