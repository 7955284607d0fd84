// ABOUTME: Configuration loading and parsing for the simulator server
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

// Package config loads the simulator server's YAML configuration.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete simulator server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Database  DatabaseConfig  `yaml:"database"`
	Web       WebConfig       `yaml:"web"`
	Logging   LoggingConfig   `yaml:"logging"`
	Notify    NotifyConfig    `yaml:"notify"`
}

// ServerConfig holds server address and shutdown configuration.
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`

	ShutdownTimeout    time.Duration `yaml:"-"`
	ShutdownTimeoutRaw string        `yaml:"shutdown_timeout"`
}

// TailscaleConfig holds optional tsnet listener configuration.
type TailscaleConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Hostname  string `yaml:"hostname"`
	AuthKey   string `yaml:"auth_key"`
	StateDir  string `yaml:"state_dir"`
	Ephemeral bool   `yaml:"ephemeral"`
	HTTPS     bool   `yaml:"https"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WebConfig holds the browser gateway configuration.
type WebConfig struct {
	// UIDir is the directory holding the bundled frontend; empty disables
	// static serving (API endpoints still work).
	UIDir string `yaml:"ui_dir"`
	// SessionURLBase is the externally reachable base for operator links,
	// e.g. "http://localhost:4200". Session URLs append /session/{id}.
	SessionURLBase string `yaml:"session_url_base"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NotifyConfig holds operator notification configuration.
type NotifyConfig struct {
	Matrix MatrixConfig `yaml:"matrix"`
}

// MatrixConfig holds the Matrix announcement room configuration.
type MatrixConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Homeserver  string `yaml:"homeserver"`
	UserID      string `yaml:"user_id"`
	AccessToken string `yaml:"access_token"`
	RoomID      string `yaml:"room_id"`
}

// Default returns a runnable local configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCAddr:        "localhost:50051",
			HTTPAddr:        "localhost:8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "simulator.db",
		},
		Web: WebConfig{
			SessionURLBase: "http://localhost:4200",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed
// Config. A missing file yields Default(). Environment variables in the
// format ${VAR_NAME} are expanded; duration strings are parsed after
// unmarshaling.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding
// environment variable values. Unset variables become empty strings.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present.
func (c *Config) Validate() error {
	if !c.Tailscale.Enabled {
		if c.Server.GRPCAddr == "" {
			return fmt.Errorf("server.grpc_addr is required (or enable tailscale)")
		}
		if c.Server.HTTPAddr == "" {
			return fmt.Errorf("server.http_addr is required (or enable tailscale)")
		}
	}

	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Notify.Matrix.Enabled {
		if c.Notify.Matrix.Homeserver == "" || c.Notify.Matrix.AccessToken == "" || c.Notify.Matrix.RoomID == "" {
			return fmt.Errorf("notify.matrix requires homeserver, access_token, and room_id when enabled")
		}
	}

	return nil
}

// parseDurations converts raw duration strings into time.Duration values.
func parseDurations(cfg *Config) error {
	if cfg.Server.ShutdownTimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Server.ShutdownTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing shutdown_timeout %q: %w", cfg.Server.ShutdownTimeoutRaw, err)
		}
		cfg.Server.ShutdownTimeout = d
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 5 * time.Second
	}
	return nil
}
