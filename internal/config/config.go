package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the config file nor the environment set a value
const (
	DefaultServerURL = "http://localhost:8000"
	DefaultLogLevel  = "info"
	DefaultLanguage  = "de"
)

var (
	validLogLevels = []string{"debug", "info", "warn", "error"}
	validLanguages = []string{"de", "en"}
)

// ServerConfig describes the checklist backend
type ServerConfig struct {
	URL string `yaml:"url" env:"CHECKLIST_SERVER_URL"`
}

// LoggingConfig controls the CLI logger
type LoggingConfig struct {
	Level string `yaml:"level" env:"CHECKLIST_LOG_LEVEL"`
}

// UIConfig controls user-facing output
type UIConfig struct {
	Language string `yaml:"language" env:"CHECKLIST_LANGUAGE"`
}

// TelemetryConfig controls trace export. An empty endpoint turns it off.
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint,omitempty" env:"CHECKLIST_OTEL_ENDPOINT"`
	Disabled bool   `yaml:"disabled,omitempty" env:"CHECKLIST_OTEL_DISABLED"`
}

// Config holds the client configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	UI        UIConfig        `yaml:"ui"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// GetConfigDir returns the directory holding the config file
func GetConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, ".checklist")
}

// GetConfigPath returns the config file path
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// Default returns a configuration populated with defaults
func Default() *Config {
	cfg := &Config{}
	cfg.Server.URL = DefaultServerURL
	cfg.Logging.Level = DefaultLogLevel
	cfg.UI.Language = DefaultLanguage
	return cfg
}

// Load reads the config file if present, then applies environment overrides
func Load() (*Config, error) {
	cfg, err := readFile()
	if err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFile reads only the config file, without environment overrides.
// Use it for configurations that are saved back.
func LoadFile() (*Config, error) {
	cfg, err := readFile()
	if err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func readFile() (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(GetConfigPath())
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// no file yet
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.URL == "" {
		c.Server.URL = DefaultServerURL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.UI.Language == "" {
		c.UI.Language = DefaultLanguage
	}
}

// Save writes the configuration to the config file
func (c *Config) Save() error {
	if err := os.MkdirAll(GetConfigDir(), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigPath(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server URL cannot be empty")
	}
	if err := validateURL("server URL", c.Server.URL); err != nil {
		return err
	}

	if c.Logging.Level != "" && !contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("invalid logging level %q (expected one of %s)", c.Logging.Level, strings.Join(validLogLevels, ", "))
	}
	if c.UI.Language != "" && !contains(validLanguages, c.UI.Language) {
		return fmt.Errorf("invalid language %q (expected one of %s)", c.UI.Language, strings.Join(validLanguages, ", "))
	}
	if c.Telemetry.Endpoint != "" {
		if err := validateURL("telemetry endpoint", c.Telemetry.Endpoint); err != nil {
			return err
		}
	}

	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https, got %q", name, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", name)
	}
	return nil
}

// IsInsecure reports whether credentials would travel as plain text over the network
func (c *Config) IsInsecure() bool {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme != "http" {
		return false
	}

	host := u.Hostname()
	if host == "localhost" {
		return false
	}
	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return false
	}
	return true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
