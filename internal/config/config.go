package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
)

// DefaultConfigFile is the file name looked up when no --config is given.
const DefaultConfigFile = "docrefactor.yaml"

// Config represents the application configuration
type Config struct {
	Source        string        `yaml:"source"`           // rustdoc output directory
	Output        string        `yaml:"output,omitempty"` // empty means rewrite in place
	Include       []string      `yaml:"include,omitempty"`
	Exclude       []string      `yaml:"exclude,omitempty"`
	MaxConcurrent int           `yaml:"max_concurrent,omitempty"`
	Fetch         FetchConfig   `yaml:"fetch"`
	Watch         WatchConfig   `yaml:"watch"`
	Serve         ServeConfig   `yaml:"serve"`
	Metrics       MetricsConfig `yaml:"metrics"`
}

// FetchConfig controls retrieval of inherited pages.
type FetchConfig struct {
	Timeout        string      `yaml:"timeout,omitempty"`
	MaxRedirects   int         `yaml:"max_redirects,omitempty"`
	MaxBodyBytes   int64       `yaml:"max_body_bytes,omitempty"`
	UserAgent      string      `yaml:"user_agent,omitempty"`
	AllowCrossHost bool        `yaml:"allow_cross_host"`
	Retry          RetryConfig `yaml:"retry"`
}

// RetryConfig is the raw form of retry.Policy.
type RetryConfig struct {
	Mode       string `yaml:"mode,omitempty"`
	Initial    string `yaml:"initial,omitempty"`
	Max        string `yaml:"max,omitempty"`
	MaxRetries int    `yaml:"max_retries"`
}

// WatchConfig controls the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	Refresh  string `yaml:"refresh,omitempty"` // periodic full re-run, empty disables
}

// ServeConfig controls the preview server.
type ServeConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	// .env files are optional; existing environment always wins
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Debug("Could not load .env file", "error", err)
	}
	_ = godotenv.Load(".env.local")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, derrors.ConfigNotFound(configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to read config file").
			WithContext("path", configPath)
	}

	return Parse(data)
}

// Parse decodes YAML content (after environment expansion), applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryConfig, derrors.SeverityFatal, "failed to unmarshal config")
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{Source: "./target/doc", Fetch: FetchConfig{AllowCrossHost: true, Retry: RetryConfig{MaxRetries: -1}}}
	ApplyDefaults(cfg)
	return cfg
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return derrors.InternalError("failed to marshal default config", err)
	}
	header := "# docrefactor configuration\n# Environment variables (${VAR}) are expanded before parsing.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
		return derrors.Wrap(err, derrors.CategoryFileSystem, derrors.SeverityFatal, "failed to write config file").
			WithContext("path", configPath)
	}
	return nil
}

// Duration parses a duration field, returning fallback when empty or invalid.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
