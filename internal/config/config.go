package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Source kinds
const (
	SourceSQLite = "sqlite"
	SourceBridge = "bridge"
)

// Insight providers
const (
	InsightBackend   = "backend"
	InsightAnthropic = "anthropic"
	InsightNone      = "none"
)

// Config represents the application configuration
type Config struct {
	API     APIConfig     `json:"api"`
	Source  SourceConfig  `json:"source"`
	Session SessionConfig `json:"session"`
	Insight InsightConfig `json:"insight"`
	Log     LogConfig     `json:"log"`
}

// APIConfig holds backend connection settings
type APIConfig struct {
	BaseURL        string `json:"base_url" env:"RUNREADY_API_URL"`
	Token          string `json:"token,omitempty" env:"RUNREADY_API_TOKEN"`
	TimeoutSeconds int    `json:"timeout_seconds" env:"RUNREADY_API_TIMEOUT_SECONDS"`
}

// Timeout returns the request timeout as a duration
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SourceConfig selects where health metrics are read from
type SourceConfig struct {
	Kind      string `json:"kind" env:"RUNREADY_SOURCE"`
	DBPath    string `json:"db_path,omitempty" env:"RUNREADY_DB_PATH"`
	BridgeURL string `json:"bridge_url,omitempty" env:"RUNREADY_BRIDGE_URL"`
}

// SessionConfig holds live run simulation settings
type SessionConfig struct {
	PaceKmPerTick float64 `json:"pace_km_per_tick" env:"RUNREADY_PACE_KM_PER_TICK"`
	// Seed fixes the heart-rate walk when non-zero
	Seed uint64 `json:"seed,omitempty" env:"RUNREADY_SEED"`
}

// InsightConfig selects how post-run insights are generated
type InsightConfig struct {
	Provider string `json:"provider" env:"RUNREADY_INSIGHT_PROVIDER"`
	Model    string `json:"model,omitempty" env:"RUNREADY_INSIGHT_MODEL"`
	APIKey   string `json:"api_key,omitempty" env:"ANTHROPIC_API_KEY"`
}

// LogConfig holds logging preferences
type LogConfig struct {
	Level  string `json:"level" env:"RUNREADY_LOG_LEVEL"`
	Format string `json:"format" env:"RUNREADY_LOG_FORMAT"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://localhost:8000",
			TimeoutSeconds: 10,
		},
		Source: SourceConfig{
			Kind:      SourceSQLite,
			BridgeURL: "http://127.0.0.1:8765",
		},
		Session: SessionConfig{
			PaceKmPerTick: 0.0045,
		},
		Insight: InsightConfig{
			Provider: InsightBackend,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads ~/.runready/config.json and applies environment overrides.
// When the file is missing it returns defaults plus overrides alongside
// ErrNoConfig.
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration at path and applies environment overrides
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := ApplyEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, ErrNoConfig
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for values the file zeroed out
	defaults := DefaultConfig()
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = defaults.API.BaseURL
	}
	if cfg.API.TimeoutSeconds == 0 {
		cfg.API.TimeoutSeconds = defaults.API.TimeoutSeconds
	}
	if cfg.Source.Kind == "" {
		cfg.Source.Kind = defaults.Source.Kind
	}
	if cfg.Source.BridgeURL == "" {
		cfg.Source.BridgeURL = defaults.Source.BridgeURL
	}
	if cfg.Session.PaceKmPerTick == 0 {
		cfg.Session.PaceKmPerTick = defaults.Session.PaceKmPerTick
	}
	if cfg.Insight.Provider == "" {
		cfg.Insight.Provider = defaults.Insight.Provider
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overrides fields whose environment variable is set
func ApplyEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// Save writes the configuration to ~/.runready/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to path
func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	return SaveTo(path, &example)
}

// Validate checks that the config is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds < 0 {
		return fmt.Errorf("api.timeout_seconds must not be negative, got %d", c.API.TimeoutSeconds)
	}

	switch c.Source.Kind {
	case SourceSQLite:
	case SourceBridge:
		if c.Source.BridgeURL == "" {
			return errors.New("source.bridge_url is required when source.kind is \"bridge\"")
		}
	default:
		return fmt.Errorf("source.kind must be %q or %q, got %q", SourceSQLite, SourceBridge, c.Source.Kind)
	}

	if c.Session.PaceKmPerTick <= 0 {
		return fmt.Errorf("session.pace_km_per_tick must be positive, got %v", c.Session.PaceKmPerTick)
	}

	switch c.Insight.Provider {
	case InsightBackend, InsightNone:
	case InsightAnthropic:
		if c.Insight.APIKey == "" {
			return errors.New("insight.api_key (or ANTHROPIC_API_KEY) is required for the anthropic provider")
		}
	default:
		return fmt.Errorf("insight.provider must be %q, %q or %q, got %q",
			InsightBackend, InsightAnthropic, InsightNone, c.Insight.Provider)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".runready"), nil
}
