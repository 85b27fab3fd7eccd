package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all shell configuration.
type Config struct {
	Server    ServerConfig
	App       AppConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds host surface configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"4780"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// AppConfig holds packaged application configuration.
type AppConfig struct {
	ManifestPath string `envconfig:"MANIFEST" default:"vessel.conf.json"`
	DataDir      string `envconfig:"DATA_DIR" default:""`
	Development  bool   `envconfig:"DEV" default:"false"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "4780",
			Host: "127.0.0.1",
		},
		App: AppConfig{
			ManifestPath: "vessel.conf.json",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
