package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	Precision PrecisionConfig
	Rules     RulesConfig
	Eval      EvalConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// PrecisionConfig bounds numeric evaluation, in bits.
type PrecisionConfig struct {
	Default uint `envconfig:"SPECFN_DEFAULT_PRECISION" default:"53"`
	Max     uint `envconfig:"SPECFN_MAX_PRECISION" default:"8192"`
}

// RulesConfig points at an optional YAML or TOML rule file loaded on top of
// the built-in rules.
type RulesConfig struct {
	File string `envconfig:"SPECFN_RULES_FILE"`
}

// EvalConfig holds dispatcher settings.
type EvalConfig struct {
	MaxRewriteDepth  int  `envconfig:"SPECFN_MAX_REWRITE_DEPTH" default:"64"`
	SerializeNumeric bool `envconfig:"SPECFN_SERIALIZE_NUMERIC" default:"false"`
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
	if err := cfg.Validate(); err != nil {
		return nil, err
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
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Precision: PrecisionConfig{
			Default: 53,
			Max:     8192,
		},
		Eval: EvalConfig{
			MaxRewriteDepth: 64,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	switch {
	case c.Precision.Default == 0:
		return fmt.Errorf("%w: default precision must be positive", ErrInvalidConfig)
	case c.Precision.Max != 0 && c.Precision.Max < c.Precision.Default:
		return fmt.Errorf("%w: max precision %d below default %d", ErrInvalidConfig, c.Precision.Max, c.Precision.Default)
	case c.Eval.MaxRewriteDepth <= 0:
		return fmt.Errorf("%w: rewrite depth must be positive", ErrInvalidConfig)
	case c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0):
		return fmt.Errorf("%w: rate limit needs positive rps and burst", ErrInvalidConfig)
	}
	if c.Rules.File != "" {
		switch strings.ToLower(filepath.Ext(c.Rules.File)) {
		case ".yaml", ".yml", ".toml":
		default:
			return fmt.Errorf("%w: rule file %q must be .yaml, .yml or .toml", ErrInvalidConfig, c.Rules.File)
		}
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}
