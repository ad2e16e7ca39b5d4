package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())

	// Precision config
	assert.Equal(t, uint(53), cfg.Precision.Default)
	assert.Equal(t, uint(8192), cfg.Precision.Max)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Eval config
	assert.Equal(t, 64, cfg.Eval.MaxRewriteDepth)
	assert.Empty(t, cfg.Rules.File)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.NoError(t, cfg.Validate())
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, *Default(), *cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                     "9000",
		"HOST":                     "127.0.0.1",
		"LOG_LEVEL":                "debug",
		"LOG_DEV":                  "true",
		"SPECFN_DEFAULT_PRECISION": "128",
		"SPECFN_MAX_PRECISION":     "1024",
		"SPECFN_RULES_FILE":        "/etc/specfn/rules.yaml",
		"SPECFN_MAX_REWRITE_DEPTH": "16",
		"SPECFN_SERIALIZE_NUMERIC": "true",
		"RATE_LIMIT_RPS":           "500",
		"RATE_LIMIT_BURST":         "1000",
		"RATE_LIMIT_ENABLED":       "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, uint(128), cfg.Precision.Default)
	assert.Equal(t, uint(1024), cfg.Precision.Max)
	assert.Equal(t, "/etc/specfn/rules.yaml", cfg.Rules.File)
	assert.Equal(t, 16, cfg.Eval.MaxRewriteDepth)
	assert.True(t, cfg.Eval.SerializeNumeric)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Verify overridden values
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)

	// Verify default values still apply
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, uint(53), cfg.Precision.Default)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unparsable precision", map[string]string{"SPECFN_DEFAULT_PRECISION": "lots"}},
		{"max below default", map[string]string{"SPECFN_DEFAULT_PRECISION": "256", "SPECFN_MAX_PRECISION": "128"}},
		{"zero depth", map[string]string{"SPECFN_MAX_REWRITE_DEPTH": "0"}},
		{"rule file extension", map[string]string{"SPECFN_RULES_FILE": "rules.json"}},
		{"zero burst", map[string]string{"RATE_LIMIT_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)

			// LoadOrDefault falls back rather than failing.
			assert.Equal(t, *Default(), *LoadOrDefault())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unbounded max", func(c *Config) { c.Precision.Max = 0 }, false},
		{"zero default", func(c *Config) { c.Precision.Default = 0 }, true},
		{"toml rules", func(c *Config) { c.Rules.File = "extra.TOML" }, false},
		{"disabled limiter ignores rps", func(c *Config) {
			c.RateLimit.Enabled = false
			c.RateLimit.RequestsPerSecond = 0
		}, false},
		{"enabled limiter needs rps", func(c *Config) { c.RateLimit.RequestsPerSecond = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoggingConfig(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		dev       string
		wantLevel string
		wantDev   bool
	}{
		{name: "default values", wantLevel: "info"},
		{name: "debug level", level: "debug", wantLevel: "debug"},
		{name: "development mode", dev: "true", wantLevel: "info", wantDev: true},
		{name: "error level production", level: "error", dev: "false", wantLevel: "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.level != "" {
				t.Setenv("LOG_LEVEL", tt.level)
			}
			if tt.dev != "" {
				t.Setenv("LOG_DEV", tt.dev)
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantLevel, cfg.Logging.Level)
			assert.Equal(t, tt.wantDev, cfg.Logging.Development)
		})
	}
}
