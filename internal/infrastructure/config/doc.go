// Package config provides 12-factor configuration for the evaluation service.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host)
//   - Logging: Log level and output format
//   - Precision: default and maximum working precision in bits
//   - Rules: optional rule file
//   - Eval: rewrite depth and backend serialization
//   - RateLimit: Per-IP rate limiting configuration
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s\n", cfg.Server.Addr())
//
// Environment Variables:
//   - PORT, HOST
//   - LOG_LEVEL, LOG_DEV
//   - SPECFN_DEFAULT_PRECISION, SPECFN_MAX_PRECISION
//   - SPECFN_RULES_FILE
//   - SPECFN_MAX_REWRITE_DEPTH, SPECFN_SERIALIZE_NUMERIC
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
package config
