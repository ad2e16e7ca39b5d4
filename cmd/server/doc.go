// Package main is the entry point for the specfn evaluation server.
//
// The server hosts the special-function dispatcher behind a small JSON API:
//
//	client → POST /v1/evaluate → rules → custom → symbolic → numeric
//
// The server provides:
//   - Expression evaluation at a requested precision
//   - Function catalog listing
//   - Prometheus metrics on /metrics
//   - Rate limiting
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8000 -rules /etc/specfn/rules.yaml
//
//	# Development mode (colored logs)
//	./server -dev -precision 128
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
