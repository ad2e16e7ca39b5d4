// Package server assembles the evaluation service: logger, Prometheus
// registry and metrics, function catalog (built-ins plus an optional rule
// file), dispatcher and gin router.
//
// Server Lifecycle:
//  1. Load configuration from environment/flags
//  2. Initialize logger (production or development)
//  3. Build the catalog and dispatcher
//  4. Setup HTTP routes and middleware
//  5. Start HTTP server
//  6. Graceful shutdown on signal
package server
