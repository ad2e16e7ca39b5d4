// Package http exposes the dispatcher over JSON.
//
// Routes:
//   - POST /v1/evaluate: evaluate an expression tree
//   - GET  /v1/functions: list catalog functions
//   - GET  /health, GET /
//
// Request and response bodies use the expression wire form of package expr
// and are encoded with sonic.
package http
