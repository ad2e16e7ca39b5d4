// Package middleware holds the gin middleware of the evaluation API: CORS,
// per-client and global rate limiting, and eval id stamping.
package middleware
