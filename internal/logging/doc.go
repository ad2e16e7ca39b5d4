// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Components take a *Logger and derive their own with Named; evaluation
// entries carry the request's eval id via ForEval.
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	log := logger.Named("dispatch").ForEval(id)
//	log.Debug("numeric path", zap.String("function", "Erf"), zap.Uint("bits", 53))
package logging
