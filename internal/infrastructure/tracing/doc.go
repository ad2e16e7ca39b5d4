// Package tracing records one span per HTTP request and logs it through zap
// from a background collector.
//
// Callers may continue their own trace by sending X-Trace-ID and X-Span-ID;
// otherwise a new trace_* ULID is minted. Both ids are echoed in the
// response headers, and the span carries the request's eval id so log lines
// of the dispatcher and of the span can be joined.
//
//	tracer := tracing.New("specfn", logger.Logger)
//	defer tracer.Close()
//	router.Use(tracing.HTTPMiddleware(tracer))
package tracing
