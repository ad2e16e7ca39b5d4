/*
Package monitoring provides metrics collection for the evaluation service.

# Overview

Metrics are Prometheus collectors registered against an injected registry,
covering HTTP traffic, evaluations by dispatch path, backend latency,
domain errors and reduced-precision results.

# Usage

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time backend calls
	timer := monitoring.NewTimer(metrics, "numeric", "erf")
	// ... call backend ...
	timer.Stop("success")

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
*/
package monitoring
