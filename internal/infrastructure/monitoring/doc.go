/*
Package monitoring provides Prometheus metrics for the websearch service.

# Overview

Metrics cover the query pipeline (queries issued, suggestion fetch outcomes
and latency, late updates published, stale results discarded), settings
persistence (load and save outcomes), result invocations, provider circuit
breakers and the HTTP API.

Each Metrics owns its own registry, so several instances can coexist in
one process (tests, embedded use).

# Usage

	metrics := monitoring.NewMetrics()

	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "google")
	// ... fetch suggestions ...
	timer.Stop(monitoring.FetchInTime)
*/
package monitoring
