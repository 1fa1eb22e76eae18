/*
Package tracing provides lightweight request tracing.

# Overview

A trace follows one API request through the outbound suggestion fetches
it causes. Spans are logged through zap when they finish; there is no
exporter.

# Usage

	tracer := tracing.New("websearch", logger)

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "suggest.google")
	defer tracer.Finish(span)

	span.SetTag("q", query)

# Trace Format

Trace context travels in the X-Trace-ID and X-Span-ID headers. Incoming
values are honored; fresh IDs are ULIDs prefixed with "trc" and "spn".
*/
package tracing
