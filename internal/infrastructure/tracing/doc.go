/*
Package tracing follows a browser request through the HTTP layer and
into desktop operations.

It borrows the vocabulary of distributed tracing (traces, spans, tags)
without the collector machinery: finished spans are queued to a
background goroutine and emitted through the structured logger.

# Usage

	tracer := tracing.New("desktop", logger)

	// HTTP middleware
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual spans
	span, ctx := tracer.Start(ctx, "session.restore")
	defer func() {
		span.End()
		tracer.Submit(span)
	}()

	span.Tag("session", name)

# Propagation

The browser client sends and receives the X-Trace-ID and X-Span-ID
headers. A request that arrives carrying them continues the remote
trace; one that arrives bare starts a new trace, and the response
headers tell the client which IDs were assigned.

The span queue holds 1000 entries and drops spans rather than blocking
request handling when it is full.
*/
package tracing
