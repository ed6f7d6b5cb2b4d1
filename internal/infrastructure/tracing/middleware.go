package tracing

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// HTTPMiddleware traces every request and stamps the trace identifiers
// on the response so the browser can correlate its own logs.
func HTTPMiddleware(tracer *Tracer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := withRemoteParent(
			c.Request.Context(),
			TraceID(c.GetHeader(HeaderTrace)),
			SpanID(c.GetHeader(HeaderSpan)),
		)

		name := c.FullPath()
		if name == "" {
			name = c.Request.URL.Path
		}

		span, ctx := tracer.Start(ctx, name)
		span.Tag("http.method", c.Request.Method)
		span.Tag("http.url", c.Request.URL.String())
		span.Tag("http.host", c.Request.Host)

		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderTrace, string(span.Trace))
		c.Header(HeaderSpan, string(span.ID))

		c.Next()

		span.Tag("http.status", strconv.Itoa(c.Writer.Status()))
		if len(c.Errors) > 0 {
			span.Fail(c.Errors.Last())
		}

		span.End()
		tracer.Submit(span)
	}
}
