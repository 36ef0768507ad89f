package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/fileproxy/observability"
)

// Metrics traces and counts requests by matched gin route. Unmatched paths
// are labelled "unmatched" to keep cardinality bounded. A nil m records
// spans only.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := observability.StartSpan(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String(observability.AttrRoute, route),
				attribute.String(observability.AttrRequestID, c.GetHeader(HeaderRequestID)),
			),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		m.RequestStarted(ctx)
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int(observability.AttrStatus, status))
		if status >= 500 {
			span.SetStatus(codes.Error, "server error")
		}
		m.RequestFinished(ctx, observability.RequestSample{
			Method:   c.Request.Method,
			Route:    route,
			Status:   status,
			Duration: time.Since(start),
			BytesIn:  c.Request.ContentLength,
			BytesOut: int64(max(c.Writer.Size(), 0)),
		})
	}
}
