// Package middleware provides the gin middleware chain of the API: request
// identity, error rendering, authentication, limits and observability.
package middleware

import (
	"net/http"

	"github.com/crm/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns OpenTelemetry server span middleware. The span name follows
// the matched route pattern, e.g. "GET /api/customers/:id". A nil provider
// uses the global one.
func Tracing(serviceName string, provider trace.TracerProvider) gin.HandlerFunc {
	opts := []otelgin.Option{}
	if provider != nil {
		opts = append(opts, otelgin.WithTracerProvider(provider))
	}
	return otelgin.Middleware(serviceName, opts...)
}

// TraceAttributes decorates the active server span with the request ID and,
// once authentication has run, the user ID. It must sit after Tracing so the
// span is still open when the chain returns.
func TraceAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if requestID := c.GetString(logger.RequestIDKey); requestID != "" {
			span.SetAttributes(attribute.String("request_id", requestID))
		}

		c.Next()

		if userID := logger.GetUserID(c.Request.Context()); userID != "" {
			span.SetAttributes(attribute.String("user_id", userID))
		}
		if status := c.Writer.Status(); status >= http.StatusInternalServerError && len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last().Err)
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}
