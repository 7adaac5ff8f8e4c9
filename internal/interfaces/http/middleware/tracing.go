package middleware

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TracingConfig holds configuration for the tracing middleware
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// Tracing returns OpenTelemetry tracing middleware. Spans are named
// "METHOD route_pattern" by otelgin. When disabled it is a passthrough.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributes enriches the active span with the request ID and, when
// authentication has already run, the actor's tenant and user. It must sit
// after Tracing in the chain; on the back-office API it also sits after the
// auth middleware.
func TracingAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if requestID, exists := c.Get("request_id"); exists {
				if id, ok := requestID.(string); ok && id != "" {
					span.SetAttributes(attribute.String("request_id", id))
				}
			}
			if actor, ok := GetActor(c); ok {
				span.SetAttributes(
					attribute.String("tenant_id", actor.TenantID.String()),
					attribute.String("user_id", actor.UserID.String()),
				)
			}
		}
		c.Next()
	}
}
