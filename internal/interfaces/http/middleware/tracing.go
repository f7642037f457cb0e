// Package middleware provides HTTP middleware for the costing API.
package middleware

import (
	"net/http"

	"github.com/erp/costing/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxOperatorLength caps the operator attribute copied from headers.
const MaxOperatorLength = 100

// TracingConfig holds configuration for the tracing middleware.
type TracingConfig struct {
	ServiceName string
	Enabled     bool
}

// DefaultTracingConfig returns default tracing configuration.
func DefaultTracingConfig() TracingConfig {
	return TracingConfig{
		ServiceName: "erp-costing",
		Enabled:     true,
	}
}

// Tracing returns the otelgin middleware. Spans are named "METHOD route".
// When disabled it is a pass-through.
func Tracing(cfg TracingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}
	return otelgin.Middleware(cfg.ServiceName)
}

// TracingAttributeInjector adds request_id and operator to the active span.
// It must run after Tracing and RequestID.
func TracingAttributeInjector() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if span.IsRecording() {
			if id := GetRequestID(c); id != "" {
				span.SetAttributes(attribute.String("request_id", id))
			}
			if op := c.GetHeader(logger.OperatorHeader); op != "" {
				if len(op) > MaxOperatorLength {
					op = op[:MaxOperatorLength]
				}
				span.SetAttributes(attribute.String("operator", op))
			}
		}
		c.Next()
	}
}

// SpanErrorMarker sets the span status to Error for 4xx responses.
// otelgin marks 5xx itself once this middleware has returned, so those are left alone.
// It must run after Tracing.
func SpanErrorMarker() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			return
		}

		status := c.Writer.Status()
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			return
		}
		msg := "Client Error"
		switch {
		case status == http.StatusNotFound:
			msg = "Not Found"
		case status == http.StatusConflict:
			msg = "Conflict"
		case status == http.StatusUnprocessableEntity:
			msg = "Unprocessable Entity"
		}
		span.SetStatus(codes.Error, msg)
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
}
