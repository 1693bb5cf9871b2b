package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey string

const (
	loggerKey    ctxKey = "logger"
	requestIDKey ctxKey = "request_id"
	tenantIDKey  ctxKey = "tenant_id"
)

// Into attaches a logger to the context
func Into(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// From retrieves the request-scoped logger, trace-correlated when a span is
// active. Falls back to a no-op logger.
func From(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		return zap.NewNop()
	}
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		l = l.With(
			zap.String("trace_id", span.SpanContext().TraceID().String()),
			zap.String("span_id", span.SpanContext().SpanID().String()),
		)
	}
	return l
}

// WithRequestID stamps the request ID on the context and the logger
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, requestIDKey, requestID)
	l = l.With(zap.String("request_id", requestID))
	return Into(ctx, l), l
}

// WithTenantID stamps the tenant ID on the context and the logger
func WithTenantID(ctx context.Context, l *zap.Logger, tenantID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, tenantIDKey, tenantID)
	l = l.With(zap.String("tenant_id", tenantID))
	return Into(ctx, l), l
}

// RequestID returns the request ID from the context, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// TenantID returns the tenant ID from the context, if any
func TenantID(ctx context.Context) string {
	id, _ := ctx.Value(tenantIDKey).(string)
	return id
}
