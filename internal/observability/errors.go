package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/joaograca03/CalcApp/internal/handlers"
)

// Failure is a request the service could not serve.
type Failure struct {
	Op      string // operation label, e.g. "press" or "history.delete"
	Message string // sent to the client
	Err     error
	Status  int
}

// RecordError marks span as failed, counts the failure per operation and
// status, logs it and writes {"error": Message}. Server errors log at error
// level, client errors at warn. The request ID is only in the header.
func RecordError(ctx context.Context, span trace.Span, counter metric.Int64Counter, w http.ResponseWriter, f Failure) {
	span.RecordError(f.Err)
	span.SetStatus(codes.Error, f.Message)

	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", f.Op),
		attribute.Int("status", f.Status),
	))

	logger := LoggerFromContext(ctx)
	fields := []zap.Field{
		zap.String("operation", f.Op),
		zap.Int("status", f.Status),
		zap.Error(f.Err),
	}
	if f.Status >= http.StatusInternalServerError {
		logger.Error(f.Message, fields...)
	} else {
		logger.Warn(f.Message, fields...)
	}

	handlers.WriteError(w, f.Status, f.Message)
}
