package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the process-wide logger. It discards everything until
// InitLogger runs, so packages and tests can log unconditionally.
var Logger = zap.NewNop()

// InitLogger installs a JSON logger on stderr at level ("debug", "info",
// "warn", "error"; empty means info). Every entry carries the service name.
func InitLogger(level string) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("parsing log level: %w", err)
		}
		lvl = parsed
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"service": ServiceName()}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	Logger = l
	return nil
}

func SyncLogger() {
	_ = Logger.Sync()
}

// LoggerFromContext returns Logger annotated with the request ID and the
// active span found in ctx.
//
// With a valid span, ctx is also attached as the "context" field. The otelzap
// bridge reads that field to stamp exported records with native trace and
// span IDs; the string IDs keep stderr output greppable.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	var fields []zap.Field

	if id := RequestIDFromContext(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.Any("context", ctx),
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}

	if len(fields) == 0 {
		return Logger
	}
	return Logger.With(fields...)
}
