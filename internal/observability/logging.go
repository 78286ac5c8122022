package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/log/global"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogging ships log entries over OTLP as well as to stderr. The OTLP
// side only receives entries Logger would already emit.
func InitLogging(ctx context.Context) (func(context.Context) error, error) {
	exporter, err := otlploghttp.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating log exporter: %w", err)
	}

	res, err := newResource(ctx)
	if err != nil {
		return nil, err
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithResource(res),
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
	)
	global.SetLoggerProvider(provider)

	local := Logger.Core()
	otelCore := otelzap.NewCore(ServiceName(),
		otelzap.WithLoggerProvider(provider),
		otelzap.WithVersion(Version),
	)
	Logger = zap.New(zapcore.NewTee(local, &levelFilter{Core: otelCore, enab: local}))

	shutdown := func(ctx context.Context) error {
		SyncLogger()
		return provider.Shutdown(ctx)
	}
	return shutdown, nil
}

// levelFilter gates a core on another core's level.
type levelFilter struct {
	zapcore.Core
	enab zapcore.LevelEnabler
}

func (f *levelFilter) Enabled(lvl zapcore.Level) bool {
	return f.enab.Enabled(lvl) && f.Core.Enabled(lvl)
}

func (f *levelFilter) With(fields []zapcore.Field) zapcore.Core {
	return &levelFilter{Core: f.Core.With(fields), enab: f.enab}
}

func (f *levelFilter) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if f.Enabled(e.Level) {
		return ce.AddCore(e, f)
	}
	return ce
}
