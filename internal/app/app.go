// Package app assembles the pieces every calcapp binary shares: environment,
// logger, telemetry and a calculator session backed by the history file.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/joaograca03/CalcApp/internal/calculator"
	"github.com/joaograca03/CalcApp/internal/clipboard"
	"github.com/joaograca03/CalcApp/internal/config"
	"github.com/joaograca03/CalcApp/internal/observability"
	"github.com/joaograca03/CalcApp/internal/storage"
)

// App is a ready-to-serve calculator.
type App struct {
	Config  config.Config
	Session *calculator.Session

	shutdown func(context.Context) error
}

// Options tweak Bootstrap for a particular binary.
type Options struct {
	// EnvFiles are loaded before the environment is read. Empty means ".env".
	EnvFiles []string
	// Display, when set, is notified after every calculator change.
	Display calculator.Display
	// SystemClipboard copies results to the operating system clipboard
	// instead of an in-process one.
	SystemClipboard bool
}

// Bootstrap loads configuration, starts logging and telemetry and builds the
// calculator session. Call Close when done.
func Bootstrap(ctx context.Context, opts Options) (*App, error) {
	if err := loadDotEnv(opts.EnvFiles...); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("initialising logger: %w", err)
	}

	shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("initialising telemetry: %w", err)
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	backend, err := calculator.NewBackend(cfg.Backend)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("selecting backend: %w", err), shutdown(ctx))
	}

	var cb calculator.Clipboard = clipboard.NewMemory()
	if opts.SystemClipboard {
		cb = clipboard.NewSystem()
	}
	c := calculator.New(ctx, calculator.Options{
		Evaluator:    calculator.NewEvaluator(backend, cfg.Precision),
		Storage:      storage.NewFile(cfg.HistoryPath),
		Clipboard:    cb,
		Display:      opts.Display,
		HistoryLimit: cfg.HistoryLimit,
	})

	observability.Logger.Info("calculator ready",
		zap.String("backend", backend.Name()),
		zap.String("history_path", cfg.HistoryPath),
		zap.Int("history_entries", len(c.History())),
		zap.Bool("telemetry", cfg.Telemetry),
		zap.Bool("system_clipboard", opts.SystemClipboard),
	)

	return &App{
		Config:   cfg,
		Session:  calculator.NewSession(c),
		shutdown: shutdown,
	}, nil
}

// Close flushes telemetry and the logger.
func (a *App) Close(ctx context.Context) error {
	err := a.shutdown(ctx)
	observability.SyncLogger()
	return err
}
