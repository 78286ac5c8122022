package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/joaograca03/CalcApp/internal/app"
	"github.com/joaograca03/CalcApp/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	a, err := app.Bootstrap(ctx, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	srv := newHTTPServer(a)

	errCh := make(chan error, 1)
	go func() {
		observability.Logger.Info("server started", zap.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	return waitForShutdown(srv, errCh, a)
}

func waitForShutdown(srv *http.Server, errCh <-chan error, a *app.App) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-errCh:
		if ok {
			observability.Logger.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case sig := <-stop:
		observability.Logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		observability.Logger.Error("shutdown failed", zap.Error(err))
		return err
	}
	return nil
}
