package observability

import (
	"context"
	"errors"
	"fmt"
)

// InitTelemetry starts the OTLP trace, metric and log pipelines and returns
// one function that shuts all of them down. With enabled false nothing is
// exported and the global no-op providers stay in place.
func InitTelemetry(ctx context.Context, enabled bool) (func(context.Context) error, error) {
	if !enabled {
		return func(context.Context) error { return nil }, nil
	}

	var shutdowns []func(context.Context) error
	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	steps := []struct {
		name string
		init func(context.Context) (func(context.Context) error, error)
	}{
		{"tracing", InitTracing},
		{"metrics", InitMetrics},
		{"logging", InitLogging},
	}
	for _, step := range steps {
		fn, err := step.init(ctx)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("initialising %s: %w", step.name, err), shutdown(ctx))
		}
		shutdowns = append(shutdowns, fn)
	}
	return shutdown, nil
}
