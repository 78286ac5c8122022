// Package config reads the process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Config holds every setting the binaries understand.
type Config struct {
	Addr            string
	HistoryPath     string
	HistoryLimit    int
	Backend         string
	Precision       int
	Telemetry       bool
	LogLevel        string
	ShutdownTimeout time.Duration
	MCPPort         int
}

// Default returns the configuration used when no variable is set.
func Default() Config {
	return Config{
		Addr:            ":8080",
		HistoryPath:     "calc_history.json",
		HistoryLimit:    10,
		Backend:         "symbolic",
		Precision:       10,
		Telemetry:       false,
		LogLevel:        "info",
		ShutdownTimeout: 5 * time.Second,
		MCPPort:         0,
	}
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv. Every malformed value
// is reported, not just the first.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := Default()
	var errs []error

	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			n, err := cast.ToIntE(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	str("CALC_ADDR", &cfg.Addr)
	str("CALC_HISTORY_PATH", &cfg.HistoryPath)
	num("CALC_HISTORY_LIMIT", &cfg.HistoryLimit)
	str("CALC_BACKEND", &cfg.Backend)
	num("CALC_PRECISION", &cfg.Precision)
	str("CALC_LOG_LEVEL", &cfg.LogLevel)
	num("CALC_MCP_PORT", &cfg.MCPPort)

	if v := strings.TrimSpace(getenv("CALC_TELEMETRY")); v != "" {
		b, err := cast.ToBoolE(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CALC_TELEMETRY: %w", err))
		} else {
			cfg.Telemetry = b
		}
	}
	if v := strings.TrimSpace(getenv("CALC_SHUTDOWN_TIMEOUT")); v != "" {
		d, err := cast.ToDurationE(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("CALC_SHUTDOWN_TIMEOUT: %w", err))
		} else {
			cfg.ShutdownTimeout = d
		}
	}

	cfg.Backend = strings.ToLower(cfg.Backend)
	errs = append(errs, cfg.validate()...)
	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c Config) validate() []error {
	var errs []error
	if c.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("CALC_HISTORY_LIMIT must be positive, got %d", c.HistoryLimit))
	}
	if c.Precision <= 0 || c.Precision > 50 {
		errs = append(errs, fmt.Errorf("CALC_PRECISION must be between 1 and 50, got %d", c.Precision))
	}
	if c.Backend != "symbolic" && c.Backend != "float" {
		errs = append(errs, fmt.Errorf("CALC_BACKEND must be symbolic or float, got %q", c.Backend))
	}
	if c.MCPPort < 0 || c.MCPPort > 65535 {
		errs = append(errs, fmt.Errorf("CALC_MCP_PORT out of range: %d", c.MCPPort))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("CALC_SHUTDOWN_TIMEOUT must be positive, got %s", c.ShutdownTimeout))
	}
	return errs
}
