package config

import (
	"strings"
	"testing"
	"time"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(env(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
	if cfg.HistoryLimit != 10 || cfg.Precision != 10 || cfg.Addr != ":8080" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(env(map[string]string{
		"CALC_ADDR":             ":9090",
		"CALC_HISTORY_PATH":     "/tmp/h.yaml",
		"CALC_HISTORY_LIMIT":    "25",
		"CALC_BACKEND":          "Float",
		"CALC_PRECISION":        " 6 ",
		"CALC_TELEMETRY":        "true",
		"CALC_LOG_LEVEL":        "debug",
		"CALC_SHUTDOWN_TIMEOUT": "2s",
		"CALC_MCP_PORT":         "7000",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Config{
		Addr:            ":9090",
		HistoryPath:     "/tmp/h.yaml",
		HistoryLimit:    25,
		Backend:         "float",
		Precision:       6,
		Telemetry:       true,
		LogLevel:        "debug",
		ShutdownTimeout: 2 * time.Second,
		MCPPort:         7000,
	}
	if cfg != want {
		t.Fatalf("expected %+v, got %+v", want, cfg)
	}
}

func TestLoadReportsEveryProblem(t *testing.T) {
	_, err := LoadFrom(env(map[string]string{
		"CALC_HISTORY_LIMIT":    "ten",
		"CALC_TELEMETRY":        "maybe",
		"CALC_BACKEND":          "abacus",
		"CALC_SHUTDOWN_TIMEOUT": "-1s",
	}))
	if err == nil {
		t.Fatal("expected error")
	}
	for _, key := range []string{"CALC_HISTORY_LIMIT", "CALC_TELEMETRY", "CALC_BACKEND", "CALC_SHUTDOWN_TIMEOUT"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("expected %s in %q", key, err.Error())
		}
	}
}
