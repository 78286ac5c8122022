package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joaograca03/CalcApp/internal/calculator"
	"github.com/joaograca03/CalcApp/internal/storage"
)

var sample = []calculator.HistoryEntry{
	{Expression: "7+5", Result: "12", Timestamp: "2024-05-01 10:00:00"},
	{Expression: "sqrt(25)", Result: "5", Timestamp: "2024-05-01 09:59:00"},
}

func TestFileRoundTrip(t *testing.T) {
	for _, name := range []string{"history.json", "history.yaml", "history.yml"} {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "nested", name)
			s := storage.NewFile(path)

			if err := s.Set(ctx, calculator.HistoryKey, sample); err != nil {
				t.Fatalf("set: %v", err)
			}
			if err := s.Set(ctx, "other", map[string]string{"k": "v"}); err != nil {
				t.Fatalf("set other: %v", err)
			}

			var got []calculator.HistoryEntry
			found, err := storage.NewFile(path).Get(ctx, calculator.HistoryKey, &got)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !found {
				t.Fatal("expected slot to be found")
			}
			if len(got) != len(sample) {
				t.Fatalf("expected %d entries, got %d", len(sample), len(got))
			}
			for i := range sample {
				if got[i] != sample[i] {
					t.Fatalf("entry %d: expected %+v, got %+v", i, sample[i], got[i])
				}
			}
		})
	}
}

func TestFileUsesTimeField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := storage.NewFile(path).Set(context.Background(), calculator.HistoryKey, sample); err != nil {
		t.Fatalf("set: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading file: %v", err)
	}
	for _, want := range []string{`"calc_history"`, `"expression": "7+5"`, `"time": "2024-05-01 10:00:00"`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("expected %s in %s", want, data)
		}
	}
}

func TestFileMissingSlot(t *testing.T) {
	s := storage.NewFile(filepath.Join(t.TempDir(), "absent.json"))

	var got []calculator.HistoryEntry
	found, err := s.Get(context.Background(), calculator.HistoryKey, &got)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Fatal("expected missing slot")
	}
}

func TestFileCorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	var got []calculator.HistoryEntry
	if _, err := storage.NewFile(path).Get(context.Background(), calculator.HistoryKey, &got); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCodecFor(t *testing.T) {
	tests := []struct {
		path string
		want storage.Codec
	}{
		{path: "h.json", want: storage.JSON},
		{path: "h.YAML", want: storage.YAML},
		{path: "h.yml", want: storage.YAML},
		{path: "h", want: storage.JSON},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			if got := storage.CodecFor(tc.path); got != tc.want {
				t.Fatalf("expected %T, got %T", tc.want, got)
			}
		})
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	m := storage.NewMemory()

	entries := append([]calculator.HistoryEntry(nil), sample...)
	if err := m.Set(ctx, calculator.HistoryKey, entries); err != nil {
		t.Fatalf("set: %v", err)
	}
	entries[0].Result = "changed"

	var got []calculator.HistoryEntry
	found, err := m.Get(ctx, calculator.HistoryKey, &got)
	if err != nil || !found {
		t.Fatalf("expected slot, got found=%t err=%v", found, err)
	}
	if got[0].Result != "12" {
		t.Fatalf("expected stored copy to be unaffected, got %q", got[0].Result)
	}

	found, err = m.Get(ctx, "missing", &got)
	if err != nil || found {
		t.Fatalf("expected missing slot, got found=%t err=%v", found, err)
	}
}
