package clipboard

import (
	"context"
	"errors"
	"testing"
)

func TestMemory(t *testing.T) {
	m := NewMemory()
	if _, ok := m.Text(); ok {
		t.Fatal("expected empty clipboard")
	}

	if err := m.SetText(context.Background(), "12"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := m.Text(); !ok || got != "12" {
		t.Fatalf("expected %q, got %q (set=%t)", "12", got, ok)
	}
}

// fakeSystem stands in for the OS clipboard utilities.
func fakeSystem(os *string, writeErr, readErr error) *System {
	return &System{
		write: func(text string) error {
			if writeErr != nil {
				return writeErr
			}
			*os = text
			return nil
		},
		read: func() (string, error) {
			if readErr != nil {
				return "", readErr
			}
			return *os, nil
		},
	}
}

func TestSystemWritesThrough(t *testing.T) {
	var host string
	s := fakeSystem(&host, nil, nil)

	if err := s.SetText(context.Background(), "0.25"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host != "0.25" {
		t.Fatalf("expected host clipboard %q, got %q", "0.25", host)
	}

	host = "42"
	if got, ok := s.Text(); !ok || got != "42" {
		t.Fatalf("expected text copied elsewhere %q, got %q (ok=%t)", "42", got, ok)
	}
}

func TestSystemFallsBackToMirror(t *testing.T) {
	var host string
	s := fakeSystem(&host, nil, errors.New("xclip: no display"))

	if err := s.SetText(context.Background(), "7"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := s.Text(); !ok || got != "7" {
		t.Fatalf("expected mirrored %q, got %q (ok=%t)", "7", got, ok)
	}
}

func TestSystemErrors(t *testing.T) {
	var host string

	failing := fakeSystem(&host, errors.New("exit status 1"), nil)
	if err := failing.SetText(context.Background(), "1"); err == nil {
		t.Fatal("expected write error")
	}
	if _, ok := failing.Text(); ok {
		t.Fatal("expected nothing mirrored after a failed write")
	}

	unsupported := fakeSystem(&host, nil, nil)
	unsupported.unsupported = true
	if err := unsupported.SetText(context.Background(), "1"); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
