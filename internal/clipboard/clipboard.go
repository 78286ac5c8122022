// Package clipboard provides the clipboards the calculator copies results
// to: an in-process one for servers and the operating system's for the
// desktop window.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned by System when the host has no clipboard
// utility (xclip, xsel, wl-copy, pbcopy or the Windows API).
var ErrUnsupported = errors.New("system clipboard unsupported")

// Memory remembers the last text written to it.
type Memory struct {
	mu   sync.Mutex
	text string
	set  bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) SetText(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text, m.set = text, true
	return nil
}

// Text returns the clipboard contents and whether anything was copied yet.
func (m *Memory) Text() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, m.set
}

// System writes through to the operating system clipboard. The last text
// written is mirrored in memory, so Text still answers when the system
// clipboard cannot be read back.
type System struct {
	mirror Memory

	unsupported bool
	write       func(string) error
	read        func() (string, error)
}

func NewSystem() *System {
	return &System{
		unsupported: clipboard.Unsupported,
		write:       clipboard.WriteAll,
		read:        clipboard.ReadAll,
	}
}

func (s *System) SetText(ctx context.Context, text string) error {
	if s.unsupported {
		return ErrUnsupported
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("writing system clipboard: %w", err)
	}
	return s.mirror.SetText(ctx, text)
}

// Text reads the system clipboard, which may hold text other programs put
// there, and falls back to the last text written through s.
func (s *System) Text() (string, bool) {
	if !s.unsupported {
		if text, err := s.read(); err == nil && text != "" {
			return text, true
		}
	}
	return s.mirror.Text()
}
