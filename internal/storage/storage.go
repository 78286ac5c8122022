// Package storage implements named-slot stores for calculator state.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Codec converts slot values to and from bytes.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.MarshalIndent(v, "", "  ") }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

type yamlCodec struct{}

func (yamlCodec) Marshal(v any) ([]byte, error)      { return yaml.Marshal(v) }
func (yamlCodec) Unmarshal(data []byte, v any) error { return yaml.Unmarshal(data, v) }

var (
	JSON Codec = jsonCodec{}
	YAML Codec = yamlCodec{}
)

// CodecFor picks YAML for .yaml/.yml paths and JSON for everything else.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	}
	return JSON
}

// ---------------------------------------------------------------------------
// Memory
// ---------------------------------------------------------------------------

// Memory keeps encoded slots in a map. Values are round-tripped through
// JSON so callers never share memory with the store.
type Memory struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	data, ok := m.slots[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return true, fmt.Errorf("decoding slot %q: %w", key, err)
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding slot %q: %w", key, err)
	}
	m.mu.Lock()
	m.slots[key] = data
	m.mu.Unlock()
	return nil
}

// ---------------------------------------------------------------------------
// File
// ---------------------------------------------------------------------------

// File keeps every slot in one document on disk, keyed by slot name.
// Writes go to a temporary file that is renamed over the original.
type File struct {
	mu    sync.Mutex
	path  string
	codec Codec
}

// NewFile returns a store at path using the codec its extension selects.
func NewFile(path string) *File {
	return &File{path: path, codec: CodecFor(path)}
}

func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context, key string, dst any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return false, err
	}
	raw, ok := doc[key]
	if !ok {
		return false, nil
	}
	// Re-encode the one slot so dst is decoded with its own field tags.
	data, err := f.codec.Marshal(raw)
	if err != nil {
		return true, fmt.Errorf("re-encoding slot %q: %w", key, err)
	}
	if err := f.codec.Unmarshal(data, dst); err != nil {
		return true, fmt.Errorf("decoding slot %q: %w", key, err)
	}
	return true, nil
}

func (f *File) Set(_ context.Context, key string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}
	doc[key] = v

	data, err := f.codec.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", f.path, err)
	}
	return writeAtomic(f.path, data)
}

func (f *File) read() (map[string]any, error) {
	doc := make(map[string]any)
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return doc, nil
	}
	if err := f.codec.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", f.path, err)
	}
	return doc, nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
