package calculator

import (
	"errors"
	"fmt"
)

// HistoryKey is the storage slot holding the persisted history list.
const HistoryKey = "calc_history"

// DefaultHistoryLimit caps the number of remembered calculations.
const DefaultHistoryLimit = 10

// TimestampLayout is the wall-clock format stored with each entry.
const TimestampLayout = "2006-01-02 15:04:05"

var ErrHistoryIndex = errors.New("history index out of range")

// HistoryEntry is one completed calculation.
type HistoryEntry struct {
	Expression string `json:"expression" yaml:"expression"`
	Result     string `json:"result" yaml:"result"`
	Timestamp  string `json:"time" yaml:"time"`
}

// History keeps the most recent entries first.
type History struct {
	entries []HistoryEntry
	limit   int
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Add inserts e at the head, evicting the oldest entries beyond the limit.
func (h *History) Add(e HistoryEntry) {
	h.entries = append([]HistoryEntry{e}, h.entries...)
	if len(h.entries) > h.limit {
		h.entries = h.entries[:h.limit]
	}
}

func (h *History) Delete(i int) error {
	if i < 0 || i >= len(h.entries) {
		return fmt.Errorf("%w: %d (have %d)", ErrHistoryIndex, i, len(h.entries))
	}
	h.entries = append(h.entries[:i], h.entries[i+1:]...)
	return nil
}

func (h *History) Get(i int) (HistoryEntry, error) {
	if i < 0 || i >= len(h.entries) {
		return HistoryEntry{}, fmt.Errorf("%w: %d (have %d)", ErrHistoryIndex, i, len(h.entries))
	}
	return h.entries[i], nil
}

func (h *History) Clear()     { h.entries = nil }
func (h *History) Len() int   { return len(h.entries) }
func (h *History) Limit() int { return h.limit }

// Entries returns a copy, newest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Replace installs a loaded list, truncated to the limit.
func (h *History) Replace(entries []HistoryEntry) {
	if len(entries) > h.limit {
		entries = entries[:h.limit]
	}
	h.entries = append([]HistoryEntry(nil), entries...)
}
