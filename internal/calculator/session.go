package calculator

import (
	"context"
	"sync"
)

// Step is the projection after one token of a sequence.
type Step struct {
	Token   string       `json:"token"`
	Display DisplayState `json:"display"`
}

// Session serialises access to a single Controller so that front ends
// serving concurrent requests still feed it one token at a time.
type Session struct {
	mu sync.Mutex
	c  *Controller
}

func NewSession(c *Controller) *Session {
	return &Session{c: c}
}

func (s *Session) Press(ctx context.Context, label string) (DisplayState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Press(ctx, label)
}

// PressSequence presses labels in order and stops at the first unknown one,
// returning the steps taken so far.
func (s *Session) PressSequence(ctx context.Context, labels []string) ([]Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps := make([]Step, 0, len(labels))
	for _, label := range labels {
		d, err := s.c.Press(ctx, label)
		if err != nil {
			return steps, err
		}
		steps = append(steps, Step{Token: label, Display: d})
	}
	return steps, nil
}

func (s *Session) Display() DisplayState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Display()
}

func (s *Session) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.History()
}

func (s *Session) DeleteHistory(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteHistory(ctx, index)
}

func (s *Session) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.ClearHistory(ctx)
}

func (s *Session) CopyResult(ctx context.Context, index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.CopyResult(ctx, index)
}

func (s *Session) ClipboardText() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.ClipboardText()
}

// Evaluate computes expr without touching the buffer or the history.
func (s *Session) Evaluate(ctx context.Context, expr string) (string, error) {
	return s.c.Evaluator().Evaluate(ctx, expr)
}

// Simplify returns the symbolic normal form of expr.
func (s *Session) Simplify(expr string) (string, error) {
	out, err := SymbolicBackend{}.Simplify(replacePi(expr))
	if err != nil {
		return "", classify(err)
	}
	return out, nil
}

func (s *Session) BackendName() string { return s.c.Evaluator().Backend().Name() }
