package calculator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/joaograca03/CalcApp/internal/observability"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// ErrNoClipboard is returned by CopyResult when no clipboard is attached.
var ErrNoClipboard = errors.New("no clipboard available")

// ErrorText is what both displays show after a failure.
const ErrorText = "Error"

// State is the controller's position in the input state machine.
type State int

const (
	StateIdle State = iota
	StateBuilding
	StateEvaluated
	StateErrored
)

var stateNames = [...]string{
	StateIdle:      "idle",
	StateBuilding:  "building",
	StateEvaluated: "evaluated",
	StateErrored:   "errored",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for i, name := range stateNames {
		if name == string(b) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", b)
}

// Options wires a controller to its collaborators. Only Evaluator has a
// usable zero value (nil selects the symbolic backend).
type Options struct {
	Evaluator    *Evaluator
	Storage      Storage
	Clipboard    Clipboard
	Display      Display
	HistoryLimit int
	Now          func() time.Time
}

// Controller routes tokens to the expression buffer and the evaluator and
// keeps the history. It is not safe for concurrent use; see Session.
type Controller struct {
	expr    ExpressionState
	state   State
	display DisplayState
	history *History

	evaluator *Evaluator
	storage   Storage
	clipboard Clipboard
	out       Display
	now       func() time.Time
}

// New builds a controller and loads the persisted history. A storage failure
// is logged and leaves the history empty.
func New(ctx context.Context, opts Options) *Controller {
	c := &Controller{
		history:   NewHistory(opts.HistoryLimit),
		evaluator: opts.Evaluator,
		storage:   opts.Storage,
		clipboard: opts.Clipboard,
		out:       opts.Display,
		now:       opts.Now,
	}
	if c.evaluator == nil {
		c.evaluator = NewEvaluator(nil, DefaultPrecision)
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.display = DisplayState{Result: "0", State: StateIdle}
	c.loadHistory(ctx)
	return c
}

func (c *Controller) State() State            { return c.state }
func (c *Controller) Buffer() string          { return c.expr.Buffer() }
func (c *Controller) Display() DisplayState   { return c.display }
func (c *Controller) History() []HistoryEntry { return c.history.Entries() }
func (c *Controller) Evaluator() *Evaluator   { return c.evaluator }

// Press handles one button label. Unknown labels are rejected with
// ErrUnknownToken and change nothing.
func (c *Controller) Press(ctx context.Context, label string) (DisplayState, error) {
	tok, err := ParseToken(label)
	if err != nil {
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "press")))
		return c.display, err
	}
	return c.Dispatch(ctx, tok), nil
}

// Dispatch applies tok and returns the new projection.
func (c *Controller) Dispatch(ctx context.Context, tok Token) DisplayState {
	ctx, span := tracer.Start(ctx, "calculator.press",
		trace.WithAttributes(
			attribute.String("calculator.token", tok.String()),
			attribute.String("calculator.state.before", c.state.String()),
		),
	)
	defer span.End()

	tokenCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", tok.Kind.String())))

	switch tok.Kind {
	case KindClear:
		c.expr.Clear()
		c.state = StateIdle
		c.display = DisplayState{Result: "0"}
	case KindEquals:
		c.equals(ctx)
	default:
		c.mutate(ctx, tok)
	}

	c.display.State = c.state
	span.SetAttributes(
		attribute.String("calculator.state.after", c.state.String()),
		attribute.String("calculator.buffer", c.expr.Buffer()),
	)
	if c.out != nil {
		c.out.Show(c.display)
	}
	return c.display
}

func (c *Controller) mutate(ctx context.Context, tok Token) {
	logger := observability.LoggerFromContext(ctx)

	// The buffer restarts after an evaluation or an error, and so does the
	// expression line.
	if c.state == StateErrored || c.state == StateEvaluated {
		c.display.Expression = ""
	}

	err := c.expr.Apply(tok)
	switch {
	case errors.Is(err, ErrNoOp):
		logger.Debug("token ignored",
			zap.String("token", tok.String()),
			zap.String("buffer", c.expr.Buffer()),
		)
	case errors.Is(err, ErrNegativeSqrt):
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "sqrt")))
		logger.Info("square root of a negative operand",
			zap.String("buffer", c.expr.Buffer()),
		)
		c.state = StateBuilding
		c.display.Result = ErrorText
		return
	case err != nil:
		logger.Error("unexpected buffer error", zap.String("token", tok.String()), zap.Error(err))
	}

	if c.expr.Buffer() == "" {
		c.state = StateIdle
		c.display.Result = "0"
		return
	}
	c.state = StateBuilding
	c.display.Result = c.expr.Buffer()
}

func (c *Controller) equals(ctx context.Context) {
	if c.state == StateEvaluated || c.expr.Buffer() == "" {
		return
	}
	logger := observability.LoggerFromContext(ctx)
	expr := c.expr.Buffer()

	result, err := c.evaluator.Evaluate(ctx, expr)
	if err != nil {
		var evalErr *EvalError
		kind := SyntaxError
		if errors.As(err, &evalErr) {
			kind = evalErr.Kind
		}
		trace.SpanFromContext(ctx).SetStatus(codes.Error, kind.String())
		evaluationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", kind.String())))
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "evaluate")))
		logger.Info("evaluation failed",
			zap.String("expression", expr),
			zap.String("error_kind", kind.String()),
			zap.Error(err),
		)

		c.expr.Reset()
		c.state = StateErrored
		c.display = DisplayState{Expression: ErrorText, Result: ErrorText}
		return
	}

	c.expr.MarkEvaluated()
	c.state = StateEvaluated
	c.display = DisplayState{Expression: expr + " = " + result, Result: result}

	c.history.Add(HistoryEntry{
		Expression: expr,
		Result:     result,
		Timestamp:  c.now().Format(TimestampLayout),
	})
	evaluationCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	logger.Info("expression evaluated",
		zap.String("expression", expr),
		zap.String("result", result),
	)
	c.saveHistory(ctx)
}

// DeleteHistory removes the entry at index (0 is the newest).
func (c *Controller) DeleteHistory(ctx context.Context, index int) error {
	if err := c.history.Delete(index); err != nil {
		return err
	}
	c.saveHistory(ctx)
	return nil
}

func (c *Controller) ClearHistory(ctx context.Context) {
	c.history.Clear()
	c.saveHistory(ctx)
}

// CopyResult writes the result of the entry at index to the clipboard and
// returns it.
func (c *Controller) CopyResult(ctx context.Context, index int) (string, error) {
	e, err := c.history.Get(index)
	if err != nil {
		return "", err
	}
	if c.clipboard == nil {
		return "", ErrNoClipboard
	}
	if err := c.clipboard.SetText(ctx, e.Result); err != nil {
		return "", fmt.Errorf("copying result: %w", err)
	}
	return e.Result, nil
}

// ClipboardText reads the attached clipboard. It reports false when there is
// no readable clipboard or nothing has been copied.
func (c *Controller) ClipboardText() (string, bool) {
	r, ok := c.clipboard.(ClipboardReader)
	if !ok {
		return "", false
	}
	return r.Text()
}

func (c *Controller) loadHistory(ctx context.Context) {
	if c.storage == nil {
		return
	}
	var entries []HistoryEntry
	found, err := c.storage.Get(ctx, HistoryKey, &entries)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("loading history failed",
			zap.String("key", HistoryKey),
			zap.Error(err),
		)
		return
	}
	if found {
		c.history.Replace(entries)
	}
	historyGauge.Record(ctx, int64(c.history.Len()))
}

func (c *Controller) saveHistory(ctx context.Context) {
	historyGauge.Record(ctx, int64(c.history.Len()))
	if c.storage == nil {
		return
	}
	if err := c.storage.Set(ctx, HistoryKey, c.history.Entries()); err != nil {
		errorCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", "persist")))
		observability.LoggerFromContext(ctx).Warn("persisting history failed",
			zap.String("key", HistoryKey),
			zap.Error(err),
		)
	}
}
