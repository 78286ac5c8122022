package calculator

import (
	"context"
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrSyntax = errors.New("syntax error")
	ErrMath   = errors.New("math error")
)

// ErrorKind tells the two evaluation failure classes apart.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota
	MathError
)

func (k ErrorKind) String() string {
	if k == MathError {
		return "math_error"
	}
	return "syntax_error"
}

func (k ErrorKind) sentinel() error {
	if k == MathError {
		return ErrMath
	}
	return ErrSyntax
}

// EvalError is the failure result of Evaluator.Evaluate.
type EvalError struct {
	Kind ErrorKind
	Err  error
}

func (e *EvalError) Error() string { return e.Err.Error() }

func (e *EvalError) Unwrap() []error { return []error{e.Kind.sentinel(), e.Err} }

// DefaultPrecision is the number of decimals kept for non-integral results.
const DefaultPrecision = 10

// Evaluator turns a finished buffer into its formatted result.
type Evaluator struct {
	backend   Backend
	precision int
}

// NewEvaluator returns an evaluator over backend; a nil backend selects the
// symbolic one and a non-positive precision selects DefaultPrecision.
func NewEvaluator(backend Backend, precision int) *Evaluator {
	if backend == nil {
		backend = SymbolicBackend{}
	}
	if precision <= 0 {
		precision = DefaultPrecision
	}
	return &Evaluator{backend: backend, precision: precision}
}

func (e *Evaluator) Backend() Backend { return e.backend }

// Evaluate computes buf. The returned error is always an *EvalError.
func (e *Evaluator) Evaluate(ctx context.Context, buf string) (string, error) {
	ctx, span := tracer.Start(ctx, "calculator.evaluate",
		trace.WithAttributes(
			attribute.String("calculator.expression", buf),
			attribute.String("calculator.backend", e.backend.Name()),
		),
	)
	defer span.End()

	start := time.Now()
	n, err := e.backend.Evaluate(replacePi(buf))
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	attrs := metric.WithAttributes(attribute.String("backend", e.backend.Name()))
	evalHistogram.Record(ctx, elapsed, attrs)

	if err != nil {
		evalErr := classify(err)
		span.RecordError(evalErr)
		span.SetStatus(codes.Error, evalErr.Kind.String())
		return "", evalErr
	}

	result := FormatNumber(n, e.precision)
	span.SetAttributes(attribute.String("calculator.result", result))
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// replacePi spells the π placeholder the way backends expect it.
func replacePi(buf string) string { return strings.ReplaceAll(buf, Pi, "pi") }

func classify(err error) *EvalError {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr
	}
	if errors.Is(err, ErrMath) {
		return &EvalError{Kind: MathError, Err: err}
	}
	return &EvalError{Kind: SyntaxError, Err: err}
}

// FormatNumber renders integral values as plain integers and everything else
// with precision decimals, trailing zeros and point removed.
func FormatNumber(n Numeric, precision int) string {
	if n.Exact != nil {
		if n.Exact.IsInt() {
			return n.Exact.Num().String()
		}
		return trimDecimal(n.Exact.FloatString(precision))
	}

	f := n.Approx
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	if f == math.Trunc(f) {
		i, _ := big.NewFloat(f).Int(nil)
		return i.String()
	}
	return trimDecimal(strconv.FormatFloat(f, 'f', precision, 64))
}

func trimDecimal(s string) string {
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		return "0"
	}
	return s
}
