package calculator

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/Knetic/govaluate"

	"github.com/joaograca03/CalcApp/internal/symbolic"
)

// Numeric is a backend result: an exact rational when the backend could keep
// one, otherwise a float64 approximation.
type Numeric struct {
	Exact  *big.Rat
	Approx float64
}

// Backend parses and evaluates a π-free expression over + - * / ** ( ) and
// the functions sqrt, sin, cos and tan, with the constant spelled "pi".
// Failures must match ErrSyntax or ErrMath.
type Backend interface {
	Name() string
	Evaluate(expr string) (Numeric, error)
}

const (
	BackendSymbolic = "symbolic"
	BackendFloat    = "float"
)

// NewBackend returns the backend registered under name.
func NewBackend(name string) (Backend, error) {
	switch name {
	case "", BackendSymbolic:
		return SymbolicBackend{}, nil
	case BackendFloat:
		return FloatBackend{}, nil
	}
	return nil, fmt.Errorf("unknown evaluation backend %q", name)
}

// ---------------------------------------------------------------------------
// Symbolic backend
// ---------------------------------------------------------------------------

// SymbolicBackend evaluates with the exact rational kernel.
type SymbolicBackend struct{}

func (SymbolicBackend) Name() string { return BackendSymbolic }

func (SymbolicBackend) Evaluate(expr string) (Numeric, error) {
	n, err := symbolic.Evaluate(expr)
	if err != nil {
		return Numeric{}, classifySymbolic(err)
	}
	if n.IsExact() {
		return Numeric{Exact: n.Rat()}, nil
	}
	f := n.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Numeric{}, fmt.Errorf("%w: result is not finite", ErrMath)
	}
	return Numeric{Approx: f}, nil
}

// Simplify returns the simplified symbolic form of expr, e.g. "pi/2+pi/2"
// becomes "pi".
func (SymbolicBackend) Simplify(expr string) (string, error) {
	e, err := symbolic.Parse(expr)
	if err != nil {
		return "", classifySymbolic(err)
	}
	return e.String(), nil
}

func classifySymbolic(err error) error {
	var syntaxErr *symbolic.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	return fmt.Errorf("%w: %w", ErrMath, err)
}

// ---------------------------------------------------------------------------
// Float backend
// ---------------------------------------------------------------------------

// FloatBackend evaluates in float64 with govaluate.
type FloatBackend struct{}

func (FloatBackend) Name() string { return BackendFloat }

var floatFunctions = map[string]govaluate.ExpressionFunction{
	"sqrt": unaryFloat("sqrt", math.Sqrt),
	"sin":  unaryFloat("sin", math.Sin),
	"cos":  unaryFloat("cos", math.Cos),
	"tan":  unaryFloat("tan", math.Tan),
}

var floatParameters = map[string]interface{}{
	"pi": math.Pi,
}

func unaryFloat(name string, fn func(float64) float64) govaluate.ExpressionFunction {
	return func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%w: %s takes one argument, got %d", ErrSyntax, name, len(args))
		}
		x, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("%w: %s argument is not a number", ErrSyntax, name)
		}
		return fn(x), nil
	}
}

func (FloatBackend) Evaluate(expr string) (Numeric, error) {
	e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, floatFunctions)
	if err != nil {
		return Numeric{}, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	for _, v := range e.Vars() {
		if _, ok := floatParameters[v]; !ok {
			return Numeric{}, fmt.Errorf("%w: unknown name %q", ErrSyntax, v)
		}
	}
	out, err := e.Evaluate(floatParameters)
	if err != nil {
		if errors.Is(err, ErrSyntax) || errors.Is(err, ErrMath) {
			return Numeric{}, err
		}
		return Numeric{}, fmt.Errorf("%w: %w", ErrSyntax, err)
	}
	f, ok := out.(float64)
	if !ok {
		return Numeric{}, fmt.Errorf("%w: result %v is not a number", ErrSyntax, out)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Numeric{}, fmt.Errorf("%w: result is not finite", ErrMath)
	}
	return Numeric{Approx: f}, nil
}
