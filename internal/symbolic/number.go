package symbolic

import (
	"math"
	"math/big"
	"strconv"
)

// Number is the value an expression evaluates to. Exact numbers carry a
// rational; approximate ones only a float64.
type Number struct {
	rat   *big.Rat
	float float64
}

func ExactNumber(r *big.Rat) Number { return Number{rat: new(big.Rat).Set(r)} }
func ApproxNumber(f float64) Number { return Number{float: f} }

func (n Number) IsExact() bool { return n.rat != nil }

// Rat returns a copy of the exact value, or nil for approximations.
func (n Number) Rat() *big.Rat {
	if n.rat == nil {
		return nil
	}
	return new(big.Rat).Set(n.rat)
}

func (n Number) Float64() float64 {
	if n.rat != nil {
		f, _ := n.rat.Float64()
		return f
	}
	return n.float
}

func (n Number) Sign() int {
	if n.rat != nil {
		return n.rat.Sign()
	}
	switch {
	case n.float > 0:
		return 1
	case n.float < 0:
		return -1
	}
	return 0
}

func (n Number) IsZero() bool { return n.Sign() == 0 }

func (n Number) String() string {
	if n.rat != nil {
		if n.rat.IsInt() {
			return n.rat.Num().String()
		}
		return n.rat.RatString()
	}
	return strconv.FormatFloat(n.float, 'g', -1, 64)
}

func finite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

func addNumbers(a, b Number) Number {
	if a.IsExact() && b.IsExact() {
		return Number{rat: new(big.Rat).Add(a.rat, b.rat)}
	}
	return ApproxNumber(a.Float64() + b.Float64())
}

func mulNumbers(a, b Number) Number {
	if a.IsExact() && b.IsExact() {
		return Number{rat: new(big.Rat).Mul(a.rat, b.rat)}
	}
	return ApproxNumber(a.Float64() * b.Float64())
}
