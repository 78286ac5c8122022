// Package symbolic is a small exact-arithmetic expression kernel: it parses
// calculator expressions into a simplified tree of rationals, the constant
// pi and the functions sqrt, sin, cos and tan, and evaluates that tree
// without rounding until a transcendental value forces a float64.
package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// Powers beyond these bounds are evaluated in floating point.
const (
	maxExactExponent = 1024
	maxExactBits     = 1 << 16
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	Eval() (Number, error)
	Equal(other Expr) bool
}

// Num is an exact rational number.
type Num struct{ val *big.Rat }

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Eval() (Number, error) { return ExactNumber(n.val), nil }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) String() string        { return ExactNumber(n.val).String() }
func numAdd(a, b *Num) *Num          { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num          { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }

// Const is a named irrational constant.
type Const struct {
	name  string
	value float64
}

// Pi is the circle constant. It stays symbolic until evaluation so that
// trigonometric functions of rational multiples of pi can be exact.
var Pi = &Const{name: "pi", value: math.Pi}

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Eval() (Number, error) { return ApproxNumber(c.value), nil }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }

// Add is a sum of terms.
type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

// Simplify flattens nested sums, folds numeric terms and combines terms that
// differ only by a numeric coefficient (pi + pi/2 becomes 3/2*pi).
func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	numAccum := N(0)
	coeffs := map[string]*Num{}
	bases := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, n)
			continue
		}
		coeff, rest := splitCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			bases[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], coeff)
	}

	sort.Strings(order)
	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		coeff := coeffs[key]
		switch {
		case coeff.IsZero():
			// A vanished term may still hide an undefined value such as 1/0.
			if _, err := bases[key].Eval(); err != nil {
				result = append(result, &Mul{factors: []Expr{coeff, bases[key]}})
			}
		case coeff.IsOne():
			result = append(result, bases[key])
		default:
			result = append(result, MulOf(coeff, bases[key]))
		}
	}
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return N(0)
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range a.terms {
		coeff, _ := splitCoefficient(t)
		switch {
		case i == 0:
			b.WriteString(t.String())
		case coeff.IsNegative():
			b.WriteString(" - ")
			b.WriteString(MulOf(N(-1), t).String())
		default:
			b.WriteString(" + ")
			b.WriteString(t.String())
		}
	}
	return b.String()
}

func (a *Add) Eval() (Number, error) {
	acc := ExactNumber(new(big.Rat))
	for _, t := range a.terms {
		v, err := t.Eval()
		if err != nil {
			return Number{}, err
		}
		acc = addNumbers(acc, v)
	}
	if !acc.IsExact() && !finite(acc.float) {
		return Number{}, ErrOverflow
	}
	return acc, nil
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	return ok && equalAll(a.terms, o.terms)
}

// Mul is a product of factors.
type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	others := []Expr{}
	for _, f := range flat {
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
		} else {
			others = append(others, f)
		}
	}
	if coeff.IsZero() {
		// 0 * (1/0) must keep failing at evaluation time.
		for _, f := range others {
			if _, err := f.Eval(); err != nil {
				return &Mul{factors: append([]Expr{coeff}, others...)}
			}
		}
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	for i := range ks {
		others[i] = ks[i].e
	}

	if coeff.IsOne() {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

func (m *Mul) String() string {
	if len(m.factors) == 0 {
		return "1"
	}
	factors := m.factors
	prefix := ""
	if c, ok := factors[0].(*Num); ok && len(factors) > 1 && c.val.Cmp(big.NewRat(-1, 1)) == 0 {
		prefix = "-"
		factors = factors[1:]
	}
	parts := make([]string, len(factors))
	for i, f := range factors {
		switch f.(type) {
		case *Add:
			parts[i] = "(" + f.String() + ")"
		default:
			parts[i] = f.String()
		}
	}
	return prefix + strings.Join(parts, "*")
}

func (m *Mul) Eval() (Number, error) {
	acc := ExactNumber(big.NewRat(1, 1))
	for _, f := range m.factors {
		v, err := f.Eval()
		if err != nil {
			return Number{}, err
		}
		acc = mulNumbers(acc, v)
	}
	if !acc.IsExact() && !finite(acc.float) {
		return Number{}, ErrOverflow
	}
	return acc, nil
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	return ok && equalAll(m.factors, o.factors)
}

// splitCoefficient separates the leading numeric factor of a term.
func splitCoefficient(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok || len(m.factors) < 2 {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	rest := m.factors[1:]
	if len(rest) == 1 {
		return c, rest[0]
	}
	return c, &Mul{factors: rest}
}

// Pow is base**exponent.
type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() {
		return base
	}
	if bn, ok := base.(*Num); ok {
		if bn.IsOne() {
			return N(1)
		}
		if expIsNum && en.IsInteger() {
			e, small := smallExponent(en.val)
			if small && exactPowFits(bn.val, e) && !(bn.IsZero() && e < 0) {
				return NRat(powRat(bn.val, e))
			}
		}
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	baseStr := p.base.String()
	switch b := p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "(" + baseStr + ")"
	case *Num:
		if !b.IsInteger() || b.IsNegative() {
			baseStr = "(" + baseStr + ")"
		}
	}
	expStr := p.exp.String()
	switch e := p.exp.(type) {
	case *Const, *Func:
	case *Num:
		if !e.IsInteger() || e.IsNegative() {
			expStr = "(" + expStr + ")"
		}
	default:
		expStr = "(" + expStr + ")"
	}
	return baseStr + "**" + expStr
}

func (p *Pow) Eval() (Number, error) {
	b, err := p.base.Eval()
	if err != nil {
		return Number{}, err
	}
	e, err := p.exp.Eval()
	if err != nil {
		return Number{}, err
	}
	if b.IsExact() && e.IsExact() && e.rat.IsInt() {
		if n, small := smallExponent(e.rat); small && exactPowFits(b.rat, n) {
			if b.IsZero() && n < 0 {
				return Number{}, ErrDivisionByZero
			}
			return ExactNumber(powRat(b.rat, n)), nil
		}
	}
	bf, ef := b.Float64(), e.Float64()
	if bf == 0 && ef < 0 {
		return Number{}, ErrDivisionByZero
	}
	if bf < 0 && ef != math.Trunc(ef) {
		return Number{}, ErrDomain
	}
	r := math.Pow(bf, ef)
	if !finite(r) {
		return Number{}, ErrOverflow
	}
	return ApproxNumber(r), nil
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func smallExponent(r *big.Rat) (int64, bool) {
	if !r.IsInt() || !r.Num().IsInt64() {
		return 0, false
	}
	e := r.Num().Int64()
	return e, e >= -maxExactExponent && e <= maxExactExponent
}

func exactPowFits(r *big.Rat, e int64) bool {
	if e < 0 {
		e = -e
	}
	return int64(r.Num().BitLen()+r.Denom().BitLen())*e <= maxExactBits
}

// powRat raises r to an integer power; r must be non-zero when e < 0.
func powRat(r *big.Rat, e int64) *big.Rat {
	abs := e
	if abs < 0 {
		abs = -abs
	}
	k := big.NewInt(abs)
	num := new(big.Int).Exp(r.Num(), k, nil)
	den := new(big.Int).Exp(r.Denom(), k, nil)
	out := new(big.Rat).SetFrac(num, den)
	if e < 0 {
		out.Inv(out)
	}
	return out
}

// Func applies sqrt, sin, cos or tan to its argument.
type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SqrtOf(arg Expr) Expr { return funcOf("sqrt", arg).Simplify() }
func SinOf(arg Expr) Expr  { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr  { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr  { return funcOf("tan", arg).Simplify() }

var functions = map[string]func(Expr) Expr{
	"sqrt": SqrtOf,
	"sin":  SinOf,
	"cos":  CosOf,
	"tan":  TanOf,
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	switch f.name {
	case "sqrt":
		if n, ok := arg.(*Num); ok && !n.IsNegative() {
			if r, exact := ratSqrt(n.val); exact {
				return NRat(r)
			}
		}
	case "sin", "cos", "tan":
		if k, ok := piMultiple(arg); ok {
			if v, defined, known := exactTrig(f.name, k); known && defined {
				return NRat(v)
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) Eval() (Number, error) {
	if f.name != "sqrt" {
		if k, ok := piMultiple(f.arg); ok {
			if v, defined, known := exactTrig(f.name, k); known {
				if !defined {
					return Number{}, ErrDomain
				}
				return ExactNumber(v), nil
			}
		}
	}
	v, err := f.arg.Eval()
	if err != nil {
		return Number{}, err
	}
	var r float64
	switch f.name {
	case "sqrt":
		if v.Sign() < 0 {
			return Number{}, ErrDomain
		}
		if v.IsExact() {
			if s, exact := ratSqrt(v.rat); exact {
				return ExactNumber(s), nil
			}
		}
		r = math.Sqrt(v.Float64())
	case "sin":
		r = math.Sin(v.Float64())
	case "cos":
		r = math.Cos(v.Float64())
	case "tan":
		r = math.Tan(v.Float64())
	}
	if !finite(r) {
		return Number{}, ErrOverflow
	}
	return ApproxNumber(r), nil
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

// ratSqrt returns the square root of r when both numerator and denominator
// are perfect squares.
func ratSqrt(r *big.Rat) (*big.Rat, bool) {
	if r.Sign() < 0 {
		return nil, false
	}
	num := new(big.Int).Sqrt(r.Num())
	den := new(big.Int).Sqrt(r.Denom())
	if new(big.Int).Mul(num, num).Cmp(r.Num()) != 0 || new(big.Int).Mul(den, den).Cmp(r.Denom()) != 0 {
		return nil, false
	}
	return new(big.Rat).SetFrac(num, den), true
}

// piMultiple reports k when e is k*pi for a rational k (0 counts as 0*pi).
func piMultiple(e Expr) (*big.Rat, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsZero() {
			return new(big.Rat), true
		}
	case *Const:
		if v.Equal(Pi) {
			return big.NewRat(1, 1), true
		}
	case *Mul:
		if len(v.factors) == 2 && v.factors[1].Equal(Pi) {
			if c, ok := v.factors[0].(*Num); ok {
				return c.Rat(), true
			}
		}
	}
	return nil, false
}

// sinSixths holds sin(m*pi/6) for the m in [0, 12) where it is rational.
var sinSixths = map[int64]*big.Rat{
	0:  big.NewRat(0, 1),
	1:  big.NewRat(1, 2),
	3:  big.NewRat(1, 1),
	5:  big.NewRat(1, 2),
	6:  big.NewRat(0, 1),
	7:  big.NewRat(-1, 2),
	9:  big.NewRat(-1, 1),
	11: big.NewRat(-1, 2),
}

// exactTrig evaluates name(k*pi) exactly. known is false when the value is
// irrational; defined is false for the poles of tan.
func exactTrig(name string, k *big.Rat) (val *big.Rat, defined, known bool) {
	m6 := new(big.Rat).Mul(k, big.NewRat(6, 1))
	if !m6.IsInt() {
		return nil, false, false
	}
	m := new(big.Int).Mod(m6.Num(), big.NewInt(12)).Int64()
	s, sOK := sinSixths[m]
	c, cOK := sinSixths[(m+3)%12]
	switch name {
	case "sin":
		return s, sOK, sOK
	case "cos":
		return c, cOK, cOK
	case "tan":
		if !sOK || !cOK {
			return nil, false, false
		}
		if c.Sign() == 0 {
			return nil, false, true
		}
		return new(big.Rat).Quo(s, c), true, true
	}
	return nil, false, false
}

func equalAll(a, b []Expr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
