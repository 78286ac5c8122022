package calculator

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNoOp marks a token the current buffer cannot absorb. It is never
	// shown to the user.
	ErrNoOp = errors.New("no-op")

	ErrNegativeSqrt = fmt.Errorf("%w: square root of a negative number", ErrMath)
)

// ---------------------------------------------------------------------------
// ExpressionState
// ---------------------------------------------------------------------------

// ExpressionState is the expression under construction plus the flag that
// decides whether the next token starts a fresh buffer.
type ExpressionState struct {
	buffer        string
	lastEvaluated bool
}

func (s *ExpressionState) Buffer() string      { return s.buffer }
func (s *ExpressionState) LastEvaluated() bool { return s.lastEvaluated }

// MarkEvaluated records a successful "=" on the current buffer.
func (s *ExpressionState) MarkEvaluated() { s.lastEvaluated = true }

func (s *ExpressionState) Reset() {
	s.buffer = ""
	s.lastEvaluated = false
}

// Clear is Reset as triggered by the AC key.
func (s *ExpressionState) Clear() { s.Reset() }

// Apply mutates the buffer for tok. After an evaluation every token except
// Clear and Equals first empties the buffer. On error the buffer is left as
// it was.
func (s *ExpressionState) Apply(tok Token) error {
	if s.lastEvaluated && tok.Kind != KindClear && tok.Kind != KindEquals {
		s.Reset()
	}

	var (
		next string
		err  error
	)
	switch tok.Kind {
	case KindClear:
		s.Clear()
		return nil
	case KindEquals:
		return nil
	case KindSignToggle:
		next, err = SignToggle(s.buffer)
	case KindPercent:
		next, err = Percent(s.buffer)
	case KindSqrt:
		next, err = Sqrt(s.buffer)
	case KindSquare:
		next, err = Square(s.buffer)
	case KindBackspace:
		next, err = Backspace(s.buffer)
	default:
		next, err = Append(s.buffer, tok)
	}
	if err != nil {
		return err
	}
	s.buffer = next
	return nil
}

// ---------------------------------------------------------------------------
// Buffer operations
// ---------------------------------------------------------------------------

// Append adds the literal of tok to buf, replacing a trailing operator with
// a new one and refusing tokens that would break the buffer invariants.
func Append(buf string, tok Token) (string, error) {
	switch tok.Kind {
	case KindDigit:
		return buf + tok.Text, nil

	case KindPoint:
		if r := lastRune(buf); r == ')' || r == []rune(Pi)[0] {
			return buf, ErrNoOp
		}
		if strings.Contains(buf[trailingRun(buf):], ".") {
			return buf, ErrNoOp
		}
		return buf + ".", nil

	case KindOperator:
		switch {
		case buf == "":
			return buf, ErrNoOp
		case isOperator(lastRune(buf)):
			return dropOperator(buf) + tok.Text, nil
		case endsOperand(buf):
			return buf + tok.Text, nil
		}
		return buf, ErrNoOp

	case KindParen:
		if tok.isOpenParen() {
			return buf + "(", nil
		}
		if tok.isCloseParen() && openDepth(buf) > 0 && endsOperand(buf) {
			return buf + ")", nil
		}
		return buf, ErrNoOp

	case KindFunc:
		return buf + tok.Text + "(", nil

	case KindConstant:
		return buf + Pi, nil
	}
	return buf, ErrNoOp
}

// SignToggle negates the last operand. A bare operand x becomes (-x), a
// group (x) becomes (-(x)), and a (-x) group is unwrapped again, so two
// toggles restore the buffer. A (+x) group flips to (-x).
func SignToggle(buf string) (string, error) {
	start, ok := lastOperand(buf)
	if !ok {
		return buf, ErrNoOp
	}
	operand := buf[start:]

	if strings.HasPrefix(operand, "(") {
		inner := operand[1 : len(operand)-1]
		switch {
		case strings.HasPrefix(inner, "-") && isAtomic(inner[1:]):
			// Unwrapped rather than flipped to (+x) so a second toggle restores the buffer.
			return buf[:start] + inner[1:], nil
		case strings.HasPrefix(inner, "+"):
			return buf[:start] + "(-" + inner[1:] + ")", nil
		}
	}
	return buf[:start] + "(-" + operand + ")", nil
}

// Percent replaces the last numeric operand with its hundredth.
func Percent(buf string) (string, error) {
	start, ok := lastOperand(buf)
	if !ok {
		return buf, ErrNoOp
	}
	value, ok := operandValue(buf[start:])
	if !ok {
		return buf, ErrNoOp
	}
	value.Quo(value, big.NewRat(100, 1))
	return buf[:start] + signedDecimal(value), nil
}

// Sqrt wraps the last numeric operand in sqrt(). Negative operands are
// refused with ErrNegativeSqrt.
func Sqrt(buf string) (string, error) {
	start, ok := lastOperand(buf)
	if !ok {
		return buf, ErrNoOp
	}
	operand := buf[start:]
	if operand != Pi {
		value, ok := operandValue(operand)
		if !ok {
			return buf, ErrNoOp
		}
		if value.Sign() < 0 {
			return buf, ErrNegativeSqrt
		}
	}
	return buf[:start] + "sqrt(" + operand + ")", nil
}

// Square raises the last operand to the power of two.
func Square(buf string) (string, error) {
	start, ok := lastOperand(buf)
	if !ok {
		return buf, ErrNoOp
	}
	operand := buf[start:]
	if strings.HasPrefix(operand, "(") {
		return buf[:start] + operand + "**2", nil
	}
	return buf[:start] + "(" + operand + ")**2", nil
}

// Backspace drops the last character. A trailing "**" goes as one unit so
// no lone "*" is left to pair with the next operator.
func Backspace(buf string) (string, error) {
	if buf == "" {
		return buf, ErrNoOp
	}
	if strings.HasSuffix(buf, "**") {
		return dropOperator(buf), nil
	}
	_, size := utf8.DecodeLastRuneInString(buf)
	return buf[:len(buf)-size], nil
}

// ---------------------------------------------------------------------------
// Scanning helpers
// ---------------------------------------------------------------------------

// dropOperator removes the trailing operator of buf, "**" included.
func dropOperator(buf string) string {
	if strings.HasSuffix(buf, "**") {
		return buf[:len(buf)-2]
	}
	return buf[:len(buf)-1]
}

func lastRune(buf string) rune {
	r, _ := utf8.DecodeLastRuneInString(buf)
	return r
}

func isOperator(r rune) bool { return r == '+' || r == '-' || r == '*' || r == '/' }
func isDigit(b byte) bool    { return b >= '0' && b <= '9' }
func isLetter(b byte) bool   { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }

// endsOperand reports whether buf ends with something a binary operator or
// a closing parenthesis may follow.
func endsOperand(buf string) bool {
	if buf == "" {
		return false
	}
	r := lastRune(buf)
	return r == ')' || r == '.' || (r >= '0' && r <= '9') || string(r) == Pi
}

func openDepth(buf string) int {
	return strings.Count(buf, "(") - strings.Count(buf, ")")
}

// trailingRun returns the start of the trailing run of digits and points.
func trailingRun(buf string) int {
	i := len(buf)
	for i > 0 && (isDigit(buf[i-1]) || buf[i-1] == '.') {
		i--
	}
	return i
}

// matchingOpen returns the index of the '(' closing at end, or -1.
func matchingOpen(s string, end int) int {
	depth := 0
	for i := end; i >= 0; i-- {
		switch s[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lastOperand locates the trailing operand of buf: a parenthesised group
// (including the name of a function applied to it), π, or a run of digits.
func lastOperand(buf string) (int, bool) {
	switch {
	case buf == "":
		return 0, false
	case strings.HasSuffix(buf, ")"):
		i := matchingOpen(buf, len(buf)-1)
		if i < 0 {
			return 0, false
		}
		for i > 0 && isLetter(buf[i-1]) {
			i--
		}
		return i, true
	case strings.HasSuffix(buf, Pi):
		return len(buf) - len(Pi), true
	}
	start := trailingRun(buf)
	if !strings.ContainsAny(buf[start:], "0123456789") {
		return 0, false
	}
	return start, true
}

// isAtomic reports whether s reads as a single operand, so that wrapping or
// unwrapping it in a sign group cannot change precedence.
func isAtomic(s string) bool {
	if s == "" {
		return false
	}
	start, ok := lastOperand(s)
	return ok && start == 0
}

// operandValue parses a bare number or a signed numeric group like (-2.5).
func operandValue(operand string) (*big.Rat, bool) {
	neg := false
	if strings.HasPrefix(operand, "(") && strings.HasSuffix(operand, ")") {
		inner := operand[1 : len(operand)-1]
		switch {
		case strings.HasPrefix(inner, "-"):
			neg, inner = true, inner[1:]
		case strings.HasPrefix(inner, "+"):
			inner = inner[1:]
		}
		operand = inner
	}
	if !isNumberLiteral(operand) {
		return nil, false
	}
	if strings.HasPrefix(operand, ".") {
		operand = "0" + operand
	}
	operand = strings.TrimSuffix(operand, ".")
	r, ok := new(big.Rat).SetString(operand)
	if !ok {
		return nil, false
	}
	if neg {
		r.Neg(r)
	}
	return r, true
}

func isNumberLiteral(s string) bool {
	digits, points := 0, 0
	for i := 0; i < len(s); i++ {
		switch {
		case isDigit(s[i]):
			digits++
		case s[i] == '.':
			points++
		default:
			return false
		}
	}
	return digits > 0 && points <= 1
}

// signedDecimal renders an exact terminating decimal, wrapping negatives
// as (-x) so the buffer never gains a bare leading sign.
func signedDecimal(r *big.Rat) string {
	if r.Sign() < 0 {
		return "(-" + exactDecimal(new(big.Rat).Neg(r)) + ")"
	}
	return exactDecimal(r)
}

// maxDecimalPlaces bounds the rendering of non-terminating fractions.
const maxDecimalPlaces = 64

func exactDecimal(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	return trimDecimal(r.FloatString(decimalPlaces(r.Denom())))
}

// decimalPlaces is the number of fractional digits needed to write 1/denom
// exactly, or maxDecimalPlaces when the expansion does not terminate.
func decimalPlaces(denom *big.Int) int {
	d := new(big.Int).Set(denom)
	twos := int(d.TrailingZeroBits())
	d.Rsh(d, uint(twos))

	fives := 0
	five, q, m := big.NewInt(5), new(big.Int), new(big.Int)
	for {
		q.QuoRem(d, five, m)
		if m.Sign() != 0 {
			break
		}
		d.Set(q)
		fives++
	}
	if d.Cmp(big.NewInt(1)) != 0 {
		return maxDecimalPlaces
	}
	return min(max(twos, fives), maxDecimalPlaces)
}
