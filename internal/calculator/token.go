package calculator

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownToken is returned for labels that match no keypad button.
var ErrUnknownToken = errors.New("unknown token")

// Kind classifies a button press.
type Kind int

const (
	KindDigit Kind = iota
	KindPoint
	KindOperator
	KindParen
	KindFunc
	KindConstant
	KindSignToggle
	KindPercent
	KindSqrt
	KindSquare
	KindBackspace
	KindEquals
	KindClear
)

var kindNames = [...]string{
	KindDigit:      "digit",
	KindPoint:      "point",
	KindOperator:   "operator",
	KindParen:      "paren",
	KindFunc:       "func",
	KindConstant:   "constant",
	KindSignToggle: "sign_toggle",
	KindPercent:    "percent",
	KindSqrt:       "sqrt",
	KindSquare:     "square",
	KindBackspace:  "backspace",
	KindEquals:     "equals",
	KindClear:      "clear",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Token is one button press. Text holds the literal the token contributes
// to the buffer (digit, operator, paren, function name or π).
type Token struct {
	Kind Kind
	Text string
}

func (t Token) String() string {
	if t.Text == "" {
		return t.Kind.String()
	}
	return t.Kind.String() + "(" + t.Text + ")"
}

// Pi is the placeholder the buffer holds for the circle constant.
const Pi = "π"

// Button labels that do not map one-to-one onto buffer text.
const (
	LabelClear      = "AC"
	LabelSignToggle = "+/-"
	LabelPercent    = "%"
	LabelSqrt       = "√"
	LabelBackspace  = "⌫"
	LabelSquare     = "x²"
	LabelEquals     = "="
)

var labelAliases = map[string]string{
	"×":   "*",
	"÷":   "/",
	"−":   "-",
	"pi":  Pi,
	"C":   LabelClear,
	"±":   LabelSignToggle,
	"x^2": LabelSquare,
}

var fixedTokens = map[string]Token{
	LabelClear:      {Kind: KindClear},
	LabelSignToggle: {Kind: KindSignToggle},
	LabelPercent:    {Kind: KindPercent},
	LabelSqrt:       {Kind: KindSqrt},
	LabelBackspace:  {Kind: KindBackspace},
	LabelSquare:     {Kind: KindSquare},
	LabelEquals:     {Kind: KindEquals},
	".":             {Kind: KindPoint, Text: "."},
	"(":             {Kind: KindParen, Text: "("},
	")":             {Kind: KindParen, Text: ")"},
	"+":             {Kind: KindOperator, Text: "+"},
	"-":             {Kind: KindOperator, Text: "-"},
	"*":             {Kind: KindOperator, Text: "*"},
	"/":             {Kind: KindOperator, Text: "/"},
	"sin":           {Kind: KindFunc, Text: "sin"},
	"cos":           {Kind: KindFunc, Text: "cos"},
	"tan":           {Kind: KindFunc, Text: "tan"},
	"sqrt":          {Kind: KindFunc, Text: "sqrt"},
	Pi:              {Kind: KindConstant, Text: Pi},
}

// ParseToken maps a button label onto its token. Surrounding whitespace is
// ignored, so " + " and "+" are the same operator.
func ParseToken(label string) (Token, error) {
	l := strings.TrimSpace(label)
	if alias, ok := labelAliases[l]; ok {
		l = alias
	}
	if len(l) == 1 && l[0] >= '0' && l[0] <= '9' {
		return Token{Kind: KindDigit, Text: l}, nil
	}
	if tok, ok := fixedTokens[l]; ok {
		return tok, nil
	}
	return Token{}, fmt.Errorf("%w: %q", ErrUnknownToken, label)
}

// MustParseToken is ParseToken for labels known at compile time.
func MustParseToken(label string) Token {
	tok, err := ParseToken(label)
	if err != nil {
		panic(err)
	}
	return tok
}

func (t Token) isOpenParen() bool  { return t.Kind == KindParen && t.Text == "(" }
func (t Token) isCloseParen() bool { return t.Kind == KindParen && t.Text == ")" }
