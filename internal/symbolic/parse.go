package symbolic

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ============================================================
// Lexer
// ============================================================

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokPow
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) describe() string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", t.text)
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		r, size := utf8.DecodeRuneInString(src[i:])
		switch {
		case unicode.IsSpace(r):
			i += size
		case r == 'π':
			toks = append(toks, token{kind: tokIdent, text: "pi", pos: i})
			i += size
		case isDigit(r) || r == '.':
			end, err := scanNumber(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{kind: tokNumber, text: src[i:end], pos: i})
			i = end
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRuneInString(src[i:])
				if !(unicode.IsLetter(r) || isDigit(r) || r == '_') || r == 'π' {
					break
				}
				i += size
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case r == '*' && strings.HasPrefix(src[i:], "**"):
			toks = append(toks, token{kind: tokPow, text: "**", pos: i})
			i += 2
		default:
			kind, ok := punctuation[r]
			if !ok {
				return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
			}
			toks = append(toks, token{kind: kind, text: string(r), pos: i})
			i += size
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(src)}), nil
}

var punctuation = map[rune]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'^': tokPow,
	'(': tokLParen,
	')': tokRParen,
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

const maxExponentDigits = 4

// scanNumber accepts digits with at most one decimal point and an optional
// exponent, returning the end offset.
func scanNumber(src string, start int) (int, error) {
	i := start
	digits, points := 0, 0
	for i < len(src) && (isDigit(rune(src[i])) || src[i] == '.') {
		if src[i] == '.' {
			points++
		} else {
			digits++
		}
		i++
	}
	if digits == 0 {
		return 0, &SyntaxError{Pos: start, Msg: "number without digits"}
	}
	if points > 1 {
		return 0, &SyntaxError{Pos: start, Msg: fmt.Sprintf("malformed number %q", src[start:i])}
	}
	if i < len(src) && (src[i] == 'e' || src[i] == 'E') {
		j := i + 1
		if j < len(src) && (src[j] == '+' || src[j] == '-') {
			j++
		}
		if j < len(src) && isDigit(rune(src[j])) {
			expStart := j
			for j < len(src) && isDigit(rune(src[j])) {
				j++
			}
			if j-expStart > maxExponentDigits {
				return 0, &SyntaxError{Pos: start, Msg: "exponent too large"}
			}
			i = j
		}
	}
	return i, nil
}

// ============================================================
// Parser
// ============================================================

// Parse turns an infix expression over + - * / ** ^ ( ) sqrt sin cos tan pi
// into a simplified expression tree.
func Parse(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	if toks[0].kind == tokEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	p := &parser{toks: toks}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		if t.kind == tokRParen {
			return nil, &SyntaxError{Pos: t.pos, Msg: "unbalanced ')'"}
		}
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected " + t.describe()}
	}
	return e, nil
}

// Evaluate parses src and evaluates it.
func Evaluate(src string) (Number, error) {
	e, err := Parse(src)
	if err != nil {
		return Number{}, err
	}
	return e.Eval()
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

// expr = term { ("+" | "-") term }
func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokPlus && op != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == tokMinus {
			right = MulOf(N(-1), right)
		}
		left = AddOf(left, right)
	}
}

// term = unary { ("*" | "/") unary }
func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().kind
		if op != tokStar && op != tokSlash {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		if op == tokSlash {
			right = PowOf(right, N(-1))
		}
		left = MulOf(left, right)
	}
}

// unary = ("+" | "-") unary | power
func (p *parser) unary() (Expr, error) {
	switch p.peek().kind {
	case tokPlus:
		p.next()
		return p.unary()
	case tokMinus:
		p.next()
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return MulOf(N(-1), e), nil
	}
	return p.power()
}

// power = primary [ "**" unary ], right associative.
func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokPow {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return PowOf(base, exp), nil
}

// primary = number | "pi" | name "(" expr ")" | "(" expr ")"
func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		r, ok := new(big.Rat).SetString(normalizeNumber(t.text))
		if !ok {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("malformed number %q", t.text)}
		}
		return NRat(r), nil
	case tokIdent:
		if fn, ok := functions[t.text]; ok {
			arg, err := p.group(t.text)
			if err != nil {
				return nil, err
			}
			return fn(arg), nil
		}
		if t.text == "pi" {
			return Pi, nil
		}
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unknown name %q", t.text)}
	case tokLParen:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if c := p.next(); c.kind != tokRParen {
			return nil, &SyntaxError{Pos: c.pos, Msg: "expected ')' but found " + c.describe()}
		}
		return e, nil
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: "expected operand but found " + t.describe()}
}

func (p *parser) group(name string) (Expr, error) {
	if t := p.next(); t.kind != tokLParen {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("expected '(' after %s", name)}
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.next(); t.kind != tokRParen {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unclosed %s(", name)}
	}
	return e, nil
}

// normalizeNumber gives big.Rat a leading and trailing digit around the point.
func normalizeNumber(s string) string {
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	if i := strings.IndexAny(s, "eE"); i > 0 && s[i-1] == '.' {
		s = s[:i] + "0" + s[i:]
	} else if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}
