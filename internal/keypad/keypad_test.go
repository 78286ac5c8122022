package keypad_test

import (
	"image"
	"testing"

	"github.com/joaograca03/CalcApp/internal/calculator"
	"github.com/joaograca03/CalcApp/internal/keypad"
)

func TestEveryLabelParses(t *testing.T) {
	for _, label := range keypad.Labels() {
		if _, err := calculator.ParseToken(label); err != nil {
			t.Fatalf("label %q: %v", label, err)
		}
	}
}

func TestRowsFillTheGrid(t *testing.T) {
	for i, row := range keypad.Rows() {
		width := 0
		for _, b := range row {
			width += b.Span
		}
		if width != keypad.Columns {
			t.Fatalf("row %d: expected width %d, got %d", i, keypad.Columns, width)
		}
	}
}

func TestStyleIsAFunctionOfCategory(t *testing.T) {
	for _, row := range keypad.Rows() {
		for _, b := range row {
			if b.Style != keypad.StyleFor(b.Category) {
				t.Fatalf("button %q: style %+v does not match category %s", b.Label, b.Style, b.Category)
			}
		}
	}
	if keypad.StyleFor(keypad.Digit) == keypad.StyleFor(keypad.Action) {
		t.Fatal("expected digits and actions to be styled differently")
	}
}

func TestButtonAt(t *testing.T) {
	g := keypad.Grid{Origin: image.Pt(10, 100), Cell: image.Pt(50, 40), Gap: 5}
	rows := keypad.Rows()

	tests := []struct {
		name  string
		p     image.Point
		want  string
		found bool
	}{
		{name: "top left", p: image.Pt(11, 101), want: "AC", found: true},
		{name: "divide", p: image.Pt(10+3*55+1, 101), want: "/", found: true},
		{name: "wide zero second cell", p: image.Pt(10+55+10, 100+4*45+1), want: "0", found: true},
		{name: "equals after wide zero", p: image.Pt(10+3*55+1, 100+4*45+1), want: "=", found: true},
		{name: "gap", p: image.Pt(10+52, 101), found: false},
		{name: "above", p: image.Pt(11, 50), found: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, ok := g.ButtonAt(rows, tc.p)
			if ok != tc.found {
				t.Fatalf("expected found=%t, got %t (%q)", tc.found, ok, b.Label)
			}
			if ok && b.Label != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, b.Label)
			}
		})
	}
}

func TestASCII(t *testing.T) {
	if got := keypad.ASCII("sqrt(2)+π √ x²"); got != "sqrt(2)+pi sqrt x^2" {
		t.Fatalf("unexpected rewrite %q", got)
	}
}

func TestRGBA(t *testing.T) {
	c := keypad.RGBA("#ff9800")
	if c.R != 0xff || c.G != 0x98 || c.B != 0 || c.A != 0xff {
		t.Fatalf("unexpected colour %+v", c)
	}
}

func TestLabelForRune(t *testing.T) {
	tests := []struct {
		r    rune
		want string
		ok   bool
	}{
		{'7', "7", true},
		{'+', "+", true},
		{'(', "(", true},
		{'%', "%", true},
		{'=', "=", true},
		{'^', "x²", true},
		{'p', "π", true},
		{'r', "√", true},
		{'s', "sin", true},
		{'n', "+/-", true},
		{'x', "", false},
		{' ', "", false},
	}

	for _, tt := range tests {
		got, ok := keypad.LabelForRune(tt.r)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("%q: expected (%q, %v), got (%q, %v)", tt.r, tt.want, tt.ok, got, ok)
		}
		if ok {
			if _, err := calculator.ParseToken(got); err != nil {
				t.Fatalf("%q maps to unparseable label %q: %v", tt.r, got, err)
			}
		}
	}
}
