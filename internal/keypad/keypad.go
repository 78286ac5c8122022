// Package keypad describes the calculator's buttons: their labels, how
// they are grouped and styled, and where they sit on screen.
package keypad

import (
	"fmt"
	"image"
	"image/color"
	"strings"
)

// Category groups buttons that share a role and therefore a style.
type Category int

const (
	Digit   Category = iota // digits and the decimal point
	Action                  // binary operators and "="
	Extra                   // functions, parentheses, sign, percent, editing
	Command                 // front-end commands that are not calculator tokens
)

var categoryNames = [...]string{
	Digit:   "digit",
	Action:  "action",
	Extra:   "extra",
	Command: "command",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

func (c Category) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Style is the colour pair a button is drawn with, as #rrggbb strings.
type Style struct {
	Foreground string `json:"foreground"`
	Background string `json:"background"`
}

// StyleFor is the only place styling is decided.
func StyleFor(c Category) Style {
	switch c {
	case Digit:
		return Style{Foreground: "#ffffff", Background: "#3d3d3d"}
	case Action:
		return Style{Foreground: "#ffffff", Background: "#ff9800"}
	case Extra:
		return Style{Foreground: "#263238", Background: "#cfd8dc"}
	}
	return Style{Foreground: "#ffffff", Background: "#607d8b"}
}

// Button is one key. Span is the number of grid columns it covers.
type Button struct {
	Label    string   `json:"label"`
	Category Category `json:"category"`
	Style    Style    `json:"style"`
	Span     int      `json:"span"`
}

func newButton(label string, c Category) Button {
	return Button{Label: label, Category: c, Style: StyleFor(c), Span: 1}
}

// Command labels.
const (
	ToggleHistory = "History"
	ClearHistory  = "Clear History"
)

// Columns is the width of the keypad grid.
const Columns = 4

// Rows returns the keypad, top row first. Every row spans Columns columns.
func Rows() [][]Button {
	d := func(l string) Button { return newButton(l, Digit) }
	a := func(l string) Button { return newButton(l, Action) }
	x := func(l string) Button { return newButton(l, Extra) }
	zero := d("0")
	zero.Span = 2
	history := newButton(ToggleHistory, Command)
	history.Span = 2
	clearAll := newButton(ClearHistory, Command)

	return [][]Button{
		{x("AC"), x("+/-"), x("%"), a("/")},
		{d("7"), d("8"), d("9"), a("*")},
		{d("4"), d("5"), d("6"), a("-")},
		{d("1"), d("2"), d("3"), a("+")},
		{zero, d("."), a("=")},
		{x("("), x(")"), x("√"), x("⌫")},
		{x("sin"), x("cos"), x("tan"), x("π")},
		{x("x²"), history, clearAll},
	}
}

// Labels returns every calculator label on the keypad, commands excluded.
func Labels() []string {
	var out []string
	for _, row := range Rows() {
		for _, b := range row {
			if b.Category != Command {
				out = append(out, b.Label)
			}
		}
	}
	return out
}

var asciiReplacer = strings.NewReplacer(
	"√", "sqrt",
	"⌫", "<-",
	"π", "pi",
	"x²", "x^2",
)

// ASCII rewrites labels and display text for fonts without the symbols.
func ASCII(s string) string { return asciiReplacer.Replace(s) }

// RGBA parses a #rrggbb colour.
func RGBA(hex string) color.RGBA {
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{A: 0xff}
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// Grid places the keypad on screen.
type Grid struct {
	Origin image.Point
	Cell   image.Point // size of one cell
	Gap    int
}

// Rect is the screen rectangle of the button starting at column col of row.
func (g Grid) Rect(row, col, span int) image.Rectangle {
	topLeft := g.Origin.Add(image.Pt(col*(g.Cell.X+g.Gap), row*(g.Cell.Y+g.Gap)))
	w := span*g.Cell.X + (span-1)*g.Gap
	return image.Rectangle{Min: topLeft, Max: topLeft.Add(image.Pt(w, g.Cell.Y))}
}

// ButtonAt returns the button under p, if any.
func (g Grid) ButtonAt(rows [][]Button, p image.Point) (Button, bool) {
	for r, row := range rows {
		col := 0
		for _, b := range row {
			if p.In(g.Rect(r, col, b.Span)) {
				return b, true
			}
			col += b.Span
		}
	}
	return Button{}, false
}

// Size is the extent of the whole grid.
func (g Grid) Size(rows [][]Button) image.Point {
	if len(rows) == 0 {
		return image.Point{}
	}
	last := g.Rect(len(rows)-1, Columns-1, 1)
	return last.Max.Sub(g.Origin)
}

// LabelForRune maps a typed character onto the keypad label it stands for.
func LabelForRune(r rune) (string, bool) {
	switch {
	case r >= '0' && r <= '9':
		return string(r), true
	case strings.ContainsRune("+-*/().%", r):
		return string(r), true
	}
	switch r {
	case '=':
		return "=", true
	case '^':
		return "x²", true
	case 'p', 'π':
		return "π", true
	case 'r', '√':
		return "√", true
	case 's':
		return "sin", true
	case 'c':
		return "cos", true
	case 't':
		return "tan", true
	case 'n':
		return "+/-", true
	}
	return "", false
}
