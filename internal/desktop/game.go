// Package desktop is the windowed calculator front end, drawn with ebiten.
package desktop

import (
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"github.com/joaograca03/CalcApp/internal/calculator"
	"github.com/joaograca03/CalcApp/internal/keypad"
	"github.com/joaograca03/CalcApp/internal/observability"
)

const (
	margin        = 12
	displayHeight = 72
	cellWidth     = 72
	cellHeight    = 48
	cellGap       = 6
	panelWidth    = 260
	rowHeight     = 36
	glyphWidth    = 6
	glyphHeight   = 16
)

var (
	background  = keypad.RGBA("#202124")
	displayFill = keypad.RGBA("#000000")
	panelFill   = keypad.RGBA("#2b2b2b")
	errorText   = color.RGBA{R: 0xff, G: 0x52, B: 0x52, A: 0xff}
)

// Game implements ebiten.Game over a calculator session.
type Game struct {
	ctx     context.Context
	session *calculator.Session
	rows    [][]keypad.Button
	grid    keypad.Grid

	showHistory bool
	status      string
	chars       []rune
}

func NewGame(ctx context.Context, s *calculator.Session) *Game {
	return &Game{
		ctx:     ctx,
		session: s,
		rows:    keypad.Rows(),
		grid: keypad.Grid{
			Origin: image.Pt(margin, margin+displayHeight+margin),
			Cell:   image.Pt(cellWidth, cellHeight),
			Gap:    cellGap,
		},
	}
}

// WindowSize is the window size that fits the keypad and the history panel.
func (g *Game) WindowSize() (int, int) {
	size := g.grid.Size(g.rows)
	return g.keypadWidth() + panelWidth + margin, g.grid.Origin.Y + size.Y + margin
}

func (g *Game) keypadWidth() int {
	return margin + g.grid.Size(g.rows).X + margin
}

func (g *Game) Update() error {
	g.chars = ebiten.AppendInputChars(g.chars[:0])
	for _, r := range g.chars {
		if label, ok := keypad.LabelForRune(r); ok {
			g.press(label)
		}
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter), inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter):
		g.press(calculator.LabelEquals)
	case inpututil.IsKeyJustPressed(ebiten.KeyBackspace):
		g.press(calculator.LabelBackspace)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyDelete):
		g.press(calculator.LabelClear)
	case inpututil.IsKeyJustPressed(ebiten.KeyV) && ctrlPressed():
		g.paste()
	case inpututil.IsKeyJustPressed(ebiten.KeyH):
		g.showHistory = !g.showHistory
	}

	left := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	right := inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	if !left && !right {
		return nil
	}
	p := image.Pt(ebiten.CursorPosition())

	if b, ok := g.grid.ButtonAt(g.rows, p); ok && left {
		g.click(b)
		return nil
	}
	if i, ok := g.historyRowAt(p); ok {
		if left {
			g.copy(i)
		} else {
			g.delete(i)
		}
	}
	return nil
}

func (g *Game) click(b keypad.Button) {
	switch b.Label {
	case keypad.ToggleHistory:
		g.showHistory = !g.showHistory
	case keypad.ClearHistory:
		g.session.ClearHistory(g.ctx)
		g.status = "history cleared"
	default:
		g.press(b.Label)
	}
}

func (g *Game) press(label string) {
	if _, err := g.session.Press(g.ctx, label); err != nil {
		observability.Logger.Warn("ignoring key", zap.String("label", label), zap.Error(err))
		return
	}
	g.status = ""
}

func (g *Game) copy(i int) {
	if _, err := g.session.CopyResult(g.ctx, i); err != nil {
		observability.Logger.Warn("copying result failed", zap.Int("index", i), zap.Error(err))
		g.status = err.Error()
		return
	}
	text, _ := g.session.ClipboardText()
	g.status = "copied " + text
}

// paste types the clipboard contents as if each character were a key.
func (g *Game) paste() {
	text, ok := g.session.ClipboardText()
	if !ok {
		g.status = "clipboard is empty"
		return
	}
	for _, r := range text {
		if label, ok := keypad.LabelForRune(r); ok {
			g.press(label)
		}
	}
}

func ctrlPressed() bool {
	return ebiten.IsKeyPressed(ebiten.KeyControl) || ebiten.IsKeyPressed(ebiten.KeyMeta)
}

func (g *Game) delete(i int) {
	if err := g.session.DeleteHistory(g.ctx, i); err != nil {
		g.status = err.Error()
		return
	}
	g.status = fmt.Sprintf("deleted entry %d", i+1)
}

// historyRowAt returns the index of the history line under p.
func (g *Game) historyRowAt(p image.Point) (int, bool) {
	if !g.showHistory {
		return 0, false
	}
	x0 := g.keypadWidth()
	y0 := margin + glyphHeight + cellGap
	if p.X < x0 || p.X >= x0+panelWidth || p.Y < y0 {
		return 0, false
	}
	i := (p.Y - y0) / rowHeight
	if i >= len(g.session.History()) {
		return 0, false
	}
	return i, true
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)

	d := g.session.Display()
	w := g.keypadWidth() - 2*margin
	vector.DrawFilledRect(screen, margin, margin, float32(w), displayHeight, displayFill, false)
	ebitenutil.DebugPrintAt(screen, keypad.ASCII(fit(d.Expression, w)), margin+8, margin+8)
	ebitenutil.DebugPrintAt(screen, keypad.ASCII(fit(d.Result, w)), margin+8, margin+displayHeight-glyphHeight-8)

	for r, row := range g.rows {
		col := 0
		for _, b := range row {
			rect := g.grid.Rect(r, col, b.Span)
			col += b.Span
			fillRect(screen, rect, keypad.RGBA(b.Style.Background))
			label := keypad.ASCII(b.Label)
			x := rect.Min.X + (rect.Dx()-len(label)*glyphWidth)/2
			y := rect.Min.Y + (rect.Dy()-glyphHeight)/2
			ebitenutil.DebugPrintAt(screen, label, x, y)
		}
	}

	if g.showHistory {
		g.drawHistory(screen)
	}
	if d.State == calculator.StateErrored {
		vector.DrawFilledRect(screen, margin, margin+displayHeight-2, float32(w), 2, errorText, false)
	}
}

func (g *Game) drawHistory(screen *ebiten.Image) {
	x0 := g.keypadWidth()
	_, h := g.WindowSize()
	vector.DrawFilledRect(screen, float32(x0), margin, panelWidth-margin, float32(h-2*margin), panelFill, false)

	ebitenutil.DebugPrintAt(screen, "History (left: copy, right: delete)", x0+6, margin)
	y := margin + glyphHeight + cellGap
	for _, e := range g.session.History() {
		line := keypad.ASCII(fit(e.Expression+" = "+e.Result, panelWidth-2*margin))
		ebitenutil.DebugPrintAt(screen, line, x0+6, y)
		ebitenutil.DebugPrintAt(screen, e.Timestamp, x0+6, y+glyphHeight)
		y += rowHeight
	}
	if g.status != "" {
		ebitenutil.DebugPrintAt(screen, keypad.ASCII(g.status), x0+6, h-margin-glyphHeight)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.WindowSize()
}

func fillRect(dst *ebiten.Image, r image.Rectangle, c color.Color) {
	vector.DrawFilledRect(dst, float32(r.Min.X), float32(r.Min.Y), float32(r.Dx()), float32(r.Dy()), c, false)
}

// fit keeps the tail of s that fits in width pixels of the debug font.
func fit(s string, width int) string {
	runes := []rune(s)
	n := width / glyphWidth
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}
