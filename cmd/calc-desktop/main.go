// Command calc-desktop opens the calculator in a window.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/joaograca03/CalcApp/internal/app"
	"github.com/joaograca03/CalcApp/internal/desktop"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	a, err := app.Bootstrap(ctx, app.Options{SystemClipboard: true})
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	game := desktop.NewGame(ctx, a.Session)
	ebiten.SetWindowSize(game.WindowSize())
	ebiten.SetWindowTitle("Calculator")

	return ebiten.RunGame(game)
}
