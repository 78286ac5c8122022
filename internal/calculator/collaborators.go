package calculator

import "context"

// Storage is a named-slot key/value store. Get decodes the slot into dst
// and reports whether it existed.
type Storage interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// ClipboardReader is implemented by clipboards that can be read back.
type ClipboardReader interface {
	Text() (string, bool)
}

// Display receives the projection after every token.
type Display interface {
	Show(DisplayState)
}

// DisplayState is what a front end renders.
type DisplayState struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	State      State  `json:"state"`
}

// DisplayFunc adapts a function to Display.
type DisplayFunc func(DisplayState)

func (f DisplayFunc) Show(d DisplayState) { f(d) }
