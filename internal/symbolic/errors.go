package symbolic

import (
	"errors"
	"fmt"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrDomain         = errors.New("argument outside function domain")
	ErrOverflow       = errors.New("result is not a finite number")
)

// SyntaxError reports malformed input together with the byte offset at
// which parsing stopped.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at %d: %s", e.Pos, e.Msg)
}
