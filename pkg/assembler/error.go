package assembler

import (
	"fmt"

	"loki/pkg/lexer"
)

// Error is one assembly diagnostic.
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

func (a *Assembler) addError(pos lexer.Position, format string, args ...any) {
	a.errors = append(a.errors, &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)})
}

func (a *Assembler) addUnexpectedError(tok lexer.Token, expected string) {
	if tok.Type == lexer.EOF {
		a.addError(tok.Pos, "expected %s, found end of input", expected)
		return
	}
	a.addError(tok.Pos, "expected %s, found `%s`", expected, tok.Lexeme)
}

// Errors returns every diagnostic collected so far.
func (a *Assembler) Errors() []error {
	return a.errors
}
