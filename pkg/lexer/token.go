package lexer

import (
	"fmt"
)

type TokenType int

type Token struct {
	Type    TokenType // Type of the token
	Lexeme  string    // Actual string from source code
	Literal string    // Literal value (if applicable), empty string if not
	Pos     Position  // Position in source code
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, literal string, Pos Position) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Pos:     Pos,
	}
}

const (
	EOF TokenType = iota // End of file

	CODE // .code
	END  // .end

	NIL   // nil
	TRUE  // true
	FALSE // false

	ID  // identifier, mnemonic or label name
	NUM // signed integer
	REF // @name, reference to a code block
	VAR // $name, reference to a var cell

	COLON // :

	ILLEGAL // illegal token
)

var Keywords = map[string]TokenType{
	"nil":   NIL,
	"true":  TRUE,
	"false": FALSE,
}

var tokenNames = map[TokenType]string{
	EOF:     "$",
	CODE:    ".code",
	END:     ".end",
	NIL:     "nil",
	TRUE:    "true",
	FALSE:   "false",
	ID:      "id",
	NUM:     "num",
	REF:     "ref",
	VAR:     "var",
	COLON:   ":",
	ILLEGAL: "illegal",
}

// String returns a string representation of the Token
func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("T_{%s, %v, nil, %s}", t.Type, t.Lexeme, t.Pos)
	}

	return fmt.Sprintf("T_{%s, %v, %q, %s}", t.Type, t.Lexeme, t.Literal, t.Pos)
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if str, ok := tokenNames[t]; ok {
		return str
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// IsKeyword checks if the given identifier is a keyword and returns its TokenType if it is
func IsKeyword(identifier string) (TokenType, bool) {
	tokenType, ok := Keywords[identifier]
	return tokenType, ok
}

// IsConstant reports whether tokens of this type can be a LOAD_CONST operand
func (t TokenType) IsConstant() bool {
	switch t {
	case NIL, TRUE, FALSE, NUM, REF, VAR:
		return true
	default:
		return false
	}
}
