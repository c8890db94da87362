package lexer_test

import (
	"loki/pkg/lexer"
	"testing"
)

func TestComments(t *testing.T) {
	input := `; test comment
.code main ; another test comment
; another another test comment
  RETURN;trailing
.end`

	mylexer := lexer.NewLexer(input)
	expectedTokens := []lexer.TokenType{
		lexer.CODE, lexer.ID,
		lexer.ID,
		lexer.END,
		lexer.EOF,
	}

	for i, expected := range expectedTokens {
		token := mylexer.NextToken()
		if token.Type != expected {
			t.Errorf("Token %d: expected %s, got %s", i, expected, token.Type)
		}
	}
}
