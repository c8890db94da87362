package lexer_test

import (
	"loki/pkg/lexer"
	"testing"
)

func TestNumbers(t *testing.T) {
	tests := []struct {
		input       string
		expected    lexer.TokenType
		lexeme      string
		description string
	}{
		{"42", lexer.NUM, "42", "integer"},
		{"0", lexer.NUM, "0", "zero"},
		{"-7", lexer.NUM, "-7", "negative"},
		{"+3", lexer.NUM, "+3", "explicit plus"},
		{"1000000", lexer.NUM, "1000000", "large integer"},
		{"12abc", lexer.NUM, "12", "digits before identifier"},

		{"nil", lexer.NIL, "nil", "nil keyword"},
		{"true", lexer.TRUE, "true", "true keyword"},
		{"false", lexer.FALSE, "false", "false keyword"},
		{"nilly", lexer.ID, "nilly", "identifier with keyword prefix"},

		{"@fact", lexer.REF, "@fact", "code reference"},
		{"$counter", lexer.VAR, "$counter", "var reference"},
		{"fact-iter", lexer.ID, "fact-iter", "identifier with dash"},
		{"zero?", lexer.ID, "zero?", "predicate identifier"},
		{".code", lexer.CODE, ".code", "code directive"},
		{".end", lexer.END, ".end", "end directive"},
	}

	for _, test := range tests {
		tokenType, lexeme, matched := lexer.MatchToken(test.input)
		if !matched {
			t.Errorf("Failed to match %s (%s)", test.input, test.description)
		}
		if tokenType != test.expected {
			t.Errorf("Input %s (%s): expected %s, got %s", test.input, test.description, test.expected, tokenType)
		}
		if lexeme != test.lexeme {
			t.Errorf("Input %s (%s): expected lexeme %s, got %s", test.input, test.description, test.lexeme, lexeme)
		}
	}
}

func TestIllegal(t *testing.T) {
	for _, input := range []string{"-", "#", ".codex", "@", "$1"} {
		tokenType, _, matched := lexer.MatchToken(input)
		if matched || tokenType != lexer.ILLEGAL {
			t.Errorf("Input %q: expected ILLEGAL, got %s (matched=%v)", input, tokenType, matched)
		}
	}
}
