package lexer

import (
	"regexp"
)

const name = `[A-Za-z_][A-Za-z0-9_\-!?*]*`

// Token regex patterns
var tokenRegexes = map[TokenType]*regexp.Regexp{
	CODE:  regexp.MustCompile(`^\.code\b`),
	END:   regexp.MustCompile(`^\.end\b`),
	NUM:   regexp.MustCompile(`^[+-]?\d+`),
	REF:   regexp.MustCompile(`^@` + name),
	VAR:   regexp.MustCompile(`^\$` + name),
	ID:    regexp.MustCompile(`^` + name),
	COLON: regexp.MustCompile(`^:`),
}

var (
	whitespaceRegex = regexp.MustCompile(`^\s+`)
	commentRegex    = regexp.MustCompile(`^;[^\n]*`)
)

// Token precedence order for matching
var tokenPrecedenceOrder = []TokenType{
	CODE, END, NUM, REF, VAR, ID, COLON,
}

// Get the regex pattern for a token type
func (t TokenType) Regex() *regexp.Regexp {
	return tokenRegexes[t]
}

// Match the first token at the start of the string. Whitespace and comments
// are reported as EOF with a non-empty lexeme.
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	} else if match := whitespaceRegex.FindString(s); match != "" {
		return EOF, match, true
	} else if match := commentRegex.FindString(s); match != "" {
		return EOF, match, true
	}

	for _, tokenType := range tokenPrecedenceOrder {
		if match := tokenRegexes[tokenType].FindString(s); match != "" {
			if tokenType == ID {
				if kw, ok := IsKeyword(match); ok {
					return kw, match, true
				}
			}
			return tokenType, match, true
		}
	}

	return ILLEGAL, string(s[0]), false
}
