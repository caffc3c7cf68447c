package cql

import "strings"

// Tokenize splits text into tokens. At every step only the token types
// allowed after the previous token are tried, in order; the first one
// that matches wins. The returned slice always ends with an END token.
func Tokenize(text string) ([]Token, error) {
	var tokens []Token
	expected := Start
	pos := 0
	for {
		pos += len(text[pos:]) - len(strings.TrimLeft(text[pos:], " \t\r\n"))
		rest := text[pos:]

		tok, ok := nextToken(rest, expected)
		if !ok {
			return nil, &ParseError{Remainder: rest, Pos: pos, Expected: expected}
		}
		tok.Pos = pos
		tokens = append(tokens, tok)
		if tok.Type == TokenEnd {
			return tokens, nil
		}
		pos += len(tok.Text)
		expected = Follows[tok.Type]
	}
}

func nextToken(text string, expected []TokenType) (Token, bool) {
	for _, t := range expected {
		n, ok := matchers[t].match(text)
		if !ok {
			continue
		}
		return Token{Type: t, Text: text[:n]}, true
	}
	return Token{}, false
}
