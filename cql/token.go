package cql

import (
	"regexp"

	"github.com/hugr-lab/ogcfilter/geometry"
)

// TokenType identifies a lexical class of the CQL grammar.
type TokenType string

const (
	TokenInclude    TokenType = "INCLUDE"
	TokenNot        TokenType = "NOT"
	TokenGeometry   TokenType = "GEOMETRY"
	TokenSpatial    TokenType = "SPATIAL"
	TokenFunction   TokenType = "FUNCTION"
	TokenProperty   TokenType = "PROPERTY"
	TokenLParen     TokenType = "LPAREN"
	TokenRParen     TokenType = "RPAREN"
	TokenComparison TokenType = "COMPARISON"
	TokenBetween    TokenType = "BETWEEN"
	TokenIsNull     TokenType = "IS_NULL"
	TokenComma      TokenType = "COMMA"
	TokenLogical    TokenType = "LOGICAL"
	TokenValue      TokenType = "VALUE"
	TokenEnd        TokenType = "END"
)

// Token is a single lexeme. Pos is the byte offset of Text in the input.
type Token struct {
	Type TokenType
	Text string
	Pos  int
}

// Start is the set of token types accepted at the beginning of a filter.
var Start = []TokenType{TokenInclude, TokenNot, TokenGeometry, TokenSpatial, TokenFunction, TokenProperty, TokenLParen}

// Follows lists, for every token type, the token types that may legally
// come next. Candidates are tried in the listed order, so keywords precede
// the identifier patterns that would otherwise swallow them.
var Follows = map[TokenType][]TokenType{
	TokenInclude:    {TokenLogical, TokenRParen, TokenEnd},
	TokenNot:        {TokenNot, TokenSpatial, TokenFunction, TokenProperty, TokenLParen},
	TokenGeometry:   {TokenComma, TokenRParen},
	TokenSpatial:    {TokenLParen},
	TokenFunction:   {TokenLParen},
	TokenProperty:   {TokenComparison, TokenBetween, TokenIsNull, TokenComma, TokenRParen, TokenLogical, TokenEnd},
	TokenLParen:     {TokenInclude, TokenNot, TokenGeometry, TokenSpatial, TokenFunction, TokenValue, TokenProperty, TokenLParen, TokenRParen},
	TokenRParen:     {TokenLogical, TokenComparison, TokenBetween, TokenIsNull, TokenComma, TokenRParen, TokenEnd},
	TokenComparison: {TokenValue, TokenFunction, TokenProperty},
	TokenBetween:    {TokenValue},
	TokenIsNull:     {TokenLogical, TokenRParen, TokenEnd},
	TokenComma:      {TokenGeometry, TokenValue, TokenFunction, TokenProperty},
	TokenValue:      {TokenLogical, TokenComma, TokenRParen, TokenEnd},
	TokenLogical:    {TokenNot, TokenInclude, TokenSpatial, TokenFunction, TokenValue, TokenProperty, TokenLParen},
}

// matcher recognises one token type at the start of the input and returns
// the length of the lexeme.
type matcher struct {
	pattern string
	match   func(text string) (int, bool)
}

func regexMatcher(expr string) matcher {
	re := regexp.MustCompile(expr)
	return matcher{
		pattern: expr,
		match: func(text string) (int, bool) {
			loc := re.FindStringIndex(text)
			if loc == nil {
				return 0, false
			}
			return loc[1], true
		},
	}
}

// prefixMatcher matches expr but only consumes its first submatch, leaving
// the rest (an opening paren) for the next token.
func prefixMatcher(expr string) matcher {
	re := regexp.MustCompile(expr)
	return matcher{
		pattern: expr,
		match: func(text string) (int, bool) {
			loc := re.FindStringSubmatchIndex(text)
			if loc == nil {
				return 0, false
			}
			return loc[3], true
		},
	}
}

var matchers = map[TokenType]matcher{
	TokenInclude:    regexMatcher(`(?i)^INCLUDE\b`),
	TokenNot:        regexMatcher(`(?i)^NOT\b`),
	TokenSpatial:    prefixMatcher(`(?i)^(BBOX|INTERSECTS|DWITHIN|WITHIN|CONTAINS)\s*\(`),
	TokenFunction:   prefixMatcher(`^([_a-zA-Z]\w*)\s*\(`),
	TokenProperty:   regexMatcher(`^("(?:[^"]|"")+"|[_a-zA-Z][\w:]*)`),
	TokenLParen:     regexMatcher(`^\(`),
	TokenRParen:     regexMatcher(`^\)`),
	TokenComparison: regexMatcher(`(?i)^(<>|<=|>=|=|<|>|ILIKE\b|LIKE\b)`),
	TokenBetween:    regexMatcher(`(?i)^BETWEEN\b`),
	TokenIsNull:     regexMatcher(`(?i)^IS\s+NULL\b`),
	TokenComma:      regexMatcher(`^,`),
	TokenLogical:    regexMatcher(`(?i)^(AND|OR)\b`),
	TokenValue:      regexMatcher(`(?i)^('(?:[^']|'')*'|-?\d+(?:\.\d*)?(?:e[-+]?\d+)?|-?\.\d+(?:e[-+]?\d+)?|true\b|false\b)`),
	TokenEnd:        regexMatcher(`^$`),
	TokenGeometry: {
		pattern: "<WKT literal with balanced parentheses>",
		match: func(text string) (int, bool) {
			lit, ok := geometry.MatchWKT(text)
			return len(lit), ok
		},
	},
}
