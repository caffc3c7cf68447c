package cql

import (
	"fmt"
	"strings"
)

// ParseError reports input that no expected token type matches.
type ParseError struct {
	Remainder string
	Pos       int
	Expected  []TokenType
}

func (e *ParseError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "cql: in parsing [%s], expected one of:", e.Remainder)
	for _, t := range e.Expected {
		fmt.Fprintf(&sb, "\n    %s: %s", t, matchers[t].pattern)
	}
	return sb.String()
}

// SyntaxError reports a token sequence the grammar cannot reduce, such as
// an unbalanced parenthesis or a BBOX with non-numeric bounds.
type SyntaxError struct {
	Token Token
	Msg   string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("cql: %s at %d near %q", e.Msg, e.Token.Pos, e.Token.Text)
}

// TrailingTokensError reports tokens left over once a complete filter has
// been read.
type TrailingTokensError struct {
	Tokens []Token
}

func (e *TrailingTokensError) Error() string {
	var sb strings.Builder
	sb.WriteString("cql: remaining tokens after building AST:")
	for _, t := range e.Tokens {
		fmt.Fprintf(&sb, "\n%s: %s", t.Type, t.Text)
	}
	return sb.String()
}

// UnsupportedNodeError is returned by backends for node types they cannot
// express.
type UnsupportedNodeError struct {
	Type string
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("cql: unsupported node type %q", e.Type)
}
