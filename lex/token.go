package lex

import "fmt"

// Token is a lexeme read from source text, combined with its class and
// enough positional context to build diagnostics. Grounded on
// internal/ictiobus/types/token.go, extended with Offset/End so the syntax
// tree (spec 4.5) can compute spans directly from leaf tokens without
// re-scanning the source.
type Token interface {
	Class() TokenClass
	Lexeme() string

	// Offset is the 0-based byte offset of the first byte of the lexeme in
	// the source text.
	Offset() int

	// End is Offset() + len(Lexeme()).
	End() int

	// Line is the 1-indexed line number the token starts on.
	Line() int

	// LinePos is the 1-indexed column the token starts on.
	LinePos() int

	String() string
}

type token struct {
	class   TokenClass
	lexeme  string
	offset  int
	line    int
	linePos int
}

func (t token) Class() TokenClass { return t.class }
func (t token) Lexeme() string    { return t.lexeme }
func (t token) Offset() int       { return t.offset }
func (t token) End() int          { return t.offset + len(t.lexeme) }
func (t token) Line() int         { return t.line }
func (t token) LinePos() int      { return t.linePos }

func (t token) String() string {
	return fmt.Sprintf("(%s %q @%d)", t.class.ID(), t.lexeme, t.offset)
}

// NewToken builds a Token directly; used by backends that synthesize
// tokens (error-recovery leaves, the LL(1) epsilon-production nodes).
func NewToken(class TokenClass, lexeme string, offset, line, linePos int) Token {
	return token{class: class, lexeme: lexeme, offset: offset, line: line, linePos: linePos}
}

// TokenStream is a stream of tokens read from source text.
type TokenStream interface {
	// Next returns the next token and advances the stream by one token.
	Next() Token

	// Peek returns the next token without advancing the stream.
	Peek() Token

	// PeekN returns the token n positions ahead (PeekN(0) == Peek()).
	PeekN(n int) Token

	// HasNext reports whether the stream has any non-EOF tokens left.
	HasNext() bool
}
