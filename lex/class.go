package lex

import "strings"

// TokenClass is a terminal token type: either a declared grammar terminal or
// a keyword literal promoted to its own class by specialize/extend. Grounded
// on internal/ictiobus/types/class.go's TokenClass interface, extended with
// Hidden so the token-class builder (spec 4.1) can carry a terminal's hidden
// flag all the way through to the lexer and the syntax tree.
type TokenClass interface {
	// ID uniquely identifies the class among all terminals of a grammar.
	ID() string

	// Human is a human-readable name, used in diagnostic messages.
	Human() string

	// Hidden reports whether tokens of this class are trivia (whitespace,
	// comments) rather than grammar-significant leaves.
	Hidden() bool

	Equal(o any) bool
}

type simpleTokenClass struct {
	name   string
	hidden bool
}

func (c simpleTokenClass) ID() string     { return strings.ToLower(c.name) }
func (c simpleTokenClass) Human() string  { return c.name }
func (c simpleTokenClass) Hidden() bool   { return c.hidden }

func (c simpleTokenClass) Equal(o any) bool {
	other, ok := o.(TokenClass)
	if !ok {
		return false
	}
	return other.ID() == c.ID()
}

var (
	// TokenUndefined is the class of a token that has not been classified.
	TokenUndefined = simpleTokenClass{name: "undefined_token"}

	// TokenEndOfText marks the end of the input stream.
	TokenEndOfText = simpleTokenClass{name: "$"}

	// TokenError marks a lexeme that could not be matched against any
	// pattern; it carries a message (not a lexeme) as its text.
	TokenError = simpleTokenClass{name: "error_token"}
)

// MakeDefaultClass returns a non-hidden TokenClass whose ID is the
// lower-cased string and whose Human name is the string unmodified.
func MakeDefaultClass(s string) TokenClass {
	return simpleTokenClass{name: s}
}

// MakeHiddenClass is MakeDefaultClass for a terminal declared `hidden`.
func MakeHiddenClass(s string) TokenClass {
	return simpleTokenClass{name: s, hidden: true}
}

// MakeKeywordClass returns the token class promoted for a specialize/extend
// mapping. Keyword classes are never hidden.
func MakeKeywordClass(s string) TokenClass {
	return simpleTokenClass{name: s}
}
