package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Lexer_EmitsClassifiedTokens(t *testing.T) {
	lx := NewLexer()
	lx.SetStartingState("")
	lx.RegisterClass(MakeDefaultClass("ident"), "")
	require.NoError(t, lx.AddPattern(`[a-z]+`, LexAs("ident"), ""))

	stream, err := lx.Lex("abc")
	require.NoError(t, err)

	require.True(t, stream.HasNext())
	tok := stream.Next()
	assert.Equal(t, "ident", tok.Class().ID())
	assert.Equal(t, "abc", tok.Lexeme())
	assert.Equal(t, 0, tok.Offset())
	assert.Equal(t, 3, tok.End())

	assert.False(t, stream.HasNext())
}

func Test_Lexer_SkipsActionNoneTrivia(t *testing.T) {
	lx := NewLexer()
	lx.SetStartingState("")
	lx.RegisterClass(MakeDefaultClass("ident"), "")
	require.NoError(t, lx.AddPattern(`[ \t]+`, Action{Type: ActionNone}, ""))
	require.NoError(t, lx.AddPattern(`[a-z]+`, LexAs("ident"), ""))

	stream, err := lx.Lex("  abc  def")
	require.NoError(t, err)

	var lexemes []string
	for stream.HasNext() {
		tok := stream.Next()
		lexemes = append(lexemes, tok.Lexeme())
	}
	assert.Equal(t, []string{"abc", "def"}, lexemes)
}

func Test_Lexer_SwapsStateOnMatch(t *testing.T) {
	lx := NewLexer()
	lx.SetStartingState("")
	lx.RegisterClass(MakeDefaultClass("open"), "")
	lx.RegisterClass(MakeDefaultClass("body"), "raw")
	require.NoError(t, lx.AddPattern(`<<`, LexAndSwapState("open", "raw"), ""))
	require.NoError(t, lx.AddPattern(`[a-z]+`, LexAs("body"), "raw"))

	stream, err := lx.Lex("<<abc")
	require.NoError(t, err)

	first := stream.Next()
	assert.Equal(t, "open", first.Class().ID())

	second := stream.Next()
	assert.Equal(t, "body", second.Class().ID())
	assert.Equal(t, "abc", second.Lexeme())
}

func Test_Lexer_UnrecognizedInputProducesErrorToken(t *testing.T) {
	lx := NewLexer()
	lx.SetStartingState("")
	lx.RegisterClass(MakeDefaultClass("ident"), "")
	require.NoError(t, lx.AddPattern(`[a-z]+`, LexAs("ident"), ""))

	stream, err := lx.Lex("123")
	require.NoError(t, err)

	tok := stream.Next()
	assert.Equal(t, TokenError.ID(), tok.Class().ID())
}

func Test_Lexer_PeekNDoesNotAdvance(t *testing.T) {
	lx := NewLexer()
	lx.SetStartingState("")
	lx.RegisterClass(MakeDefaultClass("ident"), "")
	require.NoError(t, lx.AddPattern(`[ \t]+`, Action{Type: ActionNone}, ""))
	require.NoError(t, lx.AddPattern(`[a-z]+`, LexAs("ident"), ""))

	stream, err := lx.Lex("ab cd")
	require.NoError(t, err)

	second := stream.PeekN(1)
	first := stream.Peek()
	assert.Equal(t, "ab", first.Lexeme())
	assert.Equal(t, "cd", second.Lexeme())

	assert.Equal(t, "ab", stream.Next().Lexeme())
	assert.Equal(t, "cd", stream.Next().Lexeme())
}

func Test_AddPattern_RejectsUnregisteredClass(t *testing.T) {
	lx := NewLexer()
	err := lx.AddPattern(`[a-z]+`, LexAs("ident"), "")
	assert.Error(t, err)
}

func Test_TokenClass_Equal(t *testing.T) {
	a := MakeDefaultClass("IDENT")
	b := MakeHiddenClass("ident")
	assert.True(t, a.Equal(b))
	assert.Equal(t, "ident", a.ID())
	assert.Equal(t, "IDENT", a.Human())
	assert.False(t, a.Hidden())
	assert.True(t, b.Hidden())
}
