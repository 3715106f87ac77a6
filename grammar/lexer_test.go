package grammar

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func keywordGrammar() *Grammar {
	g := New("kw")
	g.AddTerminal(Terminal{Name: "IDENT", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`})
	g.AddTerminal(Terminal{Name: "WS", Pattern: `[ \t\n]+`, Hidden: true})
	g.AddRule(Rule{Name: "S", Entry: true, Body: TermRef{Name: "IDENT"}})
	g.Specialize = []SpecializeBlock{
		{BaseTerminal: "IDENT", Mapping: map[string]string{"if": "IF"}},
	}
	return g
}

func Test_NewLexer_KeywordWinsOverBaseTerminal(t *testing.T) {
	g := keywordGrammar()
	classes := BuildTokenClasses(g)

	lx, err := NewLexer(g, classes)
	require.NoError(t, err)

	stream, err := lx.Lex("if iffy")
	require.NoError(t, err)

	var ids []string
	for stream.HasNext() {
		tok := stream.Next()
		if tok.Class().Hidden() {
			continue
		}
		ids = append(ids, tok.Class().ID())
	}

	require.Len(t, ids, 2)
	require.Equal(t, "if", ids[0])
	require.Equal(t, "ident", ids[1])
}

func Test_NewLexer_SkipsExternalTerminals(t *testing.T) {
	g := New("ext")
	g.AddTerminal(Terminal{Name: "IDENT", Pattern: `[a-z]+`})
	g.AddTerminal(Terminal{Name: "INDENT", Pattern: "", External: true})
	g.AddRule(Rule{Name: "S", Entry: true, Body: TermRef{Name: "IDENT"}})

	classes := BuildTokenClasses(g)
	lx, err := NewLexer(g, classes)
	require.NoError(t, err)

	stream, err := lx.Lex("abc")
	require.NoError(t, err)
	require.True(t, stream.HasNext())
	tok := stream.Next()
	require.Equal(t, "ident", tok.Class().ID())
}
