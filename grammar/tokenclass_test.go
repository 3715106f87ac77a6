package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func identGrammar() *Grammar {
	g := New("kw")
	g.AddTerminal(Terminal{Name: "IDENT", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`})
	g.AddTerminal(Terminal{Name: "WS", Pattern: `[ \t]+`, Hidden: true})
	g.AddRule(Rule{Name: "S", Entry: true, Body: TermRef{Name: "IDENT"}})
	return g
}

func Test_BuildTokenClasses_PlainTerminals(t *testing.T) {
	g := identGrammar()
	classes := BuildTokenClasses(g)

	identClass, ok := classes.Classes["ident"]
	assert.True(t, ok)
	assert.False(t, identClass.Hidden())

	wsClass, ok := classes.Classes["ws"]
	assert.True(t, ok)
	assert.True(t, wsClass.Hidden())

	assert.Empty(t, classes.Keywords)
	assert.Empty(t, classes.Literals)
}

func Test_BuildTokenClasses_SpecializePromotesKeyword(t *testing.T) {
	g := identGrammar()
	g.Specialize = []SpecializeBlock{
		{BaseTerminal: "IDENT", Mapping: map[string]string{"if": "IF", "else": "ELSE"}},
	}
	classes := BuildTokenClasses(g)

	assert.Contains(t, classes.Classes, "if")
	assert.Contains(t, classes.Classes, "else")
	assert.Equal(t, "IDENT", classes.Keywords["if"])
	assert.Equal(t, "IDENT", classes.Keywords["else"])
	assert.Equal(t, "if", classes.Literals["IDENT"]["if"])
	assert.Equal(t, "else", classes.Literals["IDENT"]["else"])
}

func Test_BuildTokenClasses_ExtendDoesNotOverrideSpecialize(t *testing.T) {
	g := identGrammar()
	g.Specialize = []SpecializeBlock{
		{BaseTerminal: "IDENT", Mapping: map[string]string{"if": "IF"}},
	}
	g.Extend = []ExtendBlock{
		{BaseTerminal: "IDENT", Mapping: map[string]string{"if": "IF_EXTENDED", "unless": "UNLESS"}},
	}
	classes := BuildTokenClasses(g)

	// specialize claimed "if" first; extend must not reclaim it under a
	// different class name.
	assert.Equal(t, "if", classes.Literals["IDENT"]["if"])
	assert.NotContains(t, classes.Classes, "if_extended")

	// extend can still promote a literal specialize never touched.
	assert.Equal(t, "unless", classes.Literals["IDENT"]["unless"])
	assert.Contains(t, classes.Classes, "unless")
}

func Test_BuildTokenClasses_UnicodeClassIDFolding(t *testing.T) {
	g := New("kw")
	g.AddTerminal(Terminal{Name: "İDENT", Pattern: `[a-z]+`})
	g.AddRule(Rule{Name: "S", Entry: true, Body: TermRef{Name: "İDENT"}})

	classes := BuildTokenClasses(g)
	assert.Contains(t, classes.Classes, lowerID("İDENT"))
}
