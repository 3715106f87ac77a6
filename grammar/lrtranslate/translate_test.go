package lrtranslate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ictara/langbench/grammar"
)

func sumGrammarModel() *grammar.Grammar {
	g := grammar.New("arith")
	g.AddTerminal(grammar.Terminal{Name: "NUMBER", Pattern: `[0-9]+`})
	g.AddTerminal(grammar.Terminal{Name: "PLUS", Pattern: `\+`})
	g.AddRule(grammar.Rule{
		Name:  "Sum",
		Entry: true,
		Body: grammar.Sequence{Items: []grammar.Element{
			grammar.Assignment{Name: "left", Op: grammar.AssignSet, Value: grammar.TermRef{Name: "NUMBER"}},
			grammar.TermRef{Name: "PLUS"},
			grammar.Assignment{Name: "right", Op: grammar.AssignSet, Value: grammar.TermRef{Name: "NUMBER"}},
		}},
	})
	return g
}

func Test_Translate_FlattensSequenceIntoOneProduction(t *testing.T) {
	out, diags := Translate(sumGrammarModel())
	require.Empty(t, diags)

	assert.Equal(t, "Sum", out.EntryRule)
	require.Contains(t, out.Rules, "Sum")
	require.Len(t, out.Rules["Sum"], 1)

	prod := out.Rules["Sum"][0]
	require.Len(t, prod, 3)
	assert.Equal(t, "NUMBER", prod[0].Name)
	assert.Equal(t, "PLUS", prod[1].Name)
	assert.Equal(t, "NUMBER", prod[2].Name)

	fields := out.FieldMap[ProductionID{Head: "Sum", Index: 0}.String()]
	require.Len(t, fields, 2)
	assert.Equal(t, "left", fields[0].Name)
	assert.Equal(t, 0, fields[0].Index)
	assert.Equal(t, "right", fields[1].Name)
	assert.Equal(t, 2, fields[1].Index)
}

func Test_Translate_InvalidGrammarReturnsDiagnosticsOnly(t *testing.T) {
	g := grammar.New("broken")
	_, diags := Translate(g)
	require.NotEmpty(t, diags)
}

func Test_Translate_AlternativeProducesOneProductionPerOption(t *testing.T) {
	g := grammar.New("alt")
	g.AddTerminal(grammar.Terminal{Name: "A", Pattern: "a"})
	g.AddTerminal(grammar.Terminal{Name: "B", Pattern: "b"})
	g.AddRule(grammar.Rule{
		Name:  "Choice",
		Entry: true,
		Body: grammar.Alternative{Options: []grammar.Element{
			grammar.TermRef{Name: "A"},
			grammar.TermRef{Name: "B"},
		}},
	})

	out, diags := Translate(g)
	require.Empty(t, diags)
	require.Len(t, out.Rules["Choice"], 2)
}

func intPtr(n int) *int { return &n }

func Test_Translate_InfixLoweringEmitsPrecedenceLevelsInOrder(t *testing.T) {
	g := grammar.New("arith")
	g.AddTerminal(grammar.Terminal{Name: "NUMBER", Pattern: `[0-9]+`})
	g.AddRule(grammar.Rule{
		Name:  "Expr",
		Entry: true,
		Body:  grammar.TermRef{Name: "NUMBER"},
	})
	g.Precedence = &grammar.PrecedenceBlock{Levels: []grammar.PrecedenceLevel{
		{Name: "Add", Assoc: grammar.AssocLeft},
		{Name: "Mul", Assoc: grammar.AssocLeft},
	}}
	g.Infix = []grammar.InfixRule{{
		Name:    "Bin",
		Operand: "Expr",
		Operators: map[string]string{
			"+": "prec_Bin_0", "-": "prec_Bin_0",
			"*": "prec_Bin_1", "/": "prec_Bin_1",
		},
		TierOrder: []string{"prec_Bin_0", "prec_Bin_1"},
	}}

	out, diags := Translate(g)
	require.Empty(t, diags)

	require.Equal(t, []string{"Add", "Mul", "prec_Bin_0", "prec_Bin_1"}, out.PrecOrder)
	for _, name := range out.PrecOrder {
		assert.Equal(t, grammar.AssocLeft, out.PrecAssocByLevel[name])
	}
	assert.Contains(t, out.GrammarText, "@precedence { Add @left, Mul @left, prec_Bin_0 @left, prec_Bin_1 @left }")

	require.Contains(t, out.Rules, "prec_Bin_0")
	require.Contains(t, out.Rules, "prec_Bin_1")
	require.Contains(t, out.Rules, "Bin")
	assert.Equal(t, 2, out.PrecLevel["'+'"])
	assert.Equal(t, 3, out.PrecLevel["'*'"])
}

func Test_Translate_ConflictSetsAttachMarkersToSharedRule(t *testing.T) {
	g := grammar.New("cond")
	g.AddTerminal(grammar.Terminal{Name: "X", Pattern: "x"})
	g.AddRule(grammar.Rule{Name: "A", Entry: true, Body: grammar.TermRef{Name: "X"}})
	g.AddRule(grammar.Rule{Name: "B", Body: grammar.TermRef{Name: "X"}})
	g.AddRule(grammar.Rule{Name: "C", Body: grammar.TermRef{Name: "X"}})
	g.Conflicts = []grammar.ConflictSet{
		{Name: "ab", Members: []string{"A", "B"}},
		{Name: "ac", Members: []string{"A", "C"}},
	}

	out, diags := Translate(g)
	require.Empty(t, diags)

	assert.Equal(t, []string{"conflict_A_B", "conflict_A_C"}, out.ConflictMarkers["A"])
	assert.Contains(t, out.GrammarText, "~conflict_A_B")
	assert.Contains(t, out.GrammarText, "~conflict_A_C")
}

func Test_Translate_PrecMarkerEmitsBangAnnotationOnDeclaredLevel(t *testing.T) {
	g := grammar.New("prec")
	g.AddTerminal(grammar.Terminal{Name: "X", Pattern: "x"})
	g.AddRule(grammar.Rule{Name: "Entry", Entry: true, Body: grammar.RuleRef{Name: "Stmt"}})
	g.AddRule(grammar.Rule{Name: "Stmt", Body: grammar.TermRef{Name: "X"}, PrecMarker: "Tight"})
	g.Precedence = &grammar.PrecedenceBlock{Levels: []grammar.PrecedenceLevel{{Name: "Tight", Assoc: grammar.AssocLeft}}}

	out, diags := Translate(g)
	require.Empty(t, diags)
	assert.Equal(t, "Tight", out.PrecMarkerLevel["Stmt"])
	assert.Contains(t, out.GrammarText, "Stmt -> x !Tight ;")
}

func Test_Translate_UndeclaredPrecMarkerIsValidationError(t *testing.T) {
	g := grammar.New("prec")
	g.AddTerminal(grammar.Terminal{Name: "X", Pattern: "x"})
	g.AddRule(grammar.Rule{Name: "Entry", Entry: true, Body: grammar.TermRef{Name: "X"}, PrecMarker: "Missing"})

	_, diags := Translate(g)
	require.NotEmpty(t, diags)
	assert.Contains(t, diags[0].Message, "undeclared precedence level")
}

func Test_Translate_LowersExternalAndLocalTokenGroupsAndDynamicPrecedence(t *testing.T) {
	g := grammar.New("ext")
	g.AddTerminal(grammar.Terminal{Name: "INDENT", External: true})
	g.AddTerminal(grammar.Terminal{Name: "DEDENT", External: true})
	g.AddTerminal(grammar.Terminal{Name: "NUM", Pattern: `[0-9]+`})
	g.AddRule(grammar.Rule{Name: "Block", Entry: true, Body: grammar.TermRef{Name: "NUM"}, DynamicPrecedence: intPtr(3)})
	g.ExternalTokenGroups = []grammar.ExternalTokens{{GroupName: "indent-size.js", Terminals: []string{"INDENT", "DEDENT"}}}
	g.ExternalContext = &grammar.ExternalContext{Name: "ParserState", Path: "state.js"}
	g.LocalTokenGroups = []grammar.LocalTokens{{StateName: "Block", Terminals: []string{"NUM"}, ElseClass: "Ident"}}

	out, diags := Translate(g)
	require.Empty(t, diags)

	assert.Equal(t, 3, out.DynamicPrecedence["Block"])
	assert.Contains(t, out.GrammarText, "[@dynamicPrecedence=3]")
	assert.Contains(t, out.GrammarText, `@external tokens indentSize from "indent-size.js" { INDENT, DEDENT }`)
	assert.Contains(t, out.GrammarText, `@context ParserState from "state.js"`)
	assert.Contains(t, out.GrammarText, "@local tokens { NUM @else Ident }")
	require.Len(t, out.ExternalTokenGroups, 1)
	require.NotNil(t, out.ExternalContext)
	require.Len(t, out.LocalTokenGroups, 1)
}

func Test_Translate_SpecializeMappingEmitsKeywordRuleInGrammarText(t *testing.T) {
	g := grammar.New("kw")
	g.AddTerminal(grammar.Terminal{Name: "ID", Pattern: `[a-z]+`})
	g.AddRule(grammar.Rule{Name: "Entry", Entry: true, Body: grammar.TermRef{Name: "ID"}})
	g.Specialize = []grammar.SpecializeBlock{{BaseTerminal: "ID", Mapping: map[string]string{"if": "IfKeyword"}}}

	out, diags := Translate(g)
	require.Empty(t, diags)
	assert.Contains(t, out.Keywords, "if")
	assert.Contains(t, out.GrammarText, `IfKeyword { @specialize[@name={IfKeyword}]<ID, "if"> }`)
}
