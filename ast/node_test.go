package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ictara/langbench/grammar"
	"github.com/ictara/langbench/lex"
	"github.com/ictara/langbench/syntax"
)

func leaf(classID, lexeme string, offset int) *syntax.Node {
	cl := lex.MakeDefaultClass(classID)
	tok := lex.NewToken(cl, lexeme, offset, 1, offset+1)
	return syntax.NewLeaf(tok)
}

// assignGrammarAndTree wires a small "Assign" rule: name = IDENT, value = NUMBER,
// entry Root +=(Assign) for a single statement.
func assignGrammarAndTree() (*grammar.Grammar, *syntax.Root) {
	g := grammar.New("assign")
	g.AddTerminal(grammar.Terminal{Name: "IDENT", Pattern: `[a-z]+`})
	g.AddTerminal(grammar.Terminal{Name: "NUMBER", Pattern: `[0-9]+`})
	g.AddRule(grammar.Rule{Name: "Assign", Body: grammar.Sequence{}})
	g.AddRule(grammar.Rule{Name: "Root", Entry: true, Body: grammar.Sequence{}})

	nameLeaf := leaf("ident", "x", 0)
	nameLeaf.FieldName = "name"
	nameLeaf.FieldOp = "="

	valueLeaf := leaf("number", "42", 4)
	valueLeaf.FieldName = "value"
	valueLeaf.FieldOp = "="

	assign := syntax.NewInterior("Assign", []*syntax.Node{nameLeaf, valueLeaf})
	assign.FieldName = "statements"
	assign.FieldOp = "+="

	root := syntax.NewInterior("Root", []*syntax.Node{assign})
	return g, &syntax.Root{Top: root}
}

func Test_Build_PlainAssignmentFields(t *testing.T) {
	g, cst := assignGrammarAndTree()

	doc, diags := Build("file:///a.lang", cst, g)
	assert.Empty(t, diags)
	require.NotNil(t, doc.Root)

	stmts := doc.Root.GetList("statements")
	require.Len(t, stmts, 1)

	stmt, ok := stmts[0].(*Node)
	require.True(t, ok)
	assert.Equal(t, "x", stmt.GetString("name"))
	assert.Equal(t, "42", stmt.GetString("value"))
}

func Test_Build_BoolFlagAssignment(t *testing.T) {
	g := grammar.New("flags")
	g.AddTerminal(grammar.Terminal{Name: "STATIC", Pattern: `static`})
	g.AddRule(grammar.Rule{Name: "Decl", Entry: true, Body: grammar.Sequence{}})

	flagLeaf := leaf("static", "static", 0)
	flagLeaf.FieldName = "isStatic"
	flagLeaf.FieldOp = "?="

	root := syntax.NewInterior("Decl", []*syntax.Node{flagLeaf})

	doc, diags := Build("file:///b.lang", &syntax.Root{Top: root}, g)
	assert.Empty(t, diags)
	assert.True(t, doc.Root.GetBool("isStatic"))
	assert.False(t, doc.Root.GetBool("neverSet"))
}

func Test_Build_CrossReferenceLeftUnresolved(t *testing.T) {
	g := grammar.New("refs")
	g.AddTerminal(grammar.Terminal{Name: "IDENT", Pattern: `[a-z]+`})
	g.AddRule(grammar.Rule{Name: "Call", Entry: true, Body: grammar.Sequence{}})

	refLeaf := leaf("ident", "target", 0)
	refLeaf.FieldName = "callee"
	refLeaf.FieldOp = "ref"
	refLeaf.RefTarget = "Decl"

	root := syntax.NewInterior("Call", []*syntax.Node{refLeaf})

	doc, diags := Build("file:///c.lang", &syntax.Root{Top: root}, g)
	assert.Empty(t, diags)

	ref, ok := doc.Root.GetRef("callee")
	require.True(t, ok)
	assert.Equal(t, "Decl", ref.TargetKind)
	assert.Equal(t, "target", ref.TargetName)
	_, resolved := ref.Resolved()
	assert.False(t, resolved)
}

func Test_Build_AnonymousGroupingDoesNotCrossRuleBoundary(t *testing.T) {
	g := grammar.New("nested")
	g.AddTerminal(grammar.Terminal{Name: "IDENT", Pattern: `[a-z]+`})
	g.AddRule(grammar.Rule{Name: "Inner", Body: grammar.Sequence{}})
	g.AddRule(grammar.Rule{Name: "Outer", Entry: true, Body: grammar.Sequence{}})

	innerFieldLeaf := leaf("ident", "y", 0)
	innerFieldLeaf.FieldName = "name"
	innerFieldLeaf.FieldOp = "="
	inner := syntax.NewInterior("Inner", []*syntax.Node{innerFieldLeaf})
	inner.FieldName = "child"
	inner.FieldOp = "="

	// an unassigned (Kind == "") grouping node wrapping the rule
	// invocation; collectAssigned must stop at Inner's own boundary
	// rather than pulling "name" up into Outer.
	group := &syntax.Node{Kind: "", Children: []*syntax.Node{inner}}

	root := syntax.NewInterior("Outer", []*syntax.Node{group})

	doc, diags := Build("file:///d.lang", &syntax.Root{Top: root}, g)
	assert.Empty(t, diags)

	assert.Nil(t, doc.Root.Get("name"))
	child, ok := doc.Root.GetNode("child")
	require.True(t, ok)
	assert.Equal(t, "y", child.GetString("name"))
}

func Test_Walk_VisitsNestedAndListFields(t *testing.T) {
	g, cst := assignGrammarAndTree()
	doc, _ := Build("file:///e.lang", cst, g)

	var visited []string
	Walk(doc.Root, func(n *Node) {
		visited = append(visited, n.Kind)
	})

	assert.Contains(t, visited, "Root")
	assert.Contains(t, visited, "Assign")
}

func Test_Document_NodeByID(t *testing.T) {
	g, cst := assignGrammarAndTree()
	doc, _ := Build("file:///f.lang", cst, g)

	found, ok := doc.NodeByID(doc.Root.ID)
	require.True(t, ok)
	assert.Same(t, doc.Root, found)
}
