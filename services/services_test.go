package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ictara/langbench/ast"
	"github.com/ictara/langbench/grammar"
	"github.com/ictara/langbench/index"
	"github.com/ictara/langbench/lex"
	"github.com/ictara/langbench/syntax"
)

func leafAt(classID, lexeme string, offset int) *syntax.Node {
	cl := lex.MakeDefaultClass(classID)
	tok := lex.NewToken(cl, lexeme, offset, 1, offset+1)
	return syntax.NewLeaf(tok)
}

// linkedDeclCallDocument builds "target\ntarget": a Decl naming "target" at
// offset 0 and a Call whose "callee" cross-reference spells "target" at
// offset 7, already resolved against each other through a real Linker.
func linkedDeclCallDocument(t *testing.T) *ast.Document {
	t.Helper()
	g := grammar.New("doc")
	g.AddTerminal(grammar.Terminal{Name: "IDENT", Pattern: `[a-z]+`})
	g.AddRule(grammar.Rule{Name: "Decl"})
	g.AddRule(grammar.Rule{Name: "Call"})
	g.AddRule(grammar.Rule{Name: "Program", Entry: true})

	nameLeaf := leafAt("ident", "target", 0)
	nameLeaf.FieldName = "name"
	nameLeaf.FieldOp = "="
	decl := syntax.NewInterior("Decl", []*syntax.Node{nameLeaf})
	decl.FieldName = "decl"
	decl.FieldOp = "="

	refLeaf := leafAt("ident", "target", 7)
	refLeaf.FieldName = "callee"
	refLeaf.FieldOp = "ref"
	refLeaf.RefTarget = "Decl"
	call := syntax.NewInterior("Call", []*syntax.Node{refLeaf})
	call.FieldName = "call"
	call.FieldOp = "="

	program := syntax.NewInterior("Program", []*syntax.Node{decl, call})
	root := &syntax.Root{Top: program, Source: "target\ntarget"}

	doc, diags := ast.Build("file:///doc.lang", root, g)
	require.Empty(t, diags)

	docs := map[string]*ast.Document{doc.URI: doc}
	ix := index.New()
	linker := ast.NewLinker(ix, func(uri string) *ast.Document { return docs[uri] })
	linker.IndexDocument(doc)
	require.Empty(t, linker.Resolve(doc))

	return doc
}

func Test_DocumentHighlight_FindsDeclarationAndReference(t *testing.T) {
	doc := linkedDeclCallDocument(t)

	ranges, err := DocumentHighlight(doc, 2, ast.DefaultNameProvider)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, 0, ranges[0].StartOffset)
	assert.Equal(t, 7, ranges[1].StartOffset)
}

func Test_DocumentHighlight_NoDeclarationUnderCursor(t *testing.T) {
	doc := linkedDeclCallDocument(t)
	ranges, err := DocumentHighlight(doc, 1000, ast.DefaultNameProvider)
	require.NoError(t, err)
	assert.Nil(t, ranges)
}

func Test_References_HonorsIncludeDeclaration(t *testing.T) {
	doc := linkedDeclCallDocument(t)
	docs := DocumentSet(func(uri string) *ast.Document {
		if uri == doc.URI {
			return doc
		}
		return nil
	})

	withDecl, err := References(doc, 2, ast.DefaultNameProvider, docs, []string{doc.URI}, true, NewCancelToken(context.Background()))
	require.NoError(t, err)
	assert.Len(t, withDecl, 2)

	withoutDecl, err := References(doc, 2, ast.DefaultNameProvider, docs, []string{doc.URI}, false, NewCancelToken(context.Background()))
	require.NoError(t, err)
	assert.Len(t, withoutDecl, 1)
	assert.Equal(t, 7, withoutDecl[0].Range.StartOffset)
}

func Test_References_RespectsCancellation(t *testing.T) {
	doc := linkedDeclCallDocument(t)
	docs := DocumentSet(func(uri string) *ast.Document { return doc })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := References(doc, 2, ast.DefaultNameProvider, docs, []string{doc.URI}, true, NewCancelToken(ctx))
	assert.ErrorIs(t, err, ErrCancelled)
}

func Test_DocumentSymbols_OnlyNamedNodes(t *testing.T) {
	doc := linkedDeclCallDocument(t)
	symbols := DocumentSymbols(doc, ast.DefaultNameProvider)
	require.Len(t, symbols, 1)
	assert.Equal(t, "target", symbols[0].Name)
	assert.Equal(t, "Decl", symbols[0].Kind)
}

func Test_WorkspaceSymbols_FuzzyMatch(t *testing.T) {
	doc := linkedDeclCallDocument(t)
	docs := map[string]*ast.Document{doc.URI: doc}
	ix := index.New()
	ix.Put("Decl", "target", doc.URI, doc.Root.Get("decl").(*ast.Node).ID)

	results, err := WorkspaceSymbols(ix, func(uri string) *ast.Document { return docs[uri] }, "tgt", NewCancelToken(context.Background()))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "target", results[0].Name)
}

func Test_WorkspaceSymbols_NoMatch(t *testing.T) {
	doc := linkedDeclCallDocument(t)
	docs := map[string]*ast.Document{doc.URI: doc}
	ix := index.New()
	ix.Put("Decl", "target", doc.URI, "irrelevant")

	results, err := WorkspaceSymbols(ix, func(uri string) *ast.Document { return docs[uri] }, "zzz", NewCancelToken(context.Background()))
	require.NoError(t, err)
	assert.Empty(t, results)
}

func Test_HoverAt_RendersPrecedingBlockComment(t *testing.T) {
	comment := leafAt("comment", "/* doc */", 0)
	name := leafAt("ident", "foo", 10)
	decl := syntax.NewInterior("Decl", []*syntax.Node{comment, name})
	root := &syntax.Root{Top: decl, Source: "/* doc */\nfoo"}

	hover, ok := HoverAt(root, 11, "file:///a.lang")
	require.True(t, ok)
	assert.Equal(t, "doc", hover.Contents)
}

func Test_HoverAt_QualifiesCrossReferenceLinks(t *testing.T) {
	comment := leafAt("comment", "/* see [Other] */", 0)
	name := leafAt("ident", "foo", 19)
	decl := syntax.NewInterior("Decl", []*syntax.Node{comment, name})
	root := &syntax.Root{Top: decl, Source: "/* see [Other] */\nfoo"}

	hover, ok := HoverAt(root, 20, "file:///a.lang")
	require.True(t, ok)
	assert.Contains(t, hover.Contents, "[Other](file:///a.lang#Other)")
}

func Test_HoverAt_NoPrecedingComment(t *testing.T) {
	name := leafAt("ident", "foo", 0)
	root := &syntax.Root{Top: name, Source: "foo"}

	_, ok := HoverAt(root, 1, "file:///a.lang")
	assert.False(t, ok)
}

func Test_FoldingRanges_BlockDelimiterSpanningMultipleLines(t *testing.T) {
	open := leafAt("lbrace", "{", 0)
	x := leafAt("ident", "x", 2)
	y := leafAt("ident", "y", 4)
	closeBrace := leafAt("rbrace", "}", 6)
	block := syntax.NewInterior("Block", []*syntax.Node{open, x, y, closeBrace})
	root := &syntax.Root{Top: block, Source: "{\nx\ny\n}"}

	ranges := FoldingRanges(root)
	require.Len(t, ranges, 1)
	assert.Equal(t, FoldingRange{StartLine: 1, EndLine: 3}, ranges[0])
}

func Test_FoldingRanges_BlockSpanningOneLineDoesNotFold(t *testing.T) {
	open := leafAt("lbrace", "{", 0)
	closeBrace := leafAt("rbrace", "}", 1)
	block := syntax.NewInterior("Block", []*syntax.Node{open, closeBrace})
	root := &syntax.Root{Top: block, Source: "{}"}

	assert.Empty(t, FoldingRanges(root))
}

func Test_FoldingRanges_MultilineBlockComment(t *testing.T) {
	source := "/*\n\n\n*/"
	comment := leafAt("comment", source, 0)
	root := &syntax.Root{Top: comment, Source: source}

	ranges := FoldingRanges(root)
	require.Len(t, ranges, 1)
	assert.Equal(t, 1, ranges[0].StartLine)
	assert.Equal(t, 3, ranges[0].EndLine)
}

type stubCollector struct {
	sig    string
	sigOK  bool
	typeOf *ast.Node
	typeOK bool
	impls  []*ast.Node
}

func (s stubCollector) Signature(decl *ast.Node) (string, bool)    { return s.sig, s.sigOK }
func (s stubCollector) TypeOf(decl *ast.Node) (*ast.Node, bool)    { return s.typeOf, s.typeOK }
func (s stubCollector) Implementations(decl *ast.Node) []*ast.Node { return s.impls }

func Test_SignatureHelp_DelegatesToCollector(t *testing.T) {
	doc := linkedDeclCallDocument(t)
	c := stubCollector{sig: "func target()", sigOK: true}

	sig, ok := SignatureHelp(doc, 2, ast.DefaultNameProvider, c)
	require.True(t, ok)
	assert.Equal(t, "func target()", sig)
}

func Test_SignatureHelp_NoDeclarationUnderCursor(t *testing.T) {
	doc := linkedDeclCallDocument(t)
	c := stubCollector{sig: "unused", sigOK: true}

	_, ok := SignatureHelp(doc, 1000, ast.DefaultNameProvider, c)
	assert.False(t, ok)
}

func Test_Implementation_DelegatesToCollector(t *testing.T) {
	doc := linkedDeclCallDocument(t)
	target := doc.Root.Get("decl").(*ast.Node)
	c := stubCollector{impls: []*ast.Node{target}}

	impls := Implementation(doc, 2, ast.DefaultNameProvider, c)
	require.Len(t, impls, 1)
	assert.Same(t, target, impls[0])
}

func Test_CancelToken_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tok := NewCancelToken(ctx)
	assert.False(t, tok.Cancelled())
	cancel()
	assert.True(t, tok.Cancelled())
}

func Test_Yield_OnlyChecksAtInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	tok := NewCancelToken(ctx)
	cancel()

	assert.NoError(t, Yield(tok, 1, 8))
	assert.NoError(t, Yield(tok, 7, 8))
	assert.ErrorIs(t, Yield(tok, 8, 8), ErrCancelled)
	assert.ErrorIs(t, Yield(tok, 0, 8), ErrCancelled)
}
