package services

import (
	"github.com/ictara/langbench/ast"
)

// DocumentSet resolves a documentURI to its already-built Document, the
// same contract ast.Linker.Provider uses, so References can walk every open
// document without the services package owning document lifecycle itself.
type DocumentSet func(documentURI string) *ast.Document

// References finds every occurrence of the declaration under offset in
// doc, across every document docURIs lists, honoring includeDeclaration
// (spec 4.7 "find references... across the workspace index, honoring
// includeDeclaration"). docURIs lists which documents to search; callers
// typically pass every URI index.Index.Documents() currently reports.
func References(doc *ast.Document, offset int, nameOf ast.NameProvider, docs DocumentSet, docURIs []string, includeDeclaration bool, tok CancelToken) ([]Location, error) {
	target, ok := declarationAt(doc, offset, nameOf)
	if !ok {
		return nil, nil
	}
	var out []Location
	for i, uri := range docURIs {
		if err := Yield(tok, i, 8); err != nil {
			return nil, err
		}
		d := docs(uri)
		if d == nil {
			continue
		}
		out = append(out, referencesIn(d, target, includeDeclaration)...)
	}
	return out, nil
}

func referencesIn(d *ast.Document, target *ast.Node, includeDeclaration bool) []Location {
	var out []Location
	if includeDeclaration && target.Document == d {
		out = append(out, Location{DocumentURI: d.URI, Range: rangeOf(d.CST, target.SyntaxNode)})
	}
	ast.Walk(d.Root, func(n *ast.Node) {
		for _, ref := range ast.RefsOf(n) {
			if resolved, ok := ref.Resolved(); ok && resolved == target {
				out = append(out, Location{DocumentURI: d.URI, Range: rangeOf(d.CST, ref.SourceSegment)})
			}
		}
	})
	return out
}
