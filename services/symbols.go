package services

import (
	"golang.org/x/text/cases"

	"github.com/ictara/langbench/ast"
	"github.com/ictara/langbench/index"
)

var foldCaser = cases.Fold()

// Symbol is one entry of a document- or workspace-symbol result: a named
// AST node's identity, kind, and location, with Children forming the
// recursive hierarchy spec 4.7 describes for DocumentSymbols.
type Symbol struct {
	Name     string
	Kind     string
	Location Location
	Children []Symbol
}

// DocumentSymbols recursively walks doc, producing a hierarchy whose nodes
// correspond to every AST node nameOf can name (spec 4.7: "those with a
// name assignment"). A node's Symbol nests under the nearest named
// ancestor's Symbol, following Container back-links the same way
// declarationAt climbs them.
func DocumentSymbols(doc *ast.Document, nameOf ast.NameProvider) []Symbol {
	byID := map[string]*Symbol{}
	var roots []Symbol

	ast.Walk(doc.Root, func(n *ast.Node) {
		name, ok := nameOf(n)
		if !ok || n.SyntaxNode == nil {
			return
		}
		sym := Symbol{Name: name, Kind: n.Kind, Location: Location{DocumentURI: doc.URI, Range: rangeOf(doc.CST, n.SyntaxNode)}}
		byID[n.ID] = &sym
	})
	// Second pass: nest by nearest named ancestor, now that every named
	// node's Symbol has a stable address in byID.
	ast.Walk(doc.Root, func(n *ast.Node) {
		sym, ok := byID[n.ID]
		if !ok {
			return
		}
		for cur := n.Container; cur != nil; cur = cur.Container {
			if parent, ok := byID[cur.ID]; ok {
				parent.Children = append(parent.Children, *sym)
				return
			}
		}
		roots = append(roots, *sym)
	})
	return roots
}

// WorkspaceSymbols fuzzy-matches query (case-folded) against the name
// DefaultNameOf gives each AST node of every document ix.Documents()
// lists, honoring cancellation between matches per spec 4.7/5. Matching is a subsequence test (every rune of query appears, in
// order, somewhere in the candidate name) rather than a literal substring
// test, the conventional "fuzzy" behavior editor symbol pickers expect;
// no pack library implements fuzzy subsequence matching, so this is
// standard-library string work, with x/text/cases' Fold used for
// Unicode-aware case folding of both the query and each candidate name.
func WorkspaceSymbols(ix *index.Index, docs DocumentSet, query string, tok CancelToken) ([]Symbol, error) {
	folded := foldCaser.String(query)
	var out []Symbol
	checked := 0
	for _, uri := range ix.Documents() {
		doc := docs(uri)
		if doc == nil {
			continue
		}
		var err error
		ast.Walk(doc.Root, func(n *ast.Node) {
			if err != nil {
				return
			}
			name, ok := DefaultNameOf(n)
			if !ok {
				return
			}
			checked++
			if yerr := Yield(tok, checked, 32); yerr != nil {
				err = yerr
				return
			}
			if fuzzyMatch(folded, foldCaser.String(name)) {
				out = append(out, Symbol{Name: name, Kind: n.Kind, Location: Location{DocumentURI: doc.URI, Range: rangeOf(doc.CST, n.SyntaxNode)}})
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DefaultNameOf is ast.DefaultNameProvider, re-exported under a services-
// local name so callers that haven't wired a language-specific NameProvider
// still get workspace-symbol search.
func DefaultNameOf(n *ast.Node) (string, bool) { return ast.DefaultNameProvider(n) }

func fuzzyMatch(query, candidate string) bool {
	q := []rune(query)
	if len(q) == 0 {
		return true
	}
	qi := 0
	for _, r := range candidate {
		if r == q[qi] {
			qi++
			if qi == len(q) {
				return true
			}
		}
	}
	return false
}
