package services

import "github.com/ictara/langbench/ast"

// nodeAt returns the innermost ast.Node whose own syntax span contains
// offset, found by descending the same shape ast.Walk exposes (there is no
// separate spatial index; a document's AST is small enough per spec's
// whole-document-parse model that a linear descend-on-contains walk is the
// appropriate simplicity/cost tradeoff here).
func nodeAt(doc *ast.Document, offset int) (*ast.Node, bool) {
	var best *ast.Node
	ast.Walk(doc.Root, func(n *ast.Node) {
		s := n.SyntaxNode
		if s == nil || offset < s.Offset || offset > s.End() {
			return
		}
		if best == nil || (s.End()-s.Offset) < (best.SyntaxNode.End()-best.SyntaxNode.Offset) {
			best = n
		}
	})
	return best, best != nil
}

// refAt returns the RefDescriptor whose source segment contains offset, the
// cross-reference the cursor landed directly on.
func refAt(doc *ast.Document, offset int) (*ast.RefDescriptor, bool) {
	var found *ast.RefDescriptor
	ast.Walk(doc.Root, func(n *ast.Node) {
		if found != nil {
			return
		}
		for _, ref := range ast.RefsOf(n) {
			s := ref.SourceSegment
			if s != nil && offset >= s.Offset && offset <= s.End() {
				found = ref
				return
			}
		}
	})
	return found, found != nil
}

// declarationAt resolves the cursor position to the declaration Node it
// names: either the resolved target of a cross-reference under the cursor,
// or the nearest enclosing Node that NameOf can name (the cursor is on the
// declaration itself), per spec 4.7's "locate the identifier leaf, resolve
// it to one or more declarations" description.
func declarationAt(doc *ast.Document, offset int, nameOf ast.NameProvider) (*ast.Node, bool) {
	if ref, ok := refAt(doc, offset); ok {
		if target, ok := ref.Resolved(); ok {
			return target, true
		}
	}
	n, ok := nodeAt(doc, offset)
	if !ok {
		return nil, false
	}
	for cur := n; cur != nil; cur = cur.Container {
		if _, ok := nameOf(cur); ok {
			return cur, true
		}
	}
	return n, true
}
