package services

import "github.com/ictara/langbench/ast"

// DocumentHighlight finds every reference to the declaration under offset
// within doc alone (spec 4.7: "locate the identifier leaf, resolve it to
// one or more declarations, collect all references in the document, and
// return their ranges"). It is References restricted to a single document
// with the declaration itself always included, which is what distinguishes
// a highlight request from a find-references request at the same cursor.
func DocumentHighlight(doc *ast.Document, offset int, nameOf ast.NameProvider) ([]Range, error) {
	target, ok := declarationAt(doc, offset, nameOf)
	if !ok {
		return nil, nil
	}
	locs := referencesIn(doc, target, true)
	out := make([]Range, len(locs))
	for i, l := range locs {
		out[i] = l.Range
	}
	return out, nil
}
