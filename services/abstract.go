package services

import "github.com/ictara/langbench/ast"

// Collector supplies the language-specific knowledge SignatureHelp,
// TypeDefinition, and Implementation need once a declaration has been
// located generically: spec 4.7 describes these three services as
// "abstract; the concrete service resolves the declaration under the
// cursor and delegates to a language-specific collector", so this package
// owns exactly the cursor-resolution part and leaves the rest to whatever
// Collector a registry entry supplies for a given language.
type Collector interface {
	// Signature returns the rendered signature text for a callable
	// declaration node, and whether decl is a callable at all.
	Signature(decl *ast.Node) (string, bool)

	// TypeOf returns the Node declaring decl's type, if decl has one
	// distinct from itself.
	TypeOf(decl *ast.Node) (*ast.Node, bool)

	// Implementations returns every Node that implements/overrides decl.
	Implementations(decl *ast.Node) []*ast.Node
}

// SignatureHelp resolves the declaration under offset and renders its
// signature via c.
func SignatureHelp(doc *ast.Document, offset int, nameOf ast.NameProvider, c Collector) (string, bool) {
	decl, ok := declarationAt(doc, offset, nameOf)
	if !ok {
		return "", false
	}
	return c.Signature(decl)
}

// TypeDefinition resolves the declaration under offset and returns the
// Node that declares its type.
func TypeDefinition(doc *ast.Document, offset int, nameOf ast.NameProvider, c Collector) (*ast.Node, bool) {
	decl, ok := declarationAt(doc, offset, nameOf)
	if !ok {
		return nil, false
	}
	return c.TypeOf(decl)
}

// Implementation resolves the declaration under offset and returns every
// Node that implements it.
func Implementation(doc *ast.Document, offset int, nameOf ast.NameProvider, c Collector) []*ast.Node {
	decl, ok := declarationAt(doc, offset, nameOf)
	if !ok {
		return nil
	}
	return c.Implementations(decl)
}
