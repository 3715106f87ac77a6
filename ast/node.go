// Package ast builds the typed abstract syntax tree (spec component 4.6)
// from a syntax.Root by reading the assignment identity the parser
// attached directly onto each CST node, then resolves cross-references
// into concrete pointers in a second pass. Grounded on
// internal/ictiobus/translation/translation.go's AnnotatedParseTree:
// that machinery evaluates an arbitrary attribute grammar over a parse
// tree; ast narrows the same tree-walk/ID-generation shape to the spec's
// closed assignment semantics (=, +=, ?=, cross-reference) instead of
// general attribute binding, since every field this workbench's grammars
// produce is fully determined by the CST's own assignment tags, with no
// user-supplied semantic actions to run.
package ast

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ictara/langbench/diag"
	"github.com/ictara/langbench/grammar"
	"github.com/ictara/langbench/syntax"
)

// RefDescriptor is an unresolved cross-reference: the grammar-declared
// target kind (rule or terminal name), the literal name text the document
// spelled, and the CST node that spelled it (so a failed resolution can
// still point a diagnostic at source). Grounded on the container/back-link
// shape other_examples' PlayerR9-grammar ast.go uses for generated AST
// reference fields.
type RefDescriptor struct {
	TargetKind    string
	TargetName    string
	SourceSegment *syntax.Node

	resolved *Node
}

// Resolved returns the Node this reference was linked to, and whether
// Linker.Resolve succeeded for it.
func (r *RefDescriptor) Resolved() (*Node, bool) {
	return r.resolved, r.resolved != nil
}

// Node is one constructed AST value: a tagged, map-backed record whose
// shape follows the grammar rule it was built from rather than a fixed Go
// struct, since a grammar author can add fields to any rule without this
// package changing.
type Node struct {
	ID   string
	Kind string

	fields map[string]any

	// Container back-links, set by the builder, let editor services walk
	// upward from a Node without a parent pointer baked into Kind-specific
	// types.
	Container         *Node
	ContainerProperty string
	ContainerIndex    int // -1 when this Node is not an element of a list field

	// SyntaxNode is the specific CST interior node this Node was built
	// from. CSTNode is the whole-document CST root it was built within;
	// together they let a caller go from an AST value back to both its own
	// syntax and the surrounding document without a separate index lookup.
	SyntaxNode *syntax.Node
	CSTNode    *syntax.Root

	Document *Document
}

// Get returns the raw value stored for name, or nil if name was never
// assigned (the grammar never populated it for this particular node,
// typically because an optional field matched zero times).
func (n *Node) Get(name string) any { return n.fields[name] }

// GetString returns the string-valued field name, or "" if absent or not a
// string (e.g. an optional scalar terminal field that didn't match).
func (n *Node) GetString(name string) string {
	s, _ := n.fields[name].(string)
	return s
}

// GetBool returns the flag set by a `?=` assignment, false if never set.
func (n *Node) GetBool(name string) bool {
	b, _ := n.fields[name].(bool)
	return b
}

// GetNode returns the single nested Node stored for a `=` assignment, and
// whether one was present with the right shape.
func (n *Node) GetNode(name string) (*Node, bool) {
	v, ok := n.fields[name].(*Node)
	return v, ok
}

// GetList returns the `+=`-accumulated values for name, each either a
// *Node or a string depending on what the grammar assigned.
func (n *Node) GetList(name string) []any {
	v, _ := n.fields[name].([]any)
	return v
}

// GetRef returns the cross-reference descriptor stored for name, handling
// both the single-occurrence and (rare) list-of-references shapes a `ref`
// assignment inside a repeated construct can produce.
func (n *Node) GetRef(name string) (*RefDescriptor, bool) {
	switch v := n.fields[name].(type) {
	case *RefDescriptor:
		return v, true
	case []any:
		if len(v) > 0 {
			r, ok := v[0].(*RefDescriptor)
			return r, ok
		}
	}
	return nil, false
}

// GetRefList returns every cross-reference descriptor stored for name.
func (n *Node) GetRefList(name string) []*RefDescriptor {
	var out []*RefDescriptor
	switch v := n.fields[name].(type) {
	case *RefDescriptor:
		out = append(out, v)
	case []any:
		for _, item := range v {
			if r, ok := item.(*RefDescriptor); ok {
				out = append(out, r)
			}
		}
	}
	return out
}

// FieldNames returns every field name this Node has a value for, in no
// particular order; used by services that need to walk a Node generically
// (e.g. document-symbol or fold-range discovery over an unknown grammar).
func (n *Node) FieldNames() []string {
	out := make([]string, 0, len(n.fields))
	for k := range n.fields {
		out = append(out, k)
	}
	return out
}

// Document anchors one built AST: its root Node, the CST it was built
// from, and a process-unique ID. The index and Linker address a Node in
// another document by (document URI, node ID), looked up through
// NodeByID.
type Document struct {
	ID   string
	URI  string
	Root *Node
	CST  *syntax.Root

	byID map[string]*Node
}

// NodeByID looks up a Node built within this document by its ID.
func (d *Document) NodeByID(id string) (*Node, bool) {
	n, ok := d.byID[id]
	return n, ok
}

// Build walks root's CST, applying g's rule metadata, into a Document.
// Cross-references are left unresolved (RefDescriptor.Resolved() is false
// for all of them); call Linker.Resolve afterward, once every document a
// reference might target has itself been built.
func Build(uri string, root *syntax.Root, g *grammar.Grammar) (*Document, []diag.Diagnostic) {
	doc := &Document{ID: uuid.NewString(), URI: uri, CST: root, byID: map[string]*Node{}}
	b := &builder{g: g, doc: doc}
	doc.Root = b.buildNode(root.Top, nil, "", -1)
	return doc, append(append([]diag.Diagnostic(nil), root.Diagnostics...), b.diags...)
}

type builder struct {
	g     *grammar.Grammar
	doc   *Document
	diags []diag.Diagnostic
}

func (b *builder) buildNode(s *syntax.Node, container *Node, prop string, idx int) *Node {
	n := &Node{
		ID:                uuid.NewString(),
		Kind:              b.resolveKind(s),
		fields:            map[string]any{},
		Container:         container,
		ContainerProperty: prop,
		ContainerIndex:    idx,
		SyntaxNode:        s,
		CSTNode:           b.doc.CST,
		Document:          b.doc,
	}
	b.doc.byID[n.ID] = n

	order, grouped := groupAssigned(collectAssigned(s))
	for _, name := range order {
		nodes := grouped[name]
		n.fields[name] = b.applyField(n, name, nodes)
	}
	return n
}

func (b *builder) resolveKind(s *syntax.Node) string {
	if s.TypeName != "" {
		return s.TypeName
	}
	if r, ok := b.g.Rule(s.Kind); ok && r.TypeName != "" {
		return r.TypeName
	}
	return s.Kind
}

func (b *builder) applyField(n *Node, name string, nodes []*syntax.Node) any {
	op := nodes[0].FieldOp
	switch grammar.AssignOp(op) {
	case grammar.AssignAppend:
		list := make([]any, 0, len(nodes))
		for _, c := range nodes {
			list = append(list, b.valueOf(c, n, name, len(list)))
		}
		return list
	case grammar.AssignBool:
		return true
	default:
		if op == "ref" {
			if len(nodes) == 1 {
				return b.refOf(nodes[0])
			}
			refs := make([]any, 0, len(nodes))
			for _, c := range nodes {
				refs = append(refs, b.refOf(c))
			}
			return refs
		}
		// "=" : last occurrence wins; a well-formed grammar assigns a
		// plain field at most once.
		return b.valueOf(nodes[len(nodes)-1], n, name, -1)
	}
}

func (b *builder) valueOf(c *syntax.Node, container *Node, prop string, idx int) any {
	if c.Terminal {
		return c.Leaf.Lexeme()
	}
	return b.buildNode(c, container, prop, idx)
}

func (b *builder) refOf(c *syntax.Node) *RefDescriptor {
	name := c.RefTarget
	return &RefDescriptor{
		TargetKind:    name,
		TargetName:    refText(c),
		SourceSegment: c,
	}
}

// refText returns the literal name text a cross-reference node spelled:
// its own lexeme if it's a leaf, or the concatenation of its leaves'
// lexemes (skipping trivia) if the grammar used the `[Target:Via]` form to
// match a richer referencing syntax than a single identifier.
func refText(c *syntax.Node) string {
	if c.Terminal {
		return c.Leaf.Lexeme()
	}
	var sb []byte
	syntax.Walk(c, func(n *syntax.Node) {
		if n.Terminal {
			sb = append(sb, n.Leaf.Lexeme()...)
		}
	})
	return string(sb)
}

// Walk calls visit for every Node reachable from root, pre-order, following
// both single-value (`=`/`?=`) and list-valued (`+=`) child fields.
func Walk(root *Node, visit func(*Node)) {
	if root == nil {
		return
	}
	visit(root)
	for _, name := range root.FieldNames() {
		switch v := root.Get(name).(type) {
		case *Node:
			Walk(v, visit)
		case []any:
			for _, item := range v {
				if child, ok := item.(*Node); ok {
					Walk(child, visit)
				}
			}
		}
	}
}

// RefsOf returns every RefDescriptor stored directly on n's fields (not
// descending into child Nodes — combine with Walk to cover a whole tree).
func RefsOf(n *Node) []*RefDescriptor {
	var out []*RefDescriptor
	for _, name := range n.FieldNames() {
		switch v := n.Get(name).(type) {
		case *RefDescriptor:
			out = append(out, v)
		case []any:
			for _, item := range v {
				if r, ok := item.(*RefDescriptor); ok {
					out = append(out, r)
				}
			}
		}
	}
	return out
}

// collectAssigned returns every directly-tagged child of s, descending
// through anonymous (Kind == "") grouping nodes — the shape Sequence,
// Cardinality, and passthrough Alternative produce — but never through a
// named rule invocation's own boundary, even an unassigned one: crossing
// that boundary would pull a sibling rule's fields up into this Node,
// which belongs to a different, separately-built Node instead.
func collectAssigned(s *syntax.Node) []*syntax.Node {
	var out []*syntax.Node
	for _, c := range s.Children {
		if c.FieldName != "" {
			out = append(out, c)
			continue
		}
		if c.Kind == "" {
			out = append(out, collectAssigned(c)...)
		}
	}
	return out
}

func groupAssigned(tagged []*syntax.Node) ([]string, map[string][]*syntax.Node) {
	var order []string
	grouped := map[string][]*syntax.Node{}
	for _, c := range tagged {
		if _, seen := grouped[c.FieldName]; !seen {
			order = append(order, c.FieldName)
		}
		grouped[c.FieldName] = append(grouped[c.FieldName], c)
	}
	return order, grouped
}

// String renders a Node for debugging, grounded on the same "terse,
// grep-able repr" need internal/ictiobus/types/tree.go's ParseTree.String
// serves for parse trees.
func (n *Node) String() string {
	return fmt.Sprintf("%s#%s(%d fields)", n.Kind, n.ID[:8], len(n.fields))
}
