// Package syntax defines the concrete syntax tree (CST): the
// backend-agnostic, full-fidelity tree both the top-down and LR parsers
// build (spec component 4.5/4.6's "unified syntax tree"). Every leaf's
// textual image, trivia included, concatenates back to the parsed source
// exactly, and every non-leaf's assignment identity (which named,
// operator-qualified grammar slot it filled) survives onto the node so the
// AST builder (package ast) can read it back off without re-consulting the
// grammar. Grounded on internal/ictiobus/types/tree.go's ParseTree, split
// into a Node plus a Root that anchors the full source text and
// per-parse diagnostics.
package syntax

import (
	"regexp"
	"strings"

	"github.com/ictara/langbench/diag"
	"github.com/ictara/langbench/lex"
)

// Node is one CST node: either a terminal leaf carrying a lexed token, or
// an interior node for a grammar rule (or a synthetic helper rule
// introduced by cardinality/grouping desugaring) carrying children.
type Node struct {
	// Kind is the rule name for an interior node, or the token class ID
	// for a leaf.
	Kind string

	Terminal bool
	Leaf     lex.Token

	Children []*Node

	// FieldName/FieldOp are this node's assignment identity within its
	// parent: the (name, operator) pair the grammar body's Assignment
	// wrapped it in, or "" if this child was unassigned (matched as a
	// plain, unnamed sequence member). FieldOp is one of "=", "+=", "?=",
	// or "ref" for a cross-reference slot.
	FieldName string
	FieldOp   string

	// RefTarget is set when FieldOp == "ref": the cross-reference target
	// rule/terminal name the grammar body named, carried through so the
	// linker (package ast) knows what kind of name to resolve without
	// re-deriving it from the grammar.
	RefTarget string

	// TypeName is the constructed-type tag an Action (`{TypeName}`) chose
	// for this rule invocation, or "" to mean "use the declaring rule's own
	// TypeName". Only ever set on an interior node produced directly by a
	// rule invocation (never on a synthetic anonymous grouping node).
	TypeName string

	Offset int
	Length int
}

// End is Offset+Length.
func (n *Node) End() int { return n.Offset + n.Length }

// Root anchors a parsed document's full source text and the diagnostics
// collected while building it, alongside the top-level Node.
type Root struct {
	Source      string
	Top         *Node
	Diagnostics []diag.Diagnostic
}

// FullText returns the exact source slice n spans, trivia included: per
// spec's CST fidelity invariant, concatenating every leaf's FullText in
// source order reconstructs Source exactly.
func (r *Root) FullText(n *Node) string {
	if n.Offset < 0 || n.End() > len(r.Source) {
		return ""
	}
	return r.Source[n.Offset:n.End()]
}

// NewLeaf builds a terminal Node from a lexed token.
func NewLeaf(tok lex.Token) *Node {
	return &Node{
		Kind:     tok.Class().ID(),
		Terminal: true,
		Leaf:     tok,
		Offset:   tok.Offset(),
		Length:   tok.End() - tok.Offset(),
	}
}

// NewInterior builds a rule node from its already-built children,
// computing its span as the union of its children's spans (empty when
// children is empty, e.g. an epsilon-matched optional).
func NewInterior(kind string, children []*Node) *Node {
	n := &Node{Kind: kind, Children: children}
	if len(children) == 0 {
		return n
	}
	n.Offset = children[0].Offset
	last := children[len(children)-1]
	n.Length = last.End() - n.Offset
	return n
}

// FindLeafAt returns the deepest leaf node whose span contains offset, and
// true if one was found. Used by editor services (hover, references,
// document-highlight) to map a cursor position to a CST node.
func FindLeafAt(root *Node, offset int) (*Node, bool) {
	if root == nil || offset < root.Offset || offset > root.End() {
		return nil, false
	}
	for _, c := range root.Children {
		if found, ok := FindLeafAt(c, offset); ok {
			return found, true
		}
	}
	if root.Terminal {
		return root, true
	}
	return nil, false
}

// FindDeclarationNodeAt returns the nearest leaf enclosing offset whose
// lexeme matches nameRegexp — the identifier under the cursor, used by
// document-highlight/hover/references to find what a click landed on.
// Walks outward from the innermost leaf through FindEnclosing's path
// rather than re-descending from root, since the enclosing path already
// names every candidate ancestor leaf in innermost-first order once
// reversed.
func FindDeclarationNodeAt(root *Node, offset int, nameRegexp *regexp.Regexp) (*Node, bool) {
	path := FindEnclosing(root, offset)
	for i := len(path) - 1; i >= 0; i-- {
		n := path[i]
		if n.Terminal && nameRegexp.MatchString(n.Leaf.Lexeme()) {
			return n, true
		}
	}
	return nil, false
}

// FindEnclosing returns every node on the path from root to the deepest
// node whose span contains offset, root first, innermost last.
func FindEnclosing(root *Node, offset int) []*Node {
	if root == nil || offset < root.Offset || offset > root.End() {
		return nil
	}
	path := []*Node{root}
	for _, c := range root.Children {
		if sub := FindEnclosing(c, offset); sub != nil {
			path = append(path, sub...)
			break
		}
	}
	return path
}

// Walk calls visit for every node in root's subtree, pre-order.
func Walk(root *Node, visit func(*Node)) {
	if root == nil {
		return
	}
	visit(root)
	for _, c := range root.Children {
		Walk(c, visit)
	}
}

// Dump renders root as an indented tree, grounded on ParseTree.String()'s
// role as a line-by-line-comparable debug representation, used by tests
// and the demo CLI's --dump-cst flag.
func Dump(root *Node) string {
	var sb strings.Builder
	dumpLevel(&sb, root, "")
	return sb.String()
}

func dumpLevel(sb *strings.Builder, n *Node, indent string) {
	if n == nil {
		return
	}
	sb.WriteString(indent)
	sb.WriteString(n.Kind)
	if n.FieldName != "" {
		sb.WriteString(" [" + n.FieldName + n.FieldOp + "]")
	}
	if n.Terminal {
		sb.WriteString(" = ")
		sb.WriteString(n.Leaf.Lexeme())
	}
	sb.WriteRune('\n')
	for _, c := range n.Children {
		dumpLevel(sb, c, indent+"  ")
	}
}
