package ast

import (
	"fmt"

	"github.com/ictara/langbench/diag"
	"github.com/ictara/langbench/index"
)

// NameProvider extracts the declared name a Node should be indexed and
// looked up under, and reports whether the Node has one. Spec.md is silent on which field of a grammar-specific Node
// carries its "name" for linking purposes (that's inherently
// grammar-specific), so this workbench picks a convention rather than
// hard-coding one: the first field present among "name", "id", and
// "identifier", in that priority order. A grammar author whose naming
// field is spelled differently supplies their own NameProvider.
type NameProvider func(n *Node) (name string, ok bool)

// DefaultNameProvider is the built-in convention described on NameProvider.
func DefaultNameProvider(n *Node) (string, bool) {
	for _, field := range []string{"name", "id", "identifier"} {
		if s := n.GetString(field); s != "" {
			return s, true
		}
	}
	return "", false
}

// Linker resolves the RefDescriptors a Document's Build pass left
// unresolved, per spec's "unresolved -> resolved | unresolvable, stable
// until re-index" state machine (section 7). Grounded on no single teacher
// file — internal/ictiobus has no cross-reference resolution pass of its
// own — and built directly from spec.md's prose description of the
// resolution contract.
type Linker struct {
	Index    *index.Index
	NameOf   NameProvider
	Provider func(documentURI string) *Document
}

// NewLinker returns a Linker using DefaultNameProvider. provider must
// return the already-built Document for a documentURI an index.Entry
// names, so Resolve can turn an Entry into a concrete *Node.
func NewLinker(ix *index.Index, provider func(documentURI string) *Document) *Linker {
	return &Linker{Index: ix, NameOf: DefaultNameProvider, Provider: provider}
}

// IndexDocument walks doc's tree, registering every Node NameOf can name
// under its Kind. Call this once per document after Build, before
// Resolve is asked to satisfy any reference that might target it.
func (l *Linker) IndexDocument(doc *Document) {
	l.Index.RemoveDocument(doc.URI)
	Walk(doc.Root, func(n *Node) {
		if name, ok := l.NameOf(n); ok {
			l.Index.Put(n.Kind, name, doc.URI, n.ID)
		}
	})
}

// Resolve attempts to resolve every RefDescriptor reachable from doc.Root,
// mutating each descriptor's internal resolved pointer in place. It
// returns one diagnostic per reference that stayed unresolvable, tagged
// diag.SourceValidation: the wire diagnostic vocabulary (spec section 6)
// has no dedicated "linker" source, so an unresolved cross-reference is
// reported as the validation-stage failure it effectively is.
func (l *Linker) Resolve(doc *Document) []diag.Diagnostic {
	var diags []diag.Diagnostic
	Walk(doc.Root, func(n *Node) {
		for _, ref := range RefsOf(n) {
			if d, ok := l.resolveOne(ref); !ok {
				diags = append(diags, d)
			}
		}
	})
	return diags
}

func (l *Linker) resolveOne(ref *RefDescriptor) (diag.Diagnostic, bool) {
	if ref.resolved != nil {
		return diag.Diagnostic{}, true
	}
	candidates := l.Index.Lookup(ref.TargetKind, ref.TargetName)
	for _, c := range candidates {
		doc := l.Provider(c.DocumentURI)
		if doc == nil {
			continue
		}
		if n, ok := doc.NodeByID(c.NodeID); ok {
			ref.resolved = n
			return diag.Diagnostic{}, true
		}
	}
	offset, length, line, col := 0, 0, 0, 0
	if ref.SourceSegment != nil {
		offset, length = ref.SourceSegment.Offset, ref.SourceSegment.Length
	}
	return diag.Diagnostic{
		Message:  fmt.Sprintf("unresolved reference to %s %q", ref.TargetKind, ref.TargetName),
		Offset:   offset,
		Length:   length,
		Line:     line,
		Column:   col,
		Severity: diag.SeverityError,
		Source:   diag.SourceValidation,
	}, false
}

// Invalidate marks every reference in doc as unresolved again, so a
// subsequent Resolve re-derives them against the index's current state
// rather than trusting stale pointers — the "stable until re-index" half
// of the resolution contract.
func (l *Linker) Invalidate(doc *Document) {
	Walk(doc.Root, func(n *Node) {
		for _, ref := range RefsOf(n) {
			ref.resolved = nil
		}
	})
}

