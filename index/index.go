// Package index holds the process-wide (kind, name) -> {documentURI,
// nodeID} entries mapping (an entry addresses a node by its ID, not by a
// path within the document), used by the AST linker and the
// References/WorkspaceSymbols services to find a named declaration without
// re-walking every document's tree. Grounded on no single teacher file (the
// teacher has no cross-document symbol table); modeled after the
// straightforward guarded-map convention internal/ictiobus's own
// concurrency-sensitive state (e.g. internal/tqw's save-game registries)
// uses: a mutex-guarded map, no fancier structure, since the access pattern
// here is simple read-mostly lookup by name.
package index

import "sync"

// Entry locates one declaration: the document that defines it and the
// AST node ID within that document's ast.Document.
type Entry struct {
	DocumentURI string
	NodeID      string
}

// Index is the process-wide symbol table. Writes are serialized with a
// sync.RWMutex per spec 5's "writers are serialized" contract; reads take
// the read lock, so concurrent lookups from multiple editor-service calls
// don't block each other.
type Index struct {
	mu sync.RWMutex
	// byKind[targetKind][name] -> entries; more than one entry can share a
	// (kind, name) pair across documents (the same declared name exists in
	// two open documents), so Lookup returns every candidate and leaves
	// disambiguation to the caller.
	byKind map[string]map[string][]Entry
	// byDocument tracks which (kind, name) pairs a document contributed,
	// so RemoveDocument can undo exactly what a prior index pass added.
	byDocument map[string][]keyedEntry
}

type keyedEntry struct {
	kind, name string
	entry      Entry
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		byKind:     map[string]map[string][]Entry{},
		byDocument: map[string][]keyedEntry{},
	}
}

// Put records that documentURI declares a name of the given kind at
// nodeID.
func (ix *Index) Put(kind, name, documentURI, nodeID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.byKind[kind] == nil {
		ix.byKind[kind] = map[string][]Entry{}
	}
	e := Entry{DocumentURI: documentURI, NodeID: nodeID}
	ix.byKind[kind][name] = append(ix.byKind[kind][name], e)
	ix.byDocument[documentURI] = append(ix.byDocument[documentURI], keyedEntry{kind: kind, name: name, entry: e})
}

// Lookup returns every entry declared under (kind, name).
func (ix *Index) Lookup(kind, name string) []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return append([]Entry(nil), ix.byKind[kind][name]...)
}

// RemoveDocument removes every entry documentURI previously contributed,
// the first step of re-indexing a document after an edit.
func (ix *Index) RemoveDocument(documentURI string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	for _, ke := range ix.byDocument[documentURI] {
		entries := ix.byKind[ke.kind][ke.name]
		out := entries[:0]
		for _, e := range entries {
			if e.DocumentURI != documentURI {
				out = append(out, e)
			}
		}
		ix.byKind[ke.kind][ke.name] = out
	}
	delete(ix.byDocument, documentURI)
}

// Documents returns every document URI currently contributing entries.
func (ix *Index) Documents() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.byDocument))
	for uri := range ix.byDocument {
		out = append(out, uri)
	}
	return out
}
