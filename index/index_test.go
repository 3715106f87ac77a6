package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Index_PutLookup(t *testing.T) {
	ix := New()
	ix.Put("rule", "Widget", "file:///a.lang", "node-1")
	ix.Put("rule", "Widget", "file:///b.lang", "node-2")
	ix.Put("terminal", "Widget", "file:///a.lang", "node-3")

	entries := ix.Lookup("rule", "Widget")
	assert.ElementsMatch(t, []Entry{
		{DocumentURI: "file:///a.lang", NodeID: "node-1"},
		{DocumentURI: "file:///b.lang", NodeID: "node-2"},
	}, entries)

	assert.Len(t, ix.Lookup("terminal", "Widget"), 1)
	assert.Empty(t, ix.Lookup("rule", "NoSuchName"))
}

func Test_Index_RemoveDocument(t *testing.T) {
	ix := New()
	ix.Put("rule", "Widget", "file:///a.lang", "node-1")
	ix.Put("rule", "Gadget", "file:///a.lang", "node-2")
	ix.Put("rule", "Widget", "file:///b.lang", "node-3")

	ix.RemoveDocument("file:///a.lang")

	assert.Len(t, ix.Lookup("rule", "Widget"), 1)
	assert.Empty(t, ix.Lookup("rule", "Gadget"))
	assert.ElementsMatch(t, []string{"file:///b.lang"}, ix.Documents())
}

func Test_Index_PutReindexesDocument(t *testing.T) {
	ix := New()
	ix.Put("rule", "Widget", "file:///a.lang", "node-1")
	ix.RemoveDocument("file:///a.lang")
	ix.Put("rule", "Widget", "file:///a.lang", "node-2")

	entries := ix.Lookup("rule", "Widget")
	assert.Equal(t, []Entry{{DocumentURI: "file:///a.lang", NodeID: "node-2"}}, entries)
}

func Test_Index_Documents(t *testing.T) {
	ix := New()
	assert.Empty(t, ix.Documents())

	ix.Put("rule", "A", "file:///a.lang", "n1")
	ix.Put("rule", "B", "file:///b.lang", "n2")
	assert.ElementsMatch(t, []string{"file:///a.lang", "file:///b.lang"}, ix.Documents())
}
