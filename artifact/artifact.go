// Package artifact encodes and decodes the offline LR generator artifact
// bundle spec section 6 describes: a compiled parse table, its field-map,
// and the keyword set, produced ahead of time and loaded at runtime rather
// than rebuilt from grammar source on every process start. Grounded on
// `internal/tqw`'s use of `github.com/dekarrin/rezi` to serialize versioned
// game-save state to a binary blob loaded at startup (server/dao/sqlite's
// `rezi.EncBinary`/`rezi.DecBinary` calls around a game.State struct) — the
// same "versioned binary blob of structured state, produced offline, loaded
// at process start" shape as this bundle.
package artifact

import (
	"fmt"

	"github.com/dekarrin/rezi"

	"github.com/ictara/langbench/grammar/lrtranslate"
	"github.com/ictara/langbench/parse"
)

// Bundle is the full LR generator artifact: the compiled table, the
// field-map and keyword metadata the translator produced alongside it, and
// the table's start state / accept symbol so a loader can reconstruct a
// parse.LRAdapter without recompiling the grammar.
type Bundle struct {
	Version  int
	Table    parse.LRTable
	FieldMap map[string][]lrtranslate.FieldEntry
	Keywords []string
}

// CurrentVersion is bumped whenever Bundle's shape changes incompatibly;
// Decode rejects a blob whose Version doesn't match.
const CurrentVersion = 1

// Encode serializes b to the artifact bundle's binary form.
func Encode(b Bundle) ([]byte, error) {
	b.Version = CurrentVersion
	return rezi.EncBinary(b), nil
}

// Decode parses an artifact bundle previously produced by Encode.
func Decode(data []byte) (Bundle, error) {
	var b Bundle
	if _, err := rezi.DecBinary(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("artifact: decoding bundle: %w", err)
	}
	if b.Version != CurrentVersion {
		return Bundle{}, fmt.Errorf("artifact: unsupported bundle version %d (want %d)", b.Version, CurrentVersion)
	}
	return b, nil
}

// Adapter builds an LRAdapter from a decoded Bundle, ready to parse without
// ever consulting the original grammar source again.
func (b Bundle) Adapter(hidden map[string]bool) parse.LRAdapter {
	return parse.LRAdapter{
		Table:  &b.Table,
		Out:    lrtranslate.Output{FieldMap: b.FieldMap, Keywords: b.Keywords},
		Hidden: hidden,
	}
}
