// Package config decodes a language's project manifest: which grammar file
// to compile, which backend to run it with, and the top-down backend's
// lookahead horizon. Not present in tunaq's own startup path (it takes a
// `.tqw` world file plus flags, no toml project manifest), but
// `github.com/BurntSushi/toml` is already one of tunaq's own dependencies
// (`internal/tqw` decodes world/save-data manifests with it); this package
// reuses the same "typed struct decoded from a small toml file" shape for
// langbench's project manifest instead.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Backend selects which parser runtime a project compiles to.
type Backend string

const (
	BackendTopDown Backend = "topdown"
	BackendLR      Backend = "lr"
)

// Project is one language project's manifest.
type Project struct {
	// Name is the language identifier used as the registry's languageID.
	Name string `toml:"name"`

	// EntryGrammar is the path to the grammar source file (spec 6's
	// textual grammar format) relative to the manifest's own directory.
	EntryGrammar string `toml:"entry_grammar"`

	// Backend selects topdown or lr. Defaults to topdown if empty.
	Backend Backend `toml:"backend"`

	// MaxLookahead is stored as the top-down backend's lookahead horizon
	// (spec 4.3); that backend chooses alternatives on the next token only.
	// Ignored when Backend is lr. Defaults to 3 if zero.
	MaxLookahead int `toml:"max_lookahead"`

	// ArtifactPath is where the LR generator artifact bundle (spec 6) is
	// read from / written to; ignored when Backend is topdown.
	ArtifactPath string `toml:"artifact_path"`
}

// defaults fills Project fields spec.md documents as having a default.
func (p *Project) defaults() {
	if p.Backend == "" {
		p.Backend = BackendTopDown
	}
	if p.MaxLookahead == 0 {
		p.MaxLookahead = 3
	}
}

// Load decodes a project manifest from path.
func Load(path string) (*Project, error) {
	var p Project
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", path, err)
	}
	p.defaults()
	if p.Name == "" {
		return nil, fmt.Errorf("config: %s: missing required field %q", path, "name")
	}
	if p.EntryGrammar == "" {
		return nil, fmt.Errorf("config: %s: missing required field %q", path, "entry_grammar")
	}
	if !filepath.IsAbs(p.EntryGrammar) {
		p.EntryGrammar = filepath.Join(filepath.Dir(path), p.EntryGrammar)
	}
	return &p, nil
}

// Parse decodes a project manifest directly from toml text, used by tests
// and by callers that already have the manifest contents in memory.
func Parse(text string) (*Project, error) {
	var p Project
	if _, err := toml.Decode(text, &p); err != nil {
		return nil, fmt.Errorf("config: decoding manifest: %w", err)
	}
	p.defaults()
	if p.Name == "" {
		return nil, fmt.Errorf("config: missing required field %q", "name")
	}
	if p.EntryGrammar == "" {
		return nil, fmt.Errorf("config: missing required field %q", "entry_grammar")
	}
	return &p, nil
}
