// Package registry implements the name-indexed service registry spec.md's
// Design Notes describe as the stand-in for the original system's
// dependency-injection container: "a two-level map {languageId ->
// {serviceName -> factory}}; detect cycles during resolution and report as
// Internal." Not present in the teacher (tunaq wires its services by hand
// in main, with no DI container of its own to adapt), so this is new code
// in the teacher's plain, no-framework style: a bare Go map of factory
// closures, no reflection-based container.
package registry

import (
	"fmt"

	"github.com/ictara/langbench/diag"
)

// Factory builds one named service for one language, given a Registry it
// may use to resolve the other services it depends on (e.g. a
// DocumentHighlight factory resolving the Linker and IndexManager services
// it needs to construct itself).
type Factory func(r *Registry) (any, error)

// Registry is the two-level {languageID -> {serviceName -> factory}} map.
// Services are constructed lazily on first Resolve and cached for the
// lifetime of the Registry, per spec's "resolved lazily from a registered
// factory" contract.
type Registry struct {
	factories map[string]map[string]Factory
	instances map[string]map[string]any
	resolving map[string]bool // "languageID/serviceName" currently being built, for cycle detection
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		factories: map[string]map[string]Factory{},
		instances: map[string]map[string]any{},
		resolving: map[string]bool{},
	}
}

// Register installs factory under (languageID, serviceName), overwriting
// any prior registration — a language redefining one of its own services
// (e.g. swapping in a custom NameProvider) is expected, not an error.
func (r *Registry) Register(languageID, serviceName string, factory Factory) {
	if r.factories[languageID] == nil {
		r.factories[languageID] = map[string]Factory{}
	}
	r.factories[languageID][serviceName] = factory
}

// Resolve returns the named service for languageID, building it via its
// registered Factory on first use and caching the result. A factory that
// (directly or transitively, through further Resolve calls while it runs)
// tries to resolve the same (languageID, serviceName) pair it is itself
// building is a cycle, reported as a diag.KindInternal error rather than
// recursing forever.
func (r *Registry) Resolve(languageID, serviceName string) (any, error) {
	key := languageID + "/" + serviceName
	if cached, ok := r.instances[languageID]; ok {
		if v, ok := cached[serviceName]; ok {
			return v, nil
		}
	}
	if r.resolving[key] {
		return nil, fmt.Errorf("%s: cyclic service resolution resolving %q for language %q", diag.KindInternal, serviceName, languageID)
	}
	factory, ok := r.factories[languageID][serviceName]
	if !ok {
		return nil, fmt.Errorf("%s: no factory registered for service %q, language %q", diag.KindInternal, serviceName, languageID)
	}
	r.resolving[key] = true
	defer delete(r.resolving, key)

	v, err := factory(r)
	if err != nil {
		return nil, err
	}
	if r.instances[languageID] == nil {
		r.instances[languageID] = map[string]any{}
	}
	r.instances[languageID][serviceName] = v
	return v, nil
}

// Services named in spec section 6's "Service surface" list, as typed
// constants so callers (and registry-population code) don't hand-spell
// the wire names themselves.
const (
	ServiceParserAdapter    = "ParserAdapter"
	ServiceGrammarTranslator = "GrammarTranslator"
	ServiceLinker           = "Linker"
	ServiceReferences       = "References"
	ServiceNameProvider     = "NameProvider"
	ServiceIndexManager     = "IndexManager"
	ServiceDocumentHighlight = "DocumentHighlight"
	ServiceDocumentSymbols  = "DocumentSymbols"
	ServiceFoldingRange     = "FoldingRange"
	ServiceHover            = "Hover"
	ServiceSignatureHelp    = "SignatureHelp"
	ServiceTypeDefinition   = "TypeDefinition"
	ServiceImplementation   = "Implementation"
	ServiceWorkspaceSymbols = "WorkspaceSymbols"
	ServiceExecuteCommand   = "ExecuteCommand"
)
