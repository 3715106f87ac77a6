package grammar

import (
	"fmt"

	"github.com/ictara/langbench/diag"
)

// Validate checks g for the structural errors spec.md section 7 requires
// the generator to refuse to proceed past, plus the extension-specific
// checks spec section 9 assigns to the translator. Grounded on
// internal/ictiobus/grammar/grammar_test.go's Test_Grammar_Validate cases
// (empty grammar, no rules, no terminals all error), generalized from a
// single error return to a diagnostic list since a grammar author benefits
// from seeing every problem in one pass rather than fixing them one at a
// time.
func (g *Grammar) Validate() []diag.Diagnostic {
	var diags []diag.Diagnostic

	if len(g.rules) == 0 {
		diags = append(diags, errDiag("grammar declares no rules"))
	}
	if len(g.terminals) == 0 {
		diags = append(diags, errDiag("grammar declares no terminals"))
	}
	if _, ok := g.EntryRule(); !ok && len(g.rules) > 0 {
		diags = append(diags, errDiag("grammar declares no entry rule"))
	}

	for _, r := range g.Rules() {
		diags = append(diags, g.validateElement(r.Name, r.Body)...)
		if r.PrecMarker != "" && !g.hasPrecLevel(r.PrecMarker) {
			diags = append(diags, errDiag(fmt.Sprintf("rule %q references undeclared precedence level %q", r.Name, r.PrecMarker)))
		}
	}

	if g.Precedence != nil {
		seen := map[string]bool{}
		for _, lvl := range g.Precedence.Levels {
			if seen[lvl.Name] {
				diags = append(diags, errDiag(fmt.Sprintf("duplicate precedence level name %q", lvl.Name)))
			}
			seen[lvl.Name] = true
		}
	}

	externalContexts := 0
	if g.ExternalContext != nil {
		externalContexts++
	}
	if externalContexts > 1 {
		diags = append(diags, errDiag("grammar declares more than one external context"))
	}

	for _, cs := range g.Conflicts {
		for _, member := range cs.Members {
			if _, ok := g.rules[member]; !ok {
				diags = append(diags, errDiag(fmt.Sprintf("conflict set %q references undeclared rule %q", cs.Name, member)))
			}
		}
	}

	seenSpecialize := map[string]map[string]bool{}
	for _, sp := range g.Specialize {
		byBase, ok := seenSpecialize[sp.BaseTerminal]
		if !ok {
			byBase = map[string]bool{}
			seenSpecialize[sp.BaseTerminal] = byBase
		}
		for kw := range sp.Mapping {
			if byBase[kw] {
				diags = append(diags, warnDiag(fmt.Sprintf("keyword %q specialized more than once from terminal %q", kw, sp.BaseTerminal)))
			}
			byBase[kw] = true
		}
	}

	return diags
}

func (g *Grammar) hasPrecLevel(name string) bool {
	if g.Precedence == nil {
		return false
	}
	for _, lvl := range g.Precedence.Levels {
		if lvl.Name == name {
			return true
		}
	}
	return false
}

// validateElement walks a rule body checking that every RuleRef, TermRef,
// and CrossRef target names something the grammar actually declares.
func (g *Grammar) validateElement(ruleName string, e Element) []diag.Diagnostic {
	if e == nil {
		return nil
	}
	var diags []diag.Diagnostic
	switch v := e.(type) {
	case Sequence:
		for _, item := range v.Items {
			diags = append(diags, g.validateElement(ruleName, item)...)
		}
	case Alternative:
		for _, opt := range v.Options {
			diags = append(diags, g.validateElement(ruleName, opt)...)
		}
	case Cardinality:
		diags = append(diags, g.validateElement(ruleName, v.Elem)...)
	case Assignment:
		diags = append(diags, g.validateElement(ruleName, v.Value)...)
	case Action:
		diags = append(diags, g.validateElement(ruleName, v.Value)...)
	case RuleRef:
		if _, ok := g.rules[v.Name]; !ok {
			diags = append(diags, errDiag(fmt.Sprintf("rule %q references undeclared rule %q", ruleName, v.Name)))
		}
	case TermRef:
		if _, ok := g.terminals[v.Name]; !ok {
			diags = append(diags, errDiag(fmt.Sprintf("rule %q references undeclared terminal %q", ruleName, v.Name)))
		}
	case CrossRef:
		if _, ok := g.rules[v.Target]; !ok {
			if _, ok := g.terminals[v.Target]; !ok {
				diags = append(diags, errDiag(fmt.Sprintf("rule %q cross-references undeclared target %q", ruleName, v.Target)))
			}
		}
		diags = append(diags, g.validateElement(ruleName, v.Via)...)
	}
	return diags
}

func errDiag(msg string) diag.Diagnostic {
	return diag.Diagnostic{Message: msg, Severity: diag.SeverityError, Source: diag.SourceValidation}
}

func warnDiag(msg string) diag.Diagnostic {
	return diag.Diagnostic{Message: msg, Severity: diag.SeverityWarning, Source: diag.SourceValidation}
}
