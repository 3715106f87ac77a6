package parse

import (
	"github.com/ictara/langbench/automaton"
	"github.com/ictara/langbench/diag"
	"github.com/ictara/langbench/grammar/lrtranslate"
)

// CompileCLR1 builds a canonical LR(1) parse table: one state per distinct
// LR(1) item set, no merging. Grounded on the canonical-collection-driven
// table fill in internal/ictiobus/parse/clr1.go.
func CompileCLR1(out lrtranslate.Output) (*LRTable, []diag.Diagnostic) {
	dfa := lrtranslate.BuildLR1Collection(out.Rules, out.EntryRule)
	return fillLR1Table(dfa, out)
}

// CompileLALR1 builds an LALR(1) parse table over the core-merged
// collection, trading some expressive power (LALR(1) rejects a strict
// subset of the grammars CLR1 accepts) for a far smaller table. Grounded on
// internal/ictiobus/parse/lalr.go.
func CompileLALR1(out lrtranslate.Output) (*LRTable, []diag.Diagnostic) {
	dfa := lrtranslate.BuildLALR1Collection(out.Rules, out.EntryRule)
	return fillLR1Table(dfa, out)
}

func fillLR1Table(dfa *automaton.DFA[lrtranslate.ItemSet], out lrtranslate.Output) (*LRTable, []diag.Diagnostic) {
	table := &LRTable{Initial: dfa.Start, Action: map[string]map[string]LRAction{}, Goto: map[string]map[string]string{}}
	var diags []diag.Diagnostic

	for _, state := range dfa.States() {
		items := dfa.Value(state)
		trans := dfa.TransitionsFrom(state)

		for sym, to := range trans {
			if isTerminalSymbol(items, sym) {
				setShift(table, state, sym, to, &diags, out)
			} else {
				if table.Goto[state] == nil {
					table.Goto[state] = map[string]string{}
				}
				table.Goto[state][sym] = to
			}
		}

		for _, it := range items {
			if _, ok := it.AtDot(); ok {
				continue
			}
			if it.Head == lrtranslate.AugmentedStart {
				setAccept(table, state, it.Lookahead)
				continue
			}
			idx := productionIndex(out, it.Head, it.Right)
			setReduce(table, state, it.Lookahead, it.Head, it.Right, idx, &diags, out)
		}
	}

	return table, diags
}

// productionIndex finds prod's position within out.Rules[head], matching
// the teacher's ProductionID convention (head, index) of naming a specific
// production so the field-map (keyed the same way) can be looked up at
// reduce time.
func productionIndex(out lrtranslate.Output, head string, prod lrtranslate.Production) int {
	for i, p := range out.Rules[head] {
		if sameProduction(p, prod) {
			return i
		}
	}
	return -1
}

func sameProduction(a, b lrtranslate.Production) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func isTerminalSymbol(items lrtranslate.ItemSet, symStr string) bool {
	for _, it := range items {
		if sym, ok := it.AtDot(); ok && sym.String() == symStr {
			return sym.Terminal
		}
	}
	return false
}

// CompileSLR1 builds an SLR(1) parse table over the LR(0) collection,
// deciding reduce actions by consulting FOLLOW(head) rather than a
// per-item lookahead. Grounded on internal/ictiobus/parse/slr.go's role
// (present in the retrieved pack's directory listing by convention with
// lalr.go/clr1.go, though not itself retrieved; the SLR(1) construction
// algorithm here follows the standard dragon-book definition).
func CompileSLR1(out lrtranslate.Output) (*LRTable, []diag.Diagnostic) {
	first := lrtranslate.ComputeFirst(out.Rules)
	follow := lrtranslate.ComputeFollow(out.Rules, first, out.EntryRule)
	dfa := lrtranslate.BuildLR0Collection(out.Rules, out.EntryRule)

	table := &LRTable{Initial: dfa.Start, Action: map[string]map[string]LRAction{}, Goto: map[string]map[string]string{}}
	var diags []diag.Diagnostic

	for _, state := range dfa.States() {
		items := dfa.Value(state)
		trans := dfa.TransitionsFrom(state)

		for sym, to := range trans {
			if isTerminalSymbolLR0(items, sym) {
				setShift(table, state, sym, to, &diags, out)
			} else {
				if table.Goto[state] == nil {
					table.Goto[state] = map[string]string{}
				}
				table.Goto[state][sym] = to
			}
		}

		for _, it := range items {
			if _, ok := it.AtDot(); ok {
				continue
			}
			if it.Head == lrtranslate.AugmentedStart {
				setAccept(table, state, lrtranslate.EndOfInput)
				continue
			}
			idx := productionIndex(out, it.Head, it.Right)
			for term := range follow.Of(it.Head) {
				setReduce(table, state, term, it.Head, it.Right, idx, &diags, out)
			}
		}
	}

	return table, diags
}

func isTerminalSymbolLR0(items lrtranslate.LR0ItemSet, symStr string) bool {
	for _, it := range items {
		if sym, ok := it.AtDot(); ok && sym.String() == symStr {
			return sym.Terminal
		}
	}
	return false
}
