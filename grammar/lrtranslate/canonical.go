package lrtranslate

import (
	"sort"
	"strings"

	"github.com/ictara/langbench/automaton"
)

const AugmentedStart = "$start"
const EndOfInput = "$"

// ItemSet is a canonical-collection state value: every LR(1) item active in
// that state, keyed by its String() form for set semantics.
type ItemSet map[string]LR1Item

func (s ItemSet) key() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\n")
}

func (s ItemSet) clone() ItemSet {
	cp := make(ItemSet, len(s))
	for k, v := range s {
		cp[k] = v
	}
	return cp
}

// BuildLR1Collection builds the canonical LR(1) collection of item sets for a
// flattened grammar, closing under the augmented start symbol
// "$start -> EntryRule $". Grounded on NewLR1ViablePrefixDFA in
// internal/ictiobus/automaton/automaton.go, restructured as a direct
// closure/goto worklist over automaton.DFA rather than building an NFA and
// determinizing it, since LR(1) closure is already deterministic per state.
func BuildLR1Collection(rules map[string][]Production, entry string) *automaton.DFA[ItemSet] {
	first := ComputeFirst(rules)

	startItem := LR1Item{
		LR0Item:   LR0Item{Head: AugmentedStart, Right: Production{{Name: entry}}, Dot: 0},
		Lookahead: EndOfInput,
	}
	startSet := closure(ItemSet{startItem.String(): startItem}, rules, first)

	dfa := automaton.New[ItemSet]()
	stateName := map[string]string{}
	startKey := startSet.key()
	stateName[startKey] = "0"
	dfa.AddState("0", startSet, true)
	dfa.Start = "0"

	worklist := []string{"0"}
	nextNum := 1

	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		curSet := dfa.Value(cur)

		symbols := map[string]Symbol{}
		for _, it := range curSet {
			if sym, ok := it.AtDot(); ok {
				symbols[sym.String()] = sym
			}
		}

		symKeys := make([]string, 0, len(symbols))
		for k := range symbols {
			symKeys = append(symKeys, k)
		}
		sort.Strings(symKeys)

		for _, sk := range symKeys {
			sym := symbols[sk]
			moved := gotoSet(curSet, sym, rules, first)
			if len(moved) == 0 {
				continue
			}
			key := moved.key()
			name, exists := stateName[key]
			if !exists {
				name = itoaPublic(nextNum)
				nextNum++
				stateName[key] = name
				dfa.AddState(name, moved, true)
				worklist = append(worklist, name)
			}
			dfa.AddTransition(cur, sym.String(), name)
		}
	}

	return dfa
}

func closure(items ItemSet, rules map[string][]Production, first FirstSets) ItemSet {
	out := items.clone()
	changed := true
	for changed {
		changed = false
		for _, it := range snapshot(out) {
			sym, ok := it.AtDot()
			if !ok || sym.Terminal {
				continue
			}
			rest := append(Production{}, it.Right[it.Dot+1:]...)
			lookaheads := lookaheadsFor(rest, it.Lookahead, first)

			for _, prod := range rules[sym.Name] {
				for la := range lookaheads {
					ni := LR1Item{LR0Item: LR0Item{Head: sym.Name, Right: prod, Dot: 0}, Lookahead: la}
					k := ni.String()
					if _, exists := out[k]; !exists {
						out[k] = ni
						changed = true
					}
				}
			}
		}
	}
	return out
}

func snapshot(s ItemSet) []LR1Item {
	out := make([]LR1Item, 0, len(s))
	for _, it := range s {
		out = append(out, it)
	}
	return out
}

func lookaheadsFor(rest Production, outerLookahead string, first FirstSets) map[string]bool {
	firsts := first.FirstOfSequence(rest)
	out := map[string]bool{}
	for t := range firsts {
		if t == "" {
			continue
		}
		out[t] = true
	}
	if firsts[""] || len(rest) == 0 {
		out[outerLookahead] = true
	}
	return out
}

func gotoSet(items ItemSet, sym Symbol, rules map[string][]Production, first FirstSets) ItemSet {
	moved := ItemSet{}
	for _, it := range items {
		atDot, ok := it.AtDot()
		if !ok || atDot != sym {
			continue
		}
		ni := LR1Item{LR0Item: it.Advanced(), Lookahead: it.Lookahead}
		moved[ni.String()] = ni
	}
	if len(moved) == 0 {
		return moved
	}
	return closure(moved, rules, first)
}

func itoaPublic(i int) string {
	return itoa(i)
}
