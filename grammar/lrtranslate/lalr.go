package lrtranslate

import (
	"sort"

	"github.com/ictara/langbench/automaton"
)

// BuildLALR1Collection builds an LALR(1) collection by merging every state
// of the canonical LR(1) collection that shares an LR(0) core (the set of
// items with their lookaheads stripped), unioning their lookaheads.
// Grounded on the core-merge strategy of NewLALR1ViablePrefixDFA in
// internal/ictiobus/automaton/automaton.go, simplified from that function's
// NFA transition-rewriting loop into a direct two-pass grouping: compute
// the full LR(1) collection once, group states by core, then rebuild a DFA
// over the merged groups. This costs more memory than incrementally
// merging during construction, but produces the same result and is far
// easier to follow.
func BuildLALR1Collection(rules map[string][]Production, entry string) *automaton.DFA[ItemSet] {
	lr1 := BuildLR1Collection(rules, entry)

	coreKeyOf := map[string]string{} // lr1 state name -> core key
	groupOf := map[string]string{}   // core key -> merged state name
	mergedItems := map[string]ItemSet{}
	var groupOrder []string

	for _, state := range lr1.States() {
		items := lr1.Value(state)
		ck := coreKey(items)
		coreKeyOf[state] = ck
		if _, ok := groupOf[ck]; !ok {
			groupOf[ck] = ck
			groupOrder = append(groupOrder, ck)
			mergedItems[ck] = ItemSet{}
		}
		for k, it := range items {
			mergedItems[ck][k] = it
		}
	}

	dfa := automaton.New[ItemSet]()
	for _, ck := range groupOrder {
		dfa.AddState(groupOf[ck], mergedItems[ck], true)
	}
	dfa.Start = groupOf[coreKeyOf[lr1.Start]]

	for _, state := range lr1.States() {
		fromGroup := groupOf[coreKeyOf[state]]
		for sym, to := range lr1.TransitionsFrom(state) {
			toGroup := groupOf[coreKeyOf[to]]
			if existing, ok := dfa.Transition(fromGroup, sym); ok && existing != toGroup {
				continue
			}
			dfa.AddTransition(fromGroup, sym, toGroup)
		}
	}

	return dfa
}

func coreKey(items ItemSet) string {
	keys := make([]string, 0, len(items))
	for _, it := range items {
		keys = append(keys, it.LR0Item.String())
	}
	sort.Strings(keys)
	out := ""
	for _, k := range keys {
		out += k + "\n"
	}
	return out
}
