package lrtranslate

import (
	"sort"
	"strings"

	"github.com/ictara/langbench/automaton"
)

// LR0ItemSet is the canonical-collection state value for SLR(1)
// construction, which needs only LR(0) items (reduce actions are decided
// by consulting FOLLOW sets computed separately, per the classic SLR(1)
// algorithm).
type LR0ItemSet map[string]LR0Item

func (s LR0ItemSet) key() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return strings.Join(keys, "\n")
}

// BuildLR0Collection builds the canonical LR(0) collection, used by SLR(1)
// table construction.
func BuildLR0Collection(rules map[string][]Production, entry string) *automaton.DFA[LR0ItemSet] {
	startItem := LR0Item{Head: AugmentedStart, Right: Production{{Name: entry}}, Dot: 0}
	startSet := closure0(LR0ItemSet{startItem.String(): startItem}, rules)

	dfa := automaton.New[LR0ItemSet]()
	stateName := map[string]string{}
	stateName[startSet.key()] = "0"
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
		keys := make([]string, 0, len(symbols))
		for k := range symbols {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, sk := range keys {
			sym := symbols[sk]
			moved := goto0(curSet, sym, rules)
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

func closure0(items LR0ItemSet, rules map[string][]Production) LR0ItemSet {
	out := make(LR0ItemSet, len(items))
	for k, v := range items {
		out[k] = v
	}
	changed := true
	for changed {
		changed = false
		for _, it := range out {
			sym, ok := it.AtDot()
			if !ok || sym.Terminal {
				continue
			}
			for _, prod := range rules[sym.Name] {
				ni := LR0Item{Head: sym.Name, Right: prod, Dot: 0}
				k := ni.String()
				if _, exists := out[k]; !exists {
					out[k] = ni
					changed = true
				}
			}
		}
	}
	return out
}

func goto0(items LR0ItemSet, sym Symbol, rules map[string][]Production) LR0ItemSet {
	moved := LR0ItemSet{}
	for _, it := range items {
		atDot, ok := it.AtDot()
		if !ok || atDot != sym {
			continue
		}
		ni := it.Advanced()
		moved[ni.String()] = ni
	}
	if len(moved) == 0 {
		return moved
	}
	return closure0(moved, rules)
}
