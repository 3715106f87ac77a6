package main

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"

	"github.com/ictara/langbench/parse"
)

// dumpLRTable renders an LRTable as a bordered text table, grounded on
// internal/ictiobus/parse/clr1.go's own canonicalLR1Table.String() (a
// state-by-symbol action/goto grid built the same way, laid out with
// rosed's InsertTableOpts rather than a hand-rolled column writer).
func dumpLRTable(t *parse.LRTable) string {
	states := map[string]bool{t.Initial: true}
	terminals := map[string]bool{}
	nonTerminals := map[string]bool{}

	for state, row := range t.Action {
		states[state] = true
		for term, act := range row {
			terminals[term] = true
			if act.Type == parse.LRShift || act.Type == parse.LRReduce {
				states[act.State] = true
			}
		}
	}
	for state, row := range t.Goto {
		states[state] = true
		for nt, to := range row {
			nonTerminals[nt] = true
			states[to] = true
		}
	}

	stateList := sortedKeys(states)
	termList := sortedKeys(terminals)
	ntList := sortedKeys(nonTerminals)

	header := append([]string{"state"}, termList...)
	header = append(header, "|")
	header = append(header, ntList...)

	data := [][]string{header}
	for _, state := range stateList {
		row := []string{state}
		for _, term := range termList {
			row = append(row, actionCell(t.ActionFor(state, term)))
		}
		row = append(row, "|")
		for _, nt := range ntList {
			if to, ok := t.GotoFor(state, nt); ok {
				row = append(row, to)
			} else {
				row = append(row, "")
			}
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func actionCell(act parse.LRAction) string {
	switch act.Type {
	case parse.LRShift:
		return "s" + act.State
	case parse.LRReduce:
		return fmt.Sprintf("r%s/%d", act.Symbol, act.Index)
	case parse.LRAccept:
		return "acc"
	default:
		return ""
	}
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
