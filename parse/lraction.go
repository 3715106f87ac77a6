// Package parse holds the two parser backends spec.md components 4.3 and
// 4.4 describe: a predictive top-down interpreter run directly over a
// grammar.Grammar's tree-shaped rule bodies, and an LR adapter that drives
// a pre-compiled parse table (produced offline by package lrtranslate plus
// a CompileXXX table builder) with support for incremental reparse.
package parse

import "github.com/ictara/langbench/grammar/lrtranslate"

// LRActionType is the kind of action an LR parse table cell holds.
type LRActionType int

const (
	LRError LRActionType = iota
	LRShift
	LRReduce
	LRAccept
)

func (t LRActionType) String() string {
	switch t {
	case LRShift:
		return "SHIFT"
	case LRReduce:
		return "REDUCE"
	case LRAccept:
		return "ACCEPT"
	default:
		return "ERROR"
	}
}

// LRAction is one parse-table cell. Grounded directly on
// internal/ictiobus/parse/lraction.go's LRAction, with an added Index
// field: the reduced production's position within its head's production
// list, which lets the LR adapter look up the field-map entry for this
// exact reduction without re-matching productions by value at parse time.
type LRAction struct {
	Type       LRActionType
	State      string
	Symbol     string
	Production lrtranslate.Production
	Index      int
}
