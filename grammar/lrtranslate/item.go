// Package lrtranslate implements the grammar translator (spec component
// 4.2): it lowers a grammar.Grammar's tree-shaped rule bodies into the flat
// productions an LR table generator consumes, alongside the field-map and
// keyword set spec section 6 specifies as the LR generator's persisted
// artifacts. Grounded on internal/ictiobus/grammar/item.go's LR0Item/
// LR1Item representation for the flattened production shape, since the
// teacher's own grammar.go (which would have defined Production and the
// flattening/epsilon-removal/left-factoring passes) was not present in the
// retrieved example pack.
package lrtranslate

import "strings"

// Symbol is one grammar symbol in a flattened production.
type Symbol struct {
	Name     string
	Terminal bool
}

func (s Symbol) String() string {
	if s.Terminal {
		return strings.ToLower(s.Name)
	}
	return s.Name
}

// Production is a flat right-hand side, grounded on LR0Item.Right's
// []string representation in internal/ictiobus/grammar/item.go.
type Production []Symbol

func (p Production) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	if len(parts) == 0 {
		return "ε"
	}
	return strings.Join(parts, " ")
}

// ProductionID identifies one flattened production within Output.Rules,
// used as the key into Output.FieldMap and as the production-id the field
// map's keys refer to in the persisted artifact (spec section 6).
type ProductionID struct {
	Head  string
	Index int
}

func (id ProductionID) String() string {
	return id.Head + "#" + itoa(id.Index)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var b []byte
	for i > 0 {
		b = append([]byte{byte('0' + i%10)}, b...)
		i /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

// LR0Item is a production with a dot position, grounded directly on
// internal/ictiobus/grammar/item.go's LR0Item.
type LR0Item struct {
	Head  string
	Right Production
	Dot   int
}

func (it LR0Item) String() string {
	parts := make([]string, 0, len(it.Right)+1)
	for i, s := range it.Right {
		if i == it.Dot {
			parts = append(parts, ".")
		}
		parts = append(parts, s.String())
	}
	if it.Dot == len(it.Right) {
		parts = append(parts, ".")
	}
	return it.Head + " -> " + strings.Join(parts, " ")
}

// AtDot returns the symbol immediately after the dot, and whether one
// exists (false at the end of the production).
func (it LR0Item) AtDot() (Symbol, bool) {
	if it.Dot >= len(it.Right) {
		return Symbol{}, false
	}
	return it.Right[it.Dot], true
}

// Advanced returns a copy of it with the dot moved one position right.
func (it LR0Item) Advanced() LR0Item {
	return LR0Item{Head: it.Head, Right: it.Right, Dot: it.Dot + 1}
}

// LR1Item pairs an LR0Item with a single lookahead terminal, grounded on
// internal/ictiobus/grammar/item.go's LR1Item.
type LR1Item struct {
	LR0Item
	Lookahead string
}

func (it LR1Item) String() string {
	return it.LR0Item.String() + ", " + it.Lookahead
}

// Core returns the LR0Item underlying it, used to group LR(1) states that
// share a core when building an LALR(1) collection.
func (it LR1Item) Core() LR0Item { return it.LR0Item }
