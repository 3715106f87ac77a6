package parse

import (
	"fmt"
	"sort"

	"github.com/ictara/langbench/diag"
	"github.com/ictara/langbench/grammar/lrtranslate"
)

// LRTable is a compiled LR parse table: an action per (state, terminal)
// and a goto per (state, non-terminal). Grounded on the LRParseTable
// interface in internal/ictiobus/parse/lr.go, collapsed from an interface
// (the teacher keeps CLR1/LALR1/SLR1 as distinct table implementations
// behind it) into one concrete type, since this workbench's CompileXXX
// functions all populate the same shape from a canonical collection.
type LRTable struct {
	Initial string
	Action  map[string]map[string]LRAction
	Goto    map[string]map[string]string
}

// ActionFor returns the action for state on terminal symbol, defaulting to
// an LRError action when no entry exists.
func (t *LRTable) ActionFor(state, symbol string) LRAction {
	if row, ok := t.Action[state]; ok {
		if act, ok := row[symbol]; ok {
			return act
		}
	}
	return LRAction{Type: LRError}
}

// GotoFor returns the goto state for (state, nonTerminal).
func (t *LRTable) GotoFor(state, nonTerminal string) (string, bool) {
	row, ok := t.Goto[state]
	if !ok {
		return "", false
	}
	s, ok := row[nonTerminal]
	return s, ok
}

// ExpectedTerminals returns every terminal symbol for which state has a
// non-error action, used to build "expected X, Y or Z" diagnostics.
// Grounded on findExpectedTokens in internal/ictiobus/parse/lr.go.
func (t *LRTable) ExpectedTerminals(state string) []string {
	row := t.Action[state]
	out := make([]string, 0, len(row))
	for sym, act := range row {
		if act.Type != LRError {
			out = append(out, sym)
		}
	}
	sort.Strings(out)
	return out
}

func setShift(table *LRTable, state, terminal, to string, diags *[]diag.Diagnostic, prec lrtranslate.Output) {
	resolveAndSet(table, state, terminal, LRAction{Type: LRShift, State: to}, diags, prec)
}

func setReduce(table *LRTable, state, terminal, head string, prod lrtranslate.Production, index int, diags *[]diag.Diagnostic, prec lrtranslate.Output) {
	resolveAndSet(table, state, terminal, LRAction{Type: LRReduce, Symbol: head, Production: prod, Index: index}, diags, prec)
}

func setAccept(table *LRTable, state, terminal string) {
	if table.Action[state] == nil {
		table.Action[state] = map[string]LRAction{}
	}
	table.Action[state][terminal] = LRAction{Type: LRAccept}
}

// resolveAndSet installs act at table.Action[state][terminal], resolving a
// conflict against anything already there. Shift/reduce conflicts consult
// the grammar's declared precedence/associativity when both sides carry
// one; otherwise shift wins (the conventional yacc default) and a warning
// diagnostic is recorded. Reduce/reduce conflicts keep the earlier-declared
// production. Grounded on the conflict-detection comments in
// internal/ictiobus/parse/lraction.go, generalized from "report and error
// out" to "resolve and warn" so a generator pass can still produce a usable
// table for grammars with known, accepted ambiguities (spec's conflicts
// block exists precisely to mark these as intentional).
func resolveAndSet(table *LRTable, state, terminal string, act LRAction, diags *[]diag.Diagnostic, prec lrtranslate.Output) {
	if table.Action[state] == nil {
		table.Action[state] = map[string]LRAction{}
	}
	existing, has := table.Action[state][terminal]
	if !has || existing.Type == LRError {
		table.Action[state][terminal] = act
		return
	}
	if existing.Type == act.Type && existing.Symbol == act.Symbol && existing.State == act.State && existing.Index == act.Index {
		return
	}

	resolved, msg := resolveConflict(existing, act, terminal, prec)
	table.Action[state][terminal] = resolved
	*diags = append(*diags, diag.Diagnostic{
		Message:  fmt.Sprintf("state %s, lookahead %s: %s", state, terminal, msg),
		Severity: diag.SeverityWarning,
		Source:   diag.SourceValidation,
	})
}

func resolveConflict(existing, candidate LRAction, terminal string, prec lrtranslate.Output) (LRAction, string) {
	shift, reduce := existing, candidate
	if existing.Type == LRReduce {
		shift, reduce = candidate, existing
	}
	if shift.Type == LRShift && reduce.Type == LRReduce {
		shiftLevel, shiftHas := prec.PrecLevel[terminal]
		var reduceTerm string
		if len(reduce.Production) > 0 {
			reduceTerm = reduce.Production[len(reduce.Production)-1].String()
		}
		reduceLevel, reduceHas := prec.PrecLevel[reduceTerm]
		if shiftHas && reduceHas {
			if shiftLevel > reduceLevel {
				return shift, "shift/reduce resolved by precedence (shift)"
			}
			if reduceLevel > shiftLevel {
				return reduce, "shift/reduce resolved by precedence (reduce)"
			}
			if prec.PrecAssoc[terminal] == "left" {
				return reduce, "shift/reduce resolved by left associativity (reduce)"
			}
			return shift, "shift/reduce resolved by associativity (shift)"
		}
		return shift, "shift/reduce conflict defaulted to shift"
	}
	// reduce/reduce: keep whichever production was declared first.
	if existing.Type == LRReduce && candidate.Type == LRReduce {
		for _, head := range prec.RuleOrder {
			if head == candidate.Symbol && (head != existing.Symbol || candidate.Index < existing.Index) {
				return candidate, "reduce/reduce conflict defaulted to the earlier-declared production"
			}
			if head == existing.Symbol {
				break
			}
		}
		return existing, "reduce/reduce conflict defaulted to the earlier-declared production"
	}
	return existing, "conflicting actions; kept the first one seen"
}
