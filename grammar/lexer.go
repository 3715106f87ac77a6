package grammar

import (
	"fmt"
	"regexp"

	"github.com/ictara/langbench/lex"
)

// NewLexer builds a lex.Lexer from g's declared terminals and
// specialize/extend keyword promotions, the wiring step between the typed
// grammar model and the regex-driven runtime lexer (spec 4.1's token-class
// builder feeds this, but building the actual Lexer template was left to
// each caller, since a generator artifact loader needs the same classes
// without ever re-registering patterns). Terminals scoped to a Group other
// than "" are registered in a lexer state of that name; no pattern
// registered here switches into such a state, and the lexer starts in the
// "" state. External-tokens terminals are skipped since their lexemes
// come from outside the regex engine entirely.
func NewLexer(g *Grammar, classes BuiltClasses) (*lex.Lexer, error) {
	lx := lex.NewLexer()
	lx.SetStartingState("")

	for _, t := range g.Terminals() {
		if t.External {
			continue
		}
		cl, ok := classes.Classes[lowerID(t.Name)]
		if !ok {
			continue
		}
		lx.RegisterClass(cl, t.Group)
	}
	for id, base := range classes.Keywords {
		// Keyword classes are promotions, not independent terminals;
		// RegisterClass still needs them bound in whatever state their
		// base terminal lexes in.
		t, ok := g.Terminal(base)
		state := ""
		if ok {
			state = t.Group
		}
		for _, cl := range classes.Classes {
			if cl.ID() == id {
				lx.RegisterClass(cl, state)
			}
		}
	}

	for baseTerminal, literals := range classes.Literals {
		t, ok := g.Terminal(baseTerminal)
		state := ""
		if ok {
			state = t.Group
		}
		for literal, classID := range literals {
			if err := lx.AddPattern(regexp.QuoteMeta(literal), lex.LexAs(classID), state); err != nil {
				return nil, fmt.Errorf("grammar: registering keyword literal %q: %w", literal, err)
			}
		}
	}

	for _, t := range g.Terminals() {
		if t.External {
			continue
		}
		classID := lowerID(t.Name)
		if _, ok := classes.Classes[classID]; !ok {
			continue
		}
		if err := lx.AddPattern(t.Pattern, lex.LexAs(classID), t.Group); err != nil {
			return nil, fmt.Errorf("grammar: registering terminal %q: %w", t.Name, err)
		}
	}

	return lx, nil
}
