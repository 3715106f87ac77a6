package grammar

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ictara/langbench/lex"
)

var lowerCaser = cases.Lower(language.Und)

// BuiltClasses is the result of BuildTokenClasses: every token class a
// grammar's lexer must recognize, keyed by class ID, plus the subset that
// are specialize/extend keyword promotions (needed by the translator's
// field-map so a keyword-typed CST leaf still resolves to its base
// terminal's grammar position).
type BuiltClasses struct {
	Classes  map[string]lex.TokenClass
	Keywords map[string]string // promoted class ID -> base terminal name
	// Literals records which exact keyword text promotes to which class
	// ID, grouped by the base terminal it specializes/extends — the
	// lexer builder needs this to register a higher-priority literal
	// pattern ahead of the base terminal's own pattern (longest-match
	// ties favor whichever pattern was registered first, per
	// lex.Lexer's gnu-lex disambiguation).
	Literals map[string]map[string]string // base terminal name -> literal text -> promoted class ID
}

// BuildTokenClasses derives the full set of lexable token classes reachable
// from g's rules: one class per declared Terminal, plus one class per
// keyword promoted by a SpecializeBlock or ExtendBlock. Per spec 4.1, a
// keyword promoted from an identifier-like base terminal (one whose
// Pattern matches the conventional identifier shape) is documented as "a
// category of the base token" rather than an unrelated new terminal; this
// relationship is what Keywords records.
func BuildTokenClasses(g *Grammar) BuiltClasses {
	out := BuiltClasses{
		Classes:  map[string]lex.TokenClass{},
		Keywords: map[string]string{},
		Literals: map[string]map[string]string{},
	}

	for _, t := range g.Terminals() {
		if t.Hidden {
			out.Classes[lowerID(t.Name)] = lex.MakeHiddenClass(t.Name)
		} else {
			out.Classes[lowerID(t.Name)] = lex.MakeDefaultClass(t.Name)
		}
	}

	addPromotion := func(baseTerminal, literal, className string) {
		if out.Literals[baseTerminal] == nil {
			out.Literals[baseTerminal] = map[string]string{}
		}
		if _, claimed := out.Literals[baseTerminal][literal]; claimed {
			return
		}
		if _, already := out.Classes[lowerID(className)]; !already {
			out.Classes[lowerID(className)] = lex.MakeKeywordClass(className)
			out.Keywords[lowerID(className)] = baseTerminal
		}
		out.Literals[baseTerminal][literal] = lowerID(className)
	}

	// specialize entries are applied before extend (see Open Question
	// decisions): a literal extend also maps is left untouched.
	for _, sp := range g.Specialize {
		for literal, className := range sp.Mapping {
			addPromotion(sp.BaseTerminal, literal, className)
		}
	}
	for _, ex := range g.Extend {
		for literal, className := range ex.Mapping {
			addPromotion(ex.BaseTerminal, literal, className)
		}
	}

	return out
}

// lowerID folds a class name to its canonical lowercase class ID. Grammar
// identifiers aren't guaranteed ASCII-only (spec 4.1 only says "ASCII-
// oriented" about the grammar source format, not identifier content), so
// this uses language.Und's locale-independent folding rather than a
// byte-range trick, the same Unicode-aware lowering the tunaq grammar's own
// text-processing layer relies on `golang.org/x/text` for.
func lowerID(s string) string {
	return lowerCaser.String(s)
}
