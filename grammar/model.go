// Package grammar holds the typed grammar model described in spec section
// 4.1: rules built from a closed algebraic family of body expressions,
// terminals, and the extension blocks (precedence, conflicts, infix sugar,
// specialize/extend, external tokens, external context, local tokens) that
// the textual grammar source exposes. The top-down runtime interprets a
// Rule's Body tree directly; the LR translator (package lrtranslate) lowers
// it into flat productions.
package grammar

// Element is the sealed algebraic family a rule body is built from. Each
// concrete type below implements it; the interface carries no methods
// because callers always type-switch on the concrete form, mirroring how
// internal/ictiobus/types.ParseTree is walked by switching on Terminal.
type Element interface {
	isElement()
}

// Sequence is a concatenation of elements, matched in order.
type Sequence struct {
	Items []Element
}

// Alternative is a set of mutually exclusive options; the first option
// whose first-set admits the current lookahead is chosen by the top-down
// backend, and becomes a separate production per option under LR lowering.
type Alternative struct {
	Options []Element
}

// CardinalityOp is the repetition operator attached to a Cardinality node.
type CardinalityOp string

const (
	CardinalityOptional CardinalityOp = "?"
	CardinalityStar     CardinalityOp = "*"
	CardinalityPlus     CardinalityOp = "+"
)

// Cardinality wraps Elem with a repetition operator.
type Cardinality struct {
	Op   CardinalityOp
	Elem Element
}

// KeywordLiteral is an inline string literal appearing in a rule body (e.g.
// `"if"`), as opposed to a reference to a declared terminal.
type KeywordLiteral struct {
	Value string
}

// RuleRef references another rule by name.
type RuleRef struct {
	Name string
}

// TermRef references a declared terminal by name.
type TermRef struct {
	Name string
}

// AssignOp is the operator used in an Assignment.
type AssignOp string

const (
	// AssignSet overwrites the field (`name=value`).
	AssignSet AssignOp = "="
	// AssignAppend appends to an array-valued field (`name+=value`).
	AssignAppend AssignOp = "+="
	// AssignBool sets a boolean field true when Value is present
	// (`name?=value`).
	AssignBool AssignOp = "?="
)

// Assignment gives Value an assignment identity: the (Name, Op) pair that
// the AST builder (spec 4.6) uses to decide which field of the constructed
// node the matched CST child populates.
type Assignment struct {
	Name  string
	Op    AssignOp
	Value Element
}

// Action attaches the constructed-type tag used when a rule's body is an
// Alternative of differently-shaped sequences, each producing a distinct AST
// node type (`{TypeName}`-style action in the grammar source).
type Action struct {
	TypeName string
	Value    Element
}

// CrossRef marks Value (or, in bare form, the reference itself) as
// producing an unresolved reference descriptor rather than a plain child
// node. FieldName is set when the bare `name=[Target]` form is used; Via
// holds the element to match against when the `[Target:Via]` form
// constrains the referencing syntax.
type CrossRef struct {
	FieldName string
	Target    string
	Via       Element
}

func (Sequence) isElement()       {}
func (Alternative) isElement()    {}
func (Cardinality) isElement()    {}
func (KeywordLiteral) isElement() {}
func (RuleRef) isElement()        {}
func (TermRef) isElement()        {}
func (Assignment) isElement()     {}
func (Action) isElement()         {}
func (CrossRef) isElement()       {}

// Terminal is a declared token type.
type Terminal struct {
	Name    string
	Pattern string
	Hidden  bool

	// Group is the local-token-state this terminal is scoped to, or "" for
	// the grammar's common/default state.
	Group string

	// External is true when the terminal's lexeme is supplied by an
	// ExternalTokens group rather than the regex engine (spec 4.1's
	// "external tokens" extension).
	External bool
}

// Rule is one named production rule, its body, and the metadata the
// extension blocks attach to it.
type Rule struct {
	Name     string
	Entry    bool
	TypeName string
	Body     Element

	// DynamicPrecedence, when non-nil, is carried by the LR translator into
	// Output.DynamicPrecedence and rendered into GrammarText as
	// [@dynamicPrecedence=N]; the table compilers in package parse do not
	// consult it when resolving conflicts.
	DynamicPrecedence *int

	// PrecMarker, if set, names a precedence level declared in the
	// grammar's PrecedenceBlock (validated against it; referencing an
	// undeclared level is an error). The translator emits it as a `!L`
	// annotation on this rule's LR symbol, resolving shift/reduce conflicts
	// the way a Yacc/Bison `%prec` tag does.
	PrecMarker string
}

// Grammar is a complete grammar: rules, terminals, and the extension blocks
// that modify how they are validated, lowered, and lexed. Grounded on the
// Grammar{} usage observed in internal/ictiobus/grammar/grammar_test.go
// (AddTerm/AddRule/Validate), generalized to the richer Element-tree body
// this workbench's dual backends require instead of the teacher's flat
// string-slice Production.
type Grammar struct {
	Name string

	rules     map[string]*Rule
	ruleOrder []string

	terminals map[string]*Terminal
	termOrder []string

	Precedence          *PrecedenceBlock
	Conflicts           []ConflictSet
	Infix               []InfixRule
	Specialize          []SpecializeBlock
	Extend              []ExtendBlock
	ExternalTokenGroups []ExternalTokens
	ExternalContext     *ExternalContext
	LocalTokenGroups    []LocalTokens
}

// New returns an empty, named Grammar.
func New(name string) *Grammar {
	return &Grammar{
		Name:      name,
		rules:     map[string]*Rule{},
		terminals: map[string]*Terminal{},
	}
}

// AddRule registers r, overwriting any prior rule of the same name while
// preserving its position in Rules() order.
func (g *Grammar) AddRule(r Rule) {
	if _, exists := g.rules[r.Name]; !exists {
		g.ruleOrder = append(g.ruleOrder, r.Name)
	}
	cp := r
	g.rules[r.Name] = &cp
}

// AddTerminal registers t, overwriting any prior terminal of the same name
// while preserving its position in Terminals() order.
func (g *Grammar) AddTerminal(t Terminal) {
	if _, exists := g.terminals[t.Name]; !exists {
		g.termOrder = append(g.termOrder, t.Name)
	}
	cp := t
	g.terminals[t.Name] = &cp
}

// Rule looks up a rule by name.
func (g *Grammar) Rule(name string) (*Rule, bool) {
	r, ok := g.rules[name]
	return r, ok
}

// Terminal looks up a terminal by name.
func (g *Grammar) Terminal(name string) (*Terminal, bool) {
	t, ok := g.terminals[name]
	return t, ok
}

// Rules returns every rule in declaration order.
func (g *Grammar) Rules() []*Rule {
	out := make([]*Rule, len(g.ruleOrder))
	for i, name := range g.ruleOrder {
		out[i] = g.rules[name]
	}
	return out
}

// Terminals returns every terminal in declaration order.
func (g *Grammar) Terminals() []*Terminal {
	out := make([]*Terminal, len(g.termOrder))
	for i, name := range g.termOrder {
		out[i] = g.terminals[name]
	}
	return out
}

// EntryRule returns the rule marked Entry, if one has been declared.
func (g *Grammar) EntryRule() (*Rule, bool) {
	for _, name := range g.ruleOrder {
		if g.rules[name].Entry {
			return g.rules[name], true
		}
	}
	return nil, false
}

// Copy returns a deep-enough copy of g suitable for a translator to mutate
// (e.g. to desugar cardinality into helper rules) without affecting the
// caller's original.
func (g *Grammar) Copy() *Grammar {
	cp := New(g.Name)
	cp.ruleOrder = append([]string(nil), g.ruleOrder...)
	cp.termOrder = append([]string(nil), g.termOrder...)
	for k, v := range g.rules {
		rcp := *v
		cp.rules[k] = &rcp
	}
	for k, v := range g.terminals {
		tcp := *v
		cp.terminals[k] = &tcp
	}
	cp.Precedence = g.Precedence
	cp.Conflicts = append([]ConflictSet(nil), g.Conflicts...)
	cp.Infix = append([]InfixRule(nil), g.Infix...)
	cp.Specialize = append([]SpecializeBlock(nil), g.Specialize...)
	cp.Extend = append([]ExtendBlock(nil), g.Extend...)
	cp.ExternalTokenGroups = append([]ExternalTokens(nil), g.ExternalTokenGroups...)
	cp.ExternalContext = g.ExternalContext
	cp.LocalTokenGroups = append([]LocalTokens(nil), g.LocalTokenGroups...)
	return cp
}
