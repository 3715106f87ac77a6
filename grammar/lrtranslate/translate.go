package lrtranslate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ictara/langbench/diag"
	"github.com/ictara/langbench/grammar"
)

// FieldEntry is one entry of a production's field-map: which child index
// carries which assignment identity. Op is one of the grammar.AssignOp
// values, or "ref" for a slot produced by a cross-reference rather than a
// plain assignment. This is the in-memory shape of the field-map JSON spec
// section 6 specifies as a persisted LR generator artifact.
type FieldEntry struct {
	Index int
	Name  string
	Op    string
	// Target is the cross-reference's declared target rule/terminal name,
	// set only when Op == "ref". A plain assignment has no target kind of
	// its own (its value's shape is whatever the assigned Element produces),
	// so Target is "" for every other Op.
	Target string
}

// Output is the grammar translator's result: a flattened, LR-table-ready
// grammar plus the metadata the AST builder (spec 4.6) needs to recover
// assignment identity and keyword classes that the flattening process
// erases from plain production symbols, plus the re-serialized grammar
// text spec section 4.2 specifies as the translator's primary artifact.
type Output struct {
	// GrammarText is the lowered grammar rendered back to source form:
	// the @precedence block, the @top production, every flattened rule
	// (carrying its ~conflict_* and !precMarker annotations), the
	// specialize/extend-generated keyword rules, the external/local token
	// declarations, and the trailing @tokens block, in that order.
	GrammarText string

	Rules     map[string][]Production
	RuleOrder []string
	FieldMap  map[string][]FieldEntry
	Keywords  []string
	EntryRule string

	// PrecOrder lists every precedence level name in emission order: the
	// grammar's own declared blocks first, then one synthesized
	// prec_<Name>_<tier> level per infix group (outermost/loosest tier
	// first). PrecAssocByLevel carries the associativity for each name in
	// PrecOrder.
	PrecOrder       []string
	PrecAssocByLevel map[string]grammar.Associativity

	// PrecLevel maps a terminal or keyword-literal symbol name to its
	// precedence tier (higher wins, index into PrecOrder), derived from
	// the grammar's PrecedenceBlock and from infix-generated operators;
	// terminals absent from the map carry no declared precedence.
	// PrecAssoc carries the associativity for the same symbol.
	PrecLevel map[string]int
	PrecAssoc map[string]grammar.Associativity

	// ConflictMarkers maps a rule name to the `conflict_A_B`-style marker
	// names attached to its productions, in declaration order; a rule
	// named in more than one conflict pair carries more than one marker.
	ConflictMarkers map[string][]string

	// DynamicPrecedence carries the [@dynamicPrecedence=N] annotation for
	// every rule that declares one.
	DynamicPrecedence map[string]int

	// PrecMarkerLevel maps a rule name to the precedence level its
	// precMarker annotation references; the LR symbol for that rule emits
	// `!Level` in GrammarText.
	PrecMarkerLevel map[string]string

	ExternalTokenGroups []grammar.ExternalTokens
	ExternalContext     *grammar.ExternalContext
	LocalTokenGroups    []grammar.LocalTokens
}

// Translate lowers g into Output, or returns the diagnostics from
// g.Validate() if g is not valid enough to lower. Grounded on the
// translator role spec.md assigns to component 4.2: the LR path's grammar
// model is the same grammar.Grammar the top-down path interprets directly,
// but the LR path additionally needs this flat, table-friendly form.
func Translate(g *grammar.Grammar) (Output, []diag.Diagnostic) {
	diags := g.Validate()
	if diag.HasErrors(diags) {
		return Output{}, diags
	}

	tr := &translator{
		g:        g,
		rules:    map[string][]Production{},
		fieldMap: map[string][]FieldEntry{},
		suffix:   map[string]int{},
	}

	for _, r := range g.Rules() {
		tr.flattenTopRule(r)
		if r.Entry {
			tr.entryRule = r.Name
		}
	}
	tr.flattenInfixRules()

	precOrder, precAssocByLevel, precLevel, precAssoc := buildPrecedenceIndex(g)
	conflictMarkers := collectConflictMarkers(g)
	dynPrec := collectDynamicPrecedence(g)
	precMarkerLevel := collectPrecMarkerLevels(g)

	out := Output{
		Rules:               tr.rules,
		RuleOrder:           tr.ruleOrder,
		FieldMap:            tr.fieldMap,
		Keywords:            collectKeywords(g),
		EntryRule:           tr.entryRule,
		PrecOrder:           precOrder,
		PrecAssocByLevel:    precAssocByLevel,
		PrecLevel:           precLevel,
		PrecAssoc:           precAssoc,
		ConflictMarkers:     conflictMarkers,
		DynamicPrecedence:   dynPrec,
		PrecMarkerLevel:     precMarkerLevel,
		ExternalTokenGroups: g.ExternalTokenGroups,
		ExternalContext:     g.ExternalContext,
		LocalTokenGroups:    g.LocalTokenGroups,
	}
	out.GrammarText = renderGrammarText(g, tr, out)
	return out, diags
}

// buildPrecedenceIndex computes the combined precedence index: the
// grammar's declared PrecedenceBlock levels, in order, followed by one
// synthesized level per infix tier (spec 4.2's `prec_<N>_<i>`, left
// associative — the grammar source has no syntax for declaring a
// per-tier associativity on an infix block, so @left is the generated
// default, matching every concrete infix example in the spec).
func buildPrecedenceIndex(g *grammar.Grammar) ([]string, map[string]grammar.Associativity, map[string]int, map[string]grammar.Associativity) {
	var order []string
	assocByLevel := map[string]grammar.Associativity{}
	memberTier := map[string]int{}
	memberAssoc := map[string]grammar.Associativity{}

	if g.Precedence != nil {
		for i, lvl := range g.Precedence.Levels {
			order = append(order, lvl.Name)
			assocByLevel[lvl.Name] = lvl.Assoc
			for _, member := range lvl.Member {
				memberTier[member] = i
				memberAssoc[member] = lvl.Assoc
			}
		}
	}

	for _, inf := range g.Infix {
		for _, lvlName := range inf.TierOrder {
			order = append(order, lvlName)
			assocByLevel[lvlName] = grammar.AssocLeft
		}
	}

	levelIndex := map[string]int{}
	for i, name := range order {
		levelIndex[name] = i
	}
	for _, inf := range g.Infix {
		for op, lvlName := range inf.Operators {
			sym := "'" + op + "'"
			memberTier[sym] = levelIndex[lvlName]
			memberAssoc[sym] = grammar.AssocLeft
		}
	}

	return order, assocByLevel, memberTier, memberAssoc
}

// conflictMarkerName builds the `conflict_A_B`-style marker spec 4.2
// assigns to a declared conflict pair (or, for a set with more than two
// members, the same naming convention extended across the whole set).
func conflictMarkerName(cs grammar.ConflictSet) string {
	return "conflict_" + strings.Join(cs.Members, "_")
}

func collectConflictMarkers(g *grammar.Grammar) map[string][]string {
	out := map[string][]string{}
	for _, cs := range g.Conflicts {
		marker := conflictMarkerName(cs)
		for _, member := range cs.Members {
			out[member] = append(out[member], marker)
		}
	}
	return out
}

func collectDynamicPrecedence(g *grammar.Grammar) map[string]int {
	out := map[string]int{}
	for _, r := range g.Rules() {
		if r.DynamicPrecedence != nil {
			out[r.Name] = *r.DynamicPrecedence
		}
	}
	return out
}

func collectPrecMarkerLevels(g *grammar.Grammar) map[string]string {
	out := map[string]string{}
	for _, r := range g.Rules() {
		if r.PrecMarker != "" {
			out[r.Name] = r.PrecMarker
		}
	}
	return out
}

type translator struct {
	g         *grammar.Grammar
	rules     map[string][]Production
	ruleOrder []string
	fieldMap  map[string][]FieldEntry
	suffix    map[string]int
	entryRule string
}

func (tr *translator) addProduction(head string, p Production, fields []FieldEntry) {
	if _, exists := tr.rules[head]; !exists {
		tr.ruleOrder = append(tr.ruleOrder, head)
	}
	idx := len(tr.rules[head])
	tr.rules[head] = append(tr.rules[head], p)
	if len(fields) > 0 {
		tr.fieldMap[ProductionID{Head: head, Index: idx}.String()] = fields
	}
}

func (tr *translator) nextSuffix(head string) int {
	n := tr.suffix[head]
	tr.suffix[head] = n + 1
	return n
}

func (tr *translator) flattenTopRule(r *grammar.Rule) {
	for _, alt := range tr.expandAlternatives(r.Body) {
		seq := unwrapAction(alt)
		prod, fields := tr.flattenSequence(r.Name, seq)
		tr.addProduction(r.Name, prod, fields)
	}
}

// unwrapAction strips an Action node (the `{TypeName}` tag); the AST
// builder reads the type tag from the grammar model directly rather than
// from the flattened production, so it carries no further meaning here.
func unwrapAction(e grammar.Element) grammar.Element {
	if a, ok := e.(grammar.Action); ok {
		return a.Value
	}
	return e
}

// expandAlternatives returns the list of sequence-shaped alternatives e
// represents: e itself if it is not an Alternative, or its Options
// (recursively expanded) if it is.
func (tr *translator) expandAlternatives(e grammar.Element) []grammar.Element {
	alt, ok := unwrapAction(e).(grammar.Alternative)
	if !ok {
		return []grammar.Element{e}
	}
	var out []grammar.Element
	for _, opt := range alt.Options {
		out = append(out, tr.expandAlternatives(opt)...)
	}
	return out
}

func unwrapSequenceItems(e grammar.Element) []grammar.Element {
	e = unwrapAction(e)
	if seq, ok := e.(grammar.Sequence); ok {
		return seq.Items
	}
	return []grammar.Element{e}
}

func (tr *translator) flattenSequence(head string, e grammar.Element) (Production, []FieldEntry) {
	items := unwrapSequenceItems(e)
	var prod Production
	var fields []FieldEntry
	for idx, item := range items {
		sym, fe := tr.flattenSymbol(head, idx, item)
		prod = append(prod, sym)
		if fe != nil {
			fields = append(fields, *fe)
		}
	}
	return prod, fields
}

func (tr *translator) flattenSymbol(head string, idx int, e grammar.Element) (Symbol, *FieldEntry) {
	switch v := e.(type) {
	case grammar.Assignment:
		sym := tr.flattenValue(head, v.Value)
		return sym, &FieldEntry{Index: idx, Name: v.Name, Op: string(v.Op)}
	case grammar.CrossRef:
		var sym Symbol
		if v.Via != nil {
			sym = tr.flattenValue(head, v.Via)
		} else if _, ok := tr.g.Rule(v.Target); ok {
			sym = Symbol{Name: v.Target}
		} else {
			sym = Symbol{Name: v.Target, Terminal: true}
		}
		return sym, &FieldEntry{Index: idx, Name: v.FieldName, Op: "ref", Target: v.Target}
	default:
		return tr.flattenValue(head, e), nil
	}
}

// flattenValue lowers e (never an Assignment, which only occurs as a direct
// sequence member, handled by flattenSymbol; a CrossRef reaching here lowers
// to its target symbol with no field-map entry) into a single grammar symbol, synthesizing helper rules for cardinality and nested
// grouping exactly as a classic context-free-grammar desugaring pass does.
func (tr *translator) flattenValue(head string, e grammar.Element) Symbol {
	switch v := e.(type) {
	case grammar.TermRef:
		return Symbol{Name: v.Name, Terminal: true}
	case grammar.RuleRef:
		return Symbol{Name: v.Name}
	case grammar.KeywordLiteral:
		return Symbol{Name: "'" + v.Value + "'", Terminal: true}
	case grammar.Cardinality:
		return tr.flattenCardinality(head, v)
	case grammar.Sequence, grammar.Alternative:
		return tr.flattenGroup(head, e)
	case grammar.Action:
		return tr.flattenValue(head, v.Value)
	case grammar.CrossRef:
		if v.Via != nil {
			return tr.flattenValue(head, v.Via)
		}
		if _, ok := tr.g.Rule(v.Target); ok {
			return Symbol{Name: v.Target}
		}
		return Symbol{Name: v.Target, Terminal: true}
	default:
		panic(fmt.Sprintf("lrtranslate: unhandled element type %T", e))
	}
}

func (tr *translator) flattenCardinality(head string, v grammar.Cardinality) Symbol {
	synth := fmt.Sprintf("%s_card%d", head, tr.nextSuffix(head))
	inner := tr.flattenValue(synth, v.Elem)
	self := Symbol{Name: synth}

	switch v.Op {
	case grammar.CardinalityOptional:
		tr.addProduction(synth, Production{inner}, nil)
		tr.addProduction(synth, Production{}, nil)
	case grammar.CardinalityStar:
		tr.addProduction(synth, Production{self, inner}, nil)
		tr.addProduction(synth, Production{}, nil)
	case grammar.CardinalityPlus:
		tr.addProduction(synth, Production{self, inner}, nil)
		tr.addProduction(synth, Production{inner}, nil)
	}
	return self
}

func (tr *translator) flattenGroup(head string, e grammar.Element) Symbol {
	synth := fmt.Sprintf("%s_grp%d", head, tr.nextSuffix(head))
	for _, alt := range tr.expandAlternatives(e) {
		prod, fields := tr.flattenSequence(synth, alt)
		tr.addProduction(synth, prod, fields)
	}
	return Symbol{Name: synth}
}

// flattenInfixRules lowers every grammar.InfixRule into a left-recursive
// precedence-climbing rule family: one synthesized rule per tier, tightest
// binding first, each tier either repeating itself across one of its
// operators (left-recursive) or falling through to the next tighter tier,
// bottoming out at the operand; the infix rule's own name becomes a single
// production over its loosest tier so other rules can reference it
// directly. Grounded on the classic precedence-climbing expansion spec
// section 9's glossary entry for "Infix block" describes.
func (tr *translator) flattenInfixRules() {
	for _, inf := range tr.g.Infix {
		if len(inf.TierOrder) == 0 {
			continue
		}

		opsByTier := map[string][]string{}
		for op, lvl := range inf.Operators {
			opsByTier[lvl] = append(opsByTier[lvl], op)
		}
		for _, ops := range opsByTier {
			sort.Strings(ops)
		}

		next := tr.operandSymbol(inf.Operand)
		for i := len(inf.TierOrder) - 1; i >= 0; i-- {
			level := inf.TierOrder[i]
			self := Symbol{Name: level}
			for _, op := range opsByTier[level] {
				tr.addProduction(level, Production{self, Symbol{Name: "'" + op + "'", Terminal: true}, next}, nil)
			}
			tr.addProduction(level, Production{next}, nil)
			next = self
		}
		tr.addProduction(inf.Name, Production{next}, nil)
	}
}

func (tr *translator) operandSymbol(name string) Symbol {
	if _, ok := tr.g.Rule(name); ok {
		return Symbol{Name: name}
	}
	return Symbol{Name: name, Terminal: true}
}

// collectKeywords walks every rule body for inline KeywordLiteral values
// and every specialize/extend mapping, returning the sorted union: the
// content of the "keywords JSON" artifact spec section 6 names.
func collectKeywords(g *grammar.Grammar) []string {
	set := map[string]bool{}
	var walk func(e grammar.Element)
	walk = func(e grammar.Element) {
		switch v := e.(type) {
		case grammar.Sequence:
			for _, it := range v.Items {
				walk(it)
			}
		case grammar.Alternative:
			for _, opt := range v.Options {
				walk(opt)
			}
		case grammar.Cardinality:
			walk(v.Elem)
		case grammar.Assignment:
			walk(v.Value)
		case grammar.Action:
			walk(v.Value)
		case grammar.CrossRef:
			if v.Via != nil {
				walk(v.Via)
			}
		case grammar.KeywordLiteral:
			set[v.Value] = true
		}
	}
	for _, r := range g.Rules() {
		walk(r.Body)
	}
	for _, sp := range g.Specialize {
		for kw := range sp.Mapping {
			set[kw] = true
		}
	}
	for _, ex := range g.Extend {
		for kw := range ex.Mapping {
			set[kw] = true
		}
	}

	out := make([]string, 0, len(set))
	for kw := range set {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// renderGrammarText re-serializes the lowered grammar back to source form,
// in the output order spec 4.2 fixes: @precedence before @top, rule
// productions (carrying their conflict/precMarker annotations and any
// [@dynamicPrecedence=N] prefix) before the specialize/extend-generated
// keyword rules, external/local token declarations, and the trailing
// @tokens block.
func renderGrammarText(g *grammar.Grammar, tr *translator, out Output) string {
	var b strings.Builder

	if len(out.PrecOrder) > 0 {
		parts := make([]string, len(out.PrecOrder))
		for i, name := range out.PrecOrder {
			parts[i] = fmt.Sprintf("%s @%s", name, out.PrecAssocByLevel[name])
		}
		fmt.Fprintf(&b, "@precedence { %s }\n\n", strings.Join(parts, ", "))
	}

	if tr.entryRule != "" {
		fmt.Fprintf(&b, "@top %s\n\n", tr.entryRule)
	}

	for _, head := range tr.ruleOrder {
		if n, ok := out.DynamicPrecedence[head]; ok {
			fmt.Fprintf(&b, "[@dynamicPrecedence=%d]\n", n)
		}
		alts := make([]string, len(tr.rules[head]))
		for i, p := range tr.rules[head] {
			alts[i] = p.String()
		}
		line := fmt.Sprintf("%s -> %s", head, strings.Join(alts, " | "))
		for _, marker := range out.ConflictMarkers[head] {
			line += " ~" + marker
		}
		if lvl, ok := out.PrecMarkerLevel[head]; ok {
			line += " !" + lvl
		}
		fmt.Fprintf(&b, "%s ;\n", line)
	}
	b.WriteString("\n")

	for _, sp := range g.Specialize {
		for _, kw := range sortedKeys(sp.Mapping) {
			cls := sp.Mapping[kw]
			fmt.Fprintf(&b, "%s { @specialize[@name={%s}]<%s, %q> }\n", cls, cls, sp.BaseTerminal, kw)
		}
	}
	for _, ex := range g.Extend {
		for _, kw := range sortedKeys(ex.Mapping) {
			cls := ex.Mapping[kw]
			fmt.Fprintf(&b, "%s { @extend[@name={%s}]<%s, %q> }\n", cls, cls, ex.BaseTerminal, kw)
		}
	}
	if len(g.Specialize) > 0 || len(g.Extend) > 0 {
		b.WriteString("\n")
	}

	excluded := map[string]bool{}
	for _, group := range g.ExternalTokenGroups {
		fmt.Fprintf(&b, "@external tokens %s from %q { %s }\n", externalTokenizerName(group.GroupName), group.GroupName, strings.Join(group.Terminals, ", "))
		for _, t := range group.Terminals {
			excluded[t] = true
		}
	}
	if g.ExternalContext != nil {
		fmt.Fprintf(&b, "@context %s from %q\n", g.ExternalContext.Name, g.ExternalContext.Path)
	}
	for _, loc := range g.LocalTokenGroups {
		body := strings.Join(loc.Terminals, " ")
		if loc.ElseClass != "" {
			body += " @else " + loc.ElseClass
		}
		fmt.Fprintf(&b, "@local tokens { %s }\n", body)
		for _, t := range loc.Terminals {
			excluded[t] = true
		}
	}
	if len(g.ExternalTokenGroups) > 0 || g.ExternalContext != nil || len(g.LocalTokenGroups) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("@tokens\n")
	for _, t := range g.Terminals() {
		if excluded[t.Name] {
			continue
		}
		b.WriteString(t.Name + "\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// externalTokenizerName derives the camelCase tokenizer name spec 4.2 says
// comes from an external-tokens path's basename: the extension stripped,
// non-identifier separators removed, and each word after the first
// title-cased (e.g. "indent-size.js" -> "indentSize").
func externalTokenizerName(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}

	var words []string
	for _, w := range strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	}) {
		words = append(words, w)
	}
	if len(words) == 0 {
		return base
	}

	var out strings.Builder
	out.WriteString(strings.ToLower(words[0]))
	for _, w := range words[1:] {
		if w == "" {
			continue
		}
		out.WriteString(strings.ToUpper(w[:1]))
		out.WriteString(strings.ToLower(w[1:]))
	}
	return out.String()
}
