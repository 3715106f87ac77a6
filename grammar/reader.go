package grammar

import "fmt"

// elemRef is a placeholder for a bare identifier encountered while parsing
// a rule body; ParseSource cannot tell a rule reference from a terminal
// reference until every terminal declaration in the source has been seen,
// so bodies are built with elemRef nodes and resolved in a second pass.
type elemRef struct {
	Name string
}

func (elemRef) isElement() {}

// reader parses the textual grammar source format described in spec
// section 6: rule and terminal declarations plus the precedence,
// conflicts, specialize, extend, external tokens, external context,
// local tokens, and infix extension blocks.
type reader struct {
	toks []srcTok
	pos  int
	g    *Grammar
}

// ParseSource parses src as a grammar source document and returns the
// resulting Grammar, or the first syntax error encountered. Unlike
// validation diagnostics (which report every problem found), a malformed
// source document cannot be partially modeled, so ParseSource stops at the
// first error exactly as a recursive-descent reader naturally does.
func ParseSource(name string, src string) (*Grammar, error) {
	sc := newScanner(src)
	var toks []srcTok
	for {
		t, err := sc.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == srcEOF {
			break
		}
	}

	r := &reader{toks: toks, g: New(name)}
	if err := r.parseTop(); err != nil {
		return nil, err
	}
	resolveRefs(r.g)
	return r.g, nil
}

func (r *reader) cur() srcTok  { return r.toks[r.pos] }
func (r *reader) atEOF() bool  { return r.cur().kind == srcEOF }
func (r *reader) advance() srcTok {
	t := r.toks[r.pos]
	if r.pos < len(r.toks)-1 {
		r.pos++
	}
	return t
}

func (r *reader) expectPunct(p string) error {
	t := r.cur()
	if t.kind != srcPunct || t.text != p {
		return fmt.Errorf("line %d: expected %q, found %q", t.line, p, t.text)
	}
	r.advance()
	return nil
}

func (r *reader) expectIdent() (string, error) {
	t := r.cur()
	if t.kind != srcIdent {
		return "", fmt.Errorf("line %d: expected identifier, found %q", t.line, t.text)
	}
	r.advance()
	return t.text, nil
}

func (r *reader) expectString() (string, error) {
	t := r.cur()
	if t.kind != srcString {
		return "", fmt.Errorf("line %d: expected string literal, found %q", t.line, t.text)
	}
	r.advance()
	return t.text, nil
}

func (r *reader) isIdent(text string) bool {
	t := r.cur()
	return t.kind == srcIdent && t.text == text
}

func (r *reader) parseTop() error {
	for !r.atEOF() {
		switch {
		case r.isIdent("grammar"):
			r.advance()
			name, err := r.expectIdent()
			if err != nil {
				return err
			}
			r.g.Name = name
			if err := r.expectPunct(";"); err != nil {
				return err
			}
		case r.isIdent("precedence"):
			if err := r.parsePrecedence(); err != nil {
				return err
			}
		case r.isIdent("conflicts"):
			if err := r.parseConflicts(); err != nil {
				return err
			}
		case r.isIdent("specialize"):
			if err := r.parseSpecializeOrExtend(false); err != nil {
				return err
			}
		case r.isIdent("extend"):
			if err := r.parseSpecializeOrExtend(true); err != nil {
				return err
			}
		case r.isIdent("external"):
			if err := r.parseExternal(); err != nil {
				return err
			}
		case r.isIdent("local"):
			if err := r.parseLocalTokens(); err != nil {
				return err
			}
		case r.isIdent("infix"):
			if err := r.parseInfix(); err != nil {
				return err
			}
		case r.isIdent("entry"), r.cur().kind == srcIdent:
			if err := r.parseRuleOrTerminal(); err != nil {
				return err
			}
		default:
			t := r.cur()
			return fmt.Errorf("line %d: unexpected token %q at top level", t.line, t.text)
		}
	}
	return nil
}

func (r *reader) parseRuleOrTerminal() error {
	entry := false
	if r.isIdent("entry") {
		entry = true
		r.advance()
	}
	if r.isIdent("hidden") {
		r.advance()
		if !r.isIdent("terminal") {
			return fmt.Errorf("line %d: 'hidden' only modifies a terminal declaration", r.cur().line)
		}
		return r.parseTerminal(true)
	}
	if r.isIdent("terminal") {
		return r.parseTerminal(false)
	}

	name, err := r.expectIdent()
	if err != nil {
		return err
	}
	typeName := name
	if r.cur().kind == srcPunct && r.cur().text == ":" {
		// peek whether this is "Name : TypeName :" (explicit type) vs
		// "Name : body" (the body's opening colon).
		save := r.pos
		r.advance()
		if r.cur().kind == srcIdent {
			maybeType := r.cur().text
			r.advance()
			if r.cur().kind == srcPunct && r.cur().text == ":" {
				typeName = maybeType
				r.advance()
			} else {
				r.pos = save
				r.advance()
			}
		} else {
			r.pos = save
			r.advance()
		}
	} else {
		return fmt.Errorf("line %d: expected ':' after rule name %q", r.cur().line, name)
	}

	body, err := r.parseAlternative()
	if err != nil {
		return err
	}
	if err := r.expectPunct(";"); err != nil {
		return err
	}

	r.g.AddRule(Rule{Name: name, Entry: entry, TypeName: typeName, Body: body})
	return nil
}

func (r *reader) parseTerminal(hidden bool) error {
	r.advance() // 'terminal'
	name, err := r.expectIdent()
	if err != nil {
		return err
	}
	if err := r.expectPunct(":"); err != nil {
		return err
	}
	t := r.cur()
	if t.kind != srcRegex {
		return fmt.Errorf("line %d: expected /regex/ for terminal %q, found %q", t.line, name, t.text)
	}
	r.advance()
	if err := r.expectPunct(";"); err != nil {
		return err
	}
	r.g.AddTerminal(Terminal{Name: name, Pattern: t.text, Hidden: hidden})
	return nil
}

// parseAlternative parses a '|'-separated list of sequences, each
// optionally closed with a `{TypeName}` action tag.
func (r *reader) parseAlternative() (Element, error) {
	var options []Element
	for {
		seq, err := r.parseSequence()
		if err != nil {
			return nil, err
		}
		if r.cur().kind == srcPunct && r.cur().text == "{" {
			r.advance()
			typeName, err := r.expectIdent()
			if err != nil {
				return nil, err
			}
			if err := r.expectPunct("}"); err != nil {
				return nil, err
			}
			seq = Action{TypeName: typeName, Value: seq}
		}
		options = append(options, seq)
		if r.cur().kind == srcPunct && r.cur().text == "|" {
			r.advance()
			continue
		}
		break
	}
	if len(options) == 1 {
		return options[0], nil
	}
	return Alternative{Options: options}, nil
}

func (r *reader) parseSequence() (Element, error) {
	var items []Element
	for r.isTermStart() {
		item, err := r.parseCardinalityExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("line %d: expected at least one symbol in sequence", r.cur().line)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return Sequence{Items: items}, nil
}

func (r *reader) isTermStart() bool {
	t := r.cur()
	if t.kind == srcIdent {
		return true
	}
	if t.kind == srcString {
		return true
	}
	if t.kind == srcPunct && (t.text == "(" || t.text == "[") {
		return true
	}
	return false
}

func (r *reader) parseCardinalityExpr() (Element, error) {
	base, err := r.parsePrimary()
	if err != nil {
		return nil, err
	}
	if r.cur().kind == srcPunct {
		switch r.cur().text {
		case "?":
			r.advance()
			return Cardinality{Op: CardinalityOptional, Elem: base}, nil
		case "*":
			r.advance()
			return Cardinality{Op: CardinalityStar, Elem: base}, nil
		case "+":
			r.advance()
			return Cardinality{Op: CardinalityPlus, Elem: base}, nil
		}
	}
	return base, nil
}

func (r *reader) parsePrimary() (Element, error) {
	t := r.cur()

	if t.kind == srcIdent {
		// Could be a bare reference, or the start of an assignment
		// (name=, name+=, name?=).
		save := r.pos
		name := t.text
		r.advance()
		if r.cur().kind == srcAssignEq || r.cur().kind == srcAssignAppend || r.cur().kind == srcAssignBool {
			op := AssignOp(r.cur().text)
			r.advance()
			if op == AssignSet && r.cur().kind == srcPunct && r.cur().text == "[" {
				return r.parseCrossRef(name)
			}
			value, err := r.parseAssignValue()
			if err != nil {
				return nil, err
			}
			return Assignment{Name: name, Op: op, Value: value}, nil
		}
		r.pos = save
		r.advance()
		return elemRef{Name: name}, nil
	}

	if t.kind == srcString {
		r.advance()
		return KeywordLiteral{Value: t.text}, nil
	}

	if t.kind == srcPunct && t.text == "(" {
		r.advance()
		inner, err := r.parseAlternative()
		if err != nil {
			return nil, err
		}
		if err := r.expectPunct(")"); err != nil {
			return nil, err
		}
		return inner, nil
	}

	if t.kind == srcPunct && t.text == "[" {
		return r.parseCrossRef("")
	}

	return nil, fmt.Errorf("line %d: expected a grammar symbol, found %q", t.line, t.text)
}

// parseAssignValue parses the right-hand side of an assignment: a
// cross-reference, a grouped alternative, a keyword literal, or a bare
// reference, with an optional cardinality suffix.
func (r *reader) parseAssignValue() (Element, error) {
	t := r.cur()
	var value Element
	var err error
	switch {
	case t.kind == srcPunct && t.text == "[":
		value, err = r.parseCrossRef("")
	case t.kind == srcPunct && t.text == "(":
		r.advance()
		value, err = r.parseAlternative()
		if err == nil {
			err = r.expectPunct(")")
		}
	case t.kind == srcString:
		r.advance()
		value = KeywordLiteral{Value: t.text}
	case t.kind == srcIdent:
		r.advance()
		value = elemRef{Name: t.text}
	default:
		return nil, fmt.Errorf("line %d: expected an assignment value, found %q", t.line, t.text)
	}
	if err != nil {
		return nil, err
	}
	if r.cur().kind == srcPunct {
		switch r.cur().text {
		case "?":
			r.advance()
			return Cardinality{Op: CardinalityOptional, Elem: value}, nil
		case "*":
			r.advance()
			return Cardinality{Op: CardinalityStar, Elem: value}, nil
		case "+":
			r.advance()
			return Cardinality{Op: CardinalityPlus, Elem: value}, nil
		}
	}
	return value, nil
}

// parseCrossRef parses `[Target]` or `[Target : Via]`; fieldName is set by
// the caller for the bare `name=[Target]` form and is "" otherwise.
func (r *reader) parseCrossRef(fieldName string) (Element, error) {
	if err := r.expectPunct("["); err != nil {
		return nil, err
	}
	target, err := r.expectIdent()
	if err != nil {
		return nil, err
	}
	var via Element
	if r.cur().kind == srcPunct && r.cur().text == ":" {
		r.advance()
		name, err := r.expectIdent()
		if err != nil {
			return nil, err
		}
		via = elemRef{Name: name}
	}
	if err := r.expectPunct("]"); err != nil {
		return nil, err
	}
	return CrossRef{FieldName: fieldName, Target: target, Via: via}, nil
}

func (r *reader) parseMemberList() ([]string, error) {
	var members []string
	for {
		t := r.cur()
		switch t.kind {
		case srcIdent:
			r.advance()
			members = append(members, t.text)
		case srcString:
			r.advance()
			members = append(members, t.text)
		default:
			return members, fmt.Errorf("line %d: expected a member name, found %q", t.line, t.text)
		}
		if r.cur().kind == srcPunct && r.cur().text == "," {
			r.advance()
			continue
		}
		break
	}
	return members, nil
}

func (r *reader) parsePrecedence() error {
	r.advance() // 'precedence'
	if err := r.expectPunct("{"); err != nil {
		return err
	}
	block := &PrecedenceBlock{}
	for !(r.cur().kind == srcPunct && r.cur().text == "}") {
		name, err := r.expectIdent()
		if err != nil {
			return err
		}
		assoc, err := r.expectIdent()
		if err != nil {
			return err
		}
		if err := r.expectPunct(":"); err != nil {
			return err
		}
		members, err := r.parseMemberList()
		if err != nil {
			return err
		}
		if err := r.expectPunct(";"); err != nil {
			return err
		}
		block.Levels = append(block.Levels, PrecedenceLevel{Name: name, Assoc: Associativity(assoc), Member: members})
	}
	if err := r.expectPunct("}"); err != nil {
		return err
	}
	r.g.Precedence = block
	return nil
}

func (r *reader) parseConflicts() error {
	r.advance() // 'conflicts'
	if err := r.expectPunct("{"); err != nil {
		return err
	}
	for !(r.cur().kind == srcPunct && r.cur().text == "}") {
		name, err := r.expectIdent()
		if err != nil {
			return err
		}
		if err := r.expectPunct(":"); err != nil {
			return err
		}
		members, err := r.parseMemberList()
		if err != nil {
			return err
		}
		if err := r.expectPunct(";"); err != nil {
			return err
		}
		r.g.Conflicts = append(r.g.Conflicts, ConflictSet{Name: name, Members: members})
	}
	return r.expectPunct("}")
}

func (r *reader) parseSpecializeOrExtend(extend bool) error {
	r.advance() // 'specialize' or 'extend'
	base, err := r.expectIdent()
	if err != nil {
		return err
	}
	if err := r.expectPunct("{"); err != nil {
		return err
	}
	mapping := map[string]string{}
	for !(r.cur().kind == srcPunct && r.cur().text == "}") {
		kw, err := r.expectString()
		if err != nil {
			return err
		}
		if err := r.expectPunct(":"); err != nil {
			return err
		}
		className, err := r.expectIdent()
		if err != nil {
			return err
		}
		if err := r.expectPunct(";"); err != nil {
			return err
		}
		mapping[kw] = className
	}
	if err := r.expectPunct("}"); err != nil {
		return err
	}
	if extend {
		r.g.Extend = append(r.g.Extend, ExtendBlock{BaseTerminal: base, Mapping: mapping})
	} else {
		r.g.Specialize = append(r.g.Specialize, SpecializeBlock{BaseTerminal: base, Mapping: mapping})
	}
	return nil
}

func (r *reader) parseExternal() error {
	r.advance() // 'external'
	if r.isIdent("tokens") {
		r.advance()
		if !r.isIdent("from") {
			return fmt.Errorf("line %d: expected 'from' after 'external tokens'", r.cur().line)
		}
		r.advance()
		path, err := r.expectString()
		if err != nil {
			return err
		}
		if err := r.expectPunct("{"); err != nil {
			return err
		}
		var terms []string
		for !(r.cur().kind == srcPunct && r.cur().text == "}") {
			name, err := r.expectIdent()
			if err != nil {
				return err
			}
			if err := r.expectPunct(";"); err != nil {
				return err
			}
			terms = append(terms, name)
		}
		if err := r.expectPunct("}"); err != nil {
			return err
		}
		r.g.ExternalTokenGroups = append(r.g.ExternalTokenGroups, ExternalTokens{GroupName: path, Terminals: terms})
		for _, name := range terms {
			r.g.AddTerminal(Terminal{Name: name, External: true})
		}
		return nil
	}
	if r.isIdent("context") {
		r.advance()
		name, err := r.expectIdent()
		if err != nil {
			return err
		}
		if !r.isIdent("from") {
			return fmt.Errorf("line %d: expected 'from' after external context name", r.cur().line)
		}
		r.advance()
		path, err := r.expectString()
		if err != nil {
			return err
		}
		if err := r.expectPunct(";"); err != nil {
			return err
		}
		r.g.ExternalContext = &ExternalContext{Name: name, Path: path}
		return nil
	}
	return fmt.Errorf("line %d: expected 'tokens' or 'context' after 'external'", r.cur().line)
}

func (r *reader) parseLocalTokens() error {
	r.advance() // 'local'
	if !r.isIdent("tokens") {
		return fmt.Errorf("line %d: expected 'tokens' after 'local'", r.cur().line)
	}
	r.advance()
	if !r.isIdent("in") {
		return fmt.Errorf("line %d: expected 'in' after 'local tokens'", r.cur().line)
	}
	r.advance()
	stateName, err := r.expectIdent()
	if err != nil {
		return err
	}
	if err := r.expectPunct("{"); err != nil {
		return err
	}
	block := LocalTokens{StateName: stateName}
	for !(r.cur().kind == srcPunct && r.cur().text == "}") {
		isElse := false
		if r.cur().kind == srcPunct && r.cur().text == "@" {
			r.advance()
			if !r.isIdent("else") {
				return fmt.Errorf("line %d: expected 'else' after '@'", r.cur().line)
			}
			r.advance()
			isElse = true
		}
		name, err := r.expectIdent()
		if err != nil {
			return err
		}
		if err := r.expectPunct(";"); err != nil {
			return err
		}
		if isElse {
			block.ElseClass = name
		} else {
			block.Terminals = append(block.Terminals, name)
		}
	}
	if err := r.expectPunct("}"); err != nil {
		return err
	}
	r.g.LocalTokenGroups = append(r.g.LocalTokenGroups, block)
	return nil
}

func (r *reader) parseInfix() error {
	r.advance() // 'infix'
	name, err := r.expectIdent()
	if err != nil {
		return err
	}
	if !r.isIdent("on") {
		return fmt.Errorf("line %d: expected 'on' after infix rule name", r.cur().line)
	}
	r.advance()
	operand, err := r.expectIdent()
	if err != nil {
		return err
	}
	if err := r.expectPunct(":"); err != nil {
		return err
	}

	operators := map[string]string{}
	var tierOrder []string
	tier := 0
	for {
		ops, err := r.parseMemberList()
		if err != nil {
			return err
		}
		levelName := fmt.Sprintf("prec_%s_%d", name, tier)
		tierOrder = append(tierOrder, levelName)
		for _, op := range ops {
			operators[op] = levelName
		}
		tier++
		if r.cur().kind == srcPunct && r.cur().text == ">" {
			r.advance()
			continue
		}
		break
	}
	if err := r.expectPunct(";"); err != nil {
		return err
	}
	r.g.Infix = append(r.g.Infix, InfixRule{Name: name, Operand: operand, Operators: operators, TierOrder: tierOrder})
	return nil
}

// resolveRefs rewrites every elemRef left behind by body parsing into a
// TermRef or RuleRef, now that the grammar's full terminal set is known.
func resolveRefs(g *Grammar) {
	for _, rule := range g.rules {
		rule.Body = resolveElement(g, rule.Body)
	}
}

func resolveElement(g *Grammar, e Element) Element {
	switch v := e.(type) {
	case elemRef:
		if _, ok := g.terminals[v.Name]; ok {
			return TermRef{Name: v.Name}
		}
		return RuleRef{Name: v.Name}
	case Sequence:
		items := make([]Element, len(v.Items))
		for i, item := range v.Items {
			items[i] = resolveElement(g, item)
		}
		return Sequence{Items: items}
	case Alternative:
		options := make([]Element, len(v.Options))
		for i, opt := range v.Options {
			options[i] = resolveElement(g, opt)
		}
		return Alternative{Options: options}
	case Cardinality:
		return Cardinality{Op: v.Op, Elem: resolveElement(g, v.Elem)}
	case Assignment:
		return Assignment{Name: v.Name, Op: v.Op, Value: resolveElement(g, v.Value)}
	case Action:
		return Action{TypeName: v.TypeName, Value: resolveElement(g, v.Value)}
	case CrossRef:
		var via Element
		if v.Via != nil {
			via = resolveElement(g, v.Via)
		}
		return CrossRef{FieldName: v.FieldName, Target: v.Target, Via: via}
	default:
		return e
	}
}
