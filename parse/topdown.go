package parse

import (
	"fmt"
	"strings"

	"github.com/ictara/langbench/diag"
	"github.com/ictara/langbench/grammar"
	"github.com/ictara/langbench/lex"
	"github.com/ictara/langbench/syntax"
)

// TopDownParser is the predictive top-down backend (spec component 4.3):
// it interprets a grammar.Rule's Element tree directly, choosing among
// Alternative options by testing the next token against a FIRST-set
// computed over the tree, rather than compiling the grammar into a table
// first. The choice uses one token of lookahead; the Lookahead field is
// stored but does not affect which alternative is chosen. Grounded on the stack-based driving loop of
// internal/ictiobus/parse/ll1.go's ll1Parser.Parse, restructured from a
// table-driven automaton into a recursive-descent interpreter because this
// workbench's grammar model is a tree (spec 4.1), not the teacher's flat
// Production list.
type TopDownParser struct {
	Lookahead int // Stored horizon (1 if unset); alternative choice peeks one token.
}

func (p TopDownParser) lookahead() int {
	if p.Lookahead <= 0 {
		return 1
	}
	return p.Lookahead
}

// Parse runs the predictive top-down backend over stream using g's entry
// rule, returning the built CST root plus any diagnostics collected along
// the way (spec 4.3/4.7: diagnostics are collected, not raised).
func (p TopDownParser) Parse(g *grammar.Grammar, classes grammar.BuiltClasses, stream lex.TokenStream) (*syntax.Root, []diag.Diagnostic) {
	entry, ok := g.EntryRule()
	if !ok {
		return nil, []diag.Diagnostic{{Message: "grammar declares no entry rule", Severity: diag.SeverityError, Source: diag.SourceParser}}
	}

	ip := &interp{g: g, stream: stream, hidden: hiddenClassSet(classes), firstCache: map[string]map[string]bool{}}
	top := ip.parseRule(entry.Name)

	ip.peek()
	ip.flushPending(&top.Children)
	recomputeSpan(top)

	if tok := ip.stream.Peek(); !tok.Class().Equal(lex.TokenEndOfText) {
		ip.errorf(tok, "unexpected trailing input %q after a complete %s", tok.Lexeme(), entry.Name)
	}

	return &syntax.Root{Top: top, Diagnostics: ip.diags}, ip.diags
}

func recomputeSpan(n *syntax.Node) {
	if n.Terminal || len(n.Children) == 0 {
		return
	}
	n.Offset = n.Children[0].Offset
	last := n.Children[len(n.Children)-1]
	n.Length = last.End() - n.Offset
}

type interp struct {
	g          *grammar.Grammar
	stream     lex.TokenStream
	hidden     map[string]bool
	pending    []*syntax.Node
	diags      []diag.Diagnostic
	firstCache map[string]map[string]bool
	visiting   map[string]bool
}

func hiddenClassSet(classes grammar.BuiltClasses) map[string]bool {
	out := map[string]bool{}
	for id, cl := range classes.Classes {
		if cl.Hidden() {
			out[id] = true
		}
	}
	return out
}

func (ip *interp) drain() {
	for ip.stream.HasNext() {
		t := ip.stream.Peek()
		if !ip.hidden[t.Class().ID()] {
			return
		}
		ip.stream.Next()
		ip.pending = append(ip.pending, syntax.NewLeaf(t))
	}
}

func (ip *interp) flushPending(children *[]*syntax.Node) {
	if len(ip.pending) > 0 {
		*children = append(*children, ip.pending...)
		ip.pending = nil
	}
}

func (ip *interp) peek() lex.Token {
	ip.drain()
	return ip.stream.Peek()
}

func (ip *interp) errorf(tok lex.Token, format string, args ...interface{}) {
	ip.diags = append(ip.diags, diag.Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Offset:   tok.Offset(),
		Length:   tok.End() - tok.Offset(),
		Line:     tok.Line(),
		Column:   tok.LinePos(),
		Severity: diag.SeverityError,
		Source:   diag.SourceParser,
	})
}

// parseRule parses one invocation of the named rule, always returning a
// real interior node with Kind == name (never an anonymous group), per
// wrapAsInterior's unwrap-one-level rule.
func (ip *interp) parseRule(name string) *syntax.Node {
	r, ok := ip.g.Rule(name)
	if !ok {
		tok := ip.peek()
		ip.errorf(tok, "internal: reference to undeclared rule %q", name)
		return &syntax.Node{Kind: name}
	}

	options := ip.expandAlternatives(r.Body)
	chosenIdx := ip.pickAlternative(options)
	if chosenIdx < 0 {
		tok := ip.peek()
		ip.errorf(tok, "unexpected %s while parsing %s", tok.Class().Human(), name)
		return &syntax.Node{Kind: name}
	}

	seq, typeName := unwrapActionLocal(options[chosenIdx], r.TypeName)
	node := ip.parseElement(seq)
	interior := wrapAsInterior(name, node)
	interior.TypeName = typeName
	return interior
}

func unwrapActionLocal(e grammar.Element, defaultType string) (grammar.Element, string) {
	if a, ok := e.(grammar.Action); ok {
		return a.Value, a.TypeName
	}
	return e, defaultType
}

func (ip *interp) expandAlternatives(e grammar.Element) []grammar.Element {
	body := e
	if a, ok := body.(grammar.Action); ok {
		body = a.Value
	}
	alt, ok := body.(grammar.Alternative)
	if !ok {
		return []grammar.Element{e}
	}
	var out []grammar.Element
	for _, opt := range alt.Options {
		out = append(out, ip.expandAlternatives(opt)...)
	}
	return out
}

// pickAlternative chooses which option matches the current lookahead by
// consulting each option's FIRST set, returning -1 if none match.
func (ip *interp) pickAlternative(options []grammar.Element) int {
	if len(options) == 1 {
		return 0
	}
	tok := ip.peek()
	id := tok.Class().ID()
	lexeme := tok.Lexeme()
	fallback := -1
	for i, opt := range options {
		fs := ip.firstSet(unwrapForFirst(opt))
		if fs[id] || fs["'"+lexeme+"'"] {
			return i
		}
		if fs[""] {
			fallback = i
		}
	}
	return fallback
}

func unwrapForFirst(e grammar.Element) grammar.Element {
	if a, ok := e.(grammar.Action); ok {
		return a.Value
	}
	return e
}

// wrapAsInterior unwraps a single level of anonymous grouping produced by
// Sequence, so a rule's CST node has that rule's own children directly
// rather than one synthetic layer of indirection.
func wrapAsInterior(name string, node *syntax.Node) *syntax.Node {
	if node.Kind == "" && node.FieldName == "" && node.FieldOp == "" {
		interior := syntax.NewInterior(name, node.Children)
		return interior
	}
	return syntax.NewInterior(name, []*syntax.Node{node})
}

// spliceInto appends node's contribution to children: if node is an
// identity-less anonymous group (the shape Sequence/Cardinality produce
// when not directly assigned), its children are spliced in directly;
// otherwise node itself is appended as one child.
func spliceInto(children *[]*syntax.Node, node *syntax.Node) {
	if node.Kind == "" && node.FieldName == "" && node.FieldOp == "" {
		*children = append(*children, node.Children...)
		return
	}
	*children = append(*children, node)
}

func (ip *interp) parseElement(e grammar.Element) *syntax.Node {
	switch v := e.(type) {
	case grammar.Sequence:
		var children []*syntax.Node
		for _, item := range v.Items {
			ip.peek()
			ip.flushPending(&children)
			child := ip.parseElement(item)
			spliceInto(&children, child)
		}
		return syntax.NewInterior("", children)

	case grammar.Alternative:
		idx := ip.pickAlternative(v.Options)
		if idx < 0 {
			tok := ip.peek()
			ip.errorf(tok, "unexpected %s", tok.Class().Human())
			return syntax.NewInterior("", nil)
		}
		return ip.parseElement(v.Options[idx])

	case grammar.Cardinality:
		var children []*syntax.Node
		count := 0
		for {
			ip.peek()
			fs := ip.firstSet(v.Elem)
			tok := ip.stream.Peek()
			if !fs[tok.Class().ID()] && !fs["'"+tok.Lexeme()+"'"] {
				break
			}
			ip.flushPending(&children)
			spliceInto(&children, ip.parseElement(v.Elem))
			count++
			if v.Op == grammar.CardinalityOptional {
				break
			}
		}
		if v.Op == grammar.CardinalityPlus && count == 0 {
			tok := ip.peek()
			ip.errorf(tok, "expected at least one repetition, found %s", tok.Class().Human())
		}
		return syntax.NewInterior("", children)

	case grammar.Assignment:
		child := ip.parseElement(v.Value)
		child.FieldName = v.Name
		child.FieldOp = string(v.Op)
		return child

	case grammar.Action:
		return ip.parseElement(v.Value)

	case grammar.CrossRef:
		var child *syntax.Node
		if v.Via != nil {
			child = ip.parseElement(v.Via)
		} else {
			tok := ip.consumeAny()
			child = syntax.NewLeaf(tok)
		}
		child.FieldName = v.FieldName
		child.FieldOp = "ref"
		child.RefTarget = v.Target
		return child

	case grammar.KeywordLiteral:
		tok := ip.peek()
		if tok.Lexeme() != v.Value {
			ip.errorf(tok, "expected %q, found %q", v.Value, tok.Lexeme())
			return syntax.NewLeaf(tok)
		}
		ip.stream.Next()
		return syntax.NewLeaf(tok)

	case grammar.TermRef:
		tok := ip.peek()
		if tok.Class().ID() != strings.ToLower(v.Name) {
			ip.errorf(tok, "expected %s, found %s", v.Name, tok.Class().Human())
			return syntax.NewLeaf(tok)
		}
		ip.stream.Next()
		return syntax.NewLeaf(tok)

	case grammar.RuleRef:
		return ip.parseRule(v.Name)

	default:
		panic(fmt.Sprintf("parse: unhandled grammar element %T", e))
	}
}

func (ip *interp) consumeAny() lex.Token {
	ip.peek()
	tok := ip.stream.Peek()
	ip.stream.Next()
	return tok
}

// firstSet computes the set of terminal class IDs (or, for inline keyword
// literals, the "'literal'"-quoted form) that can begin e, with the empty
// string key present if e can match with zero tokens consumed. Recursive
// rule references are memoized per rule name; a rule still being computed
// (left recursion) contributes an empty set rather than looping forever.
func (ip *interp) firstSet(e grammar.Element) map[string]bool {
	switch v := e.(type) {
	case grammar.Sequence:
		out := map[string]bool{}
		for _, item := range v.Items {
			s := ip.firstSet(item)
			for k := range s {
				if k != "" {
					out[k] = true
				}
			}
			if !s[""] {
				return out
			}
		}
		out[""] = true
		return out
	case grammar.Alternative:
		out := map[string]bool{}
		for _, opt := range v.Options {
			for k := range ip.firstSet(opt) {
				out[k] = true
			}
		}
		return out
	case grammar.Cardinality:
		out := map[string]bool{}
		for k := range ip.firstSet(v.Elem) {
			out[k] = true
		}
		if v.Op != grammar.CardinalityPlus {
			out[""] = true
		}
		return out
	case grammar.Assignment:
		return ip.firstSet(v.Value)
	case grammar.Action:
		return ip.firstSet(v.Value)
	case grammar.CrossRef:
		if v.Via != nil {
			return ip.firstSet(v.Via)
		}
		return map[string]bool{}
	case grammar.KeywordLiteral:
		return map[string]bool{"'" + v.Value + "'": true}
	case grammar.TermRef:
		return map[string]bool{strings.ToLower(v.Name): true}
	case grammar.RuleRef:
		if cached, ok := ip.firstCache[v.Name]; ok {
			return cached
		}
		if ip.visiting == nil {
			ip.visiting = map[string]bool{}
		}
		if ip.visiting[v.Name] {
			return map[string]bool{}
		}
		ip.visiting[v.Name] = true
		defer delete(ip.visiting, v.Name)

		r, ok := ip.g.Rule(v.Name)
		if !ok {
			return map[string]bool{}
		}
		s := ip.firstSet(unwrapForFirst(r.Body))
		ip.firstCache[v.Name] = s
		return s
	default:
		return map[string]bool{}
	}
}
