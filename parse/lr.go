package parse

import (
	"fmt"

	"github.com/ictara/langbench/diag"
	"github.com/ictara/langbench/grammar/lrtranslate"
	"github.com/ictara/langbench/internal/collections"
	"github.com/ictara/langbench/lex"
	"github.com/ictara/langbench/syntax"
)

// LRAdapter drives a compiled LRTable over a token stream (spec component
// 4.4), producing the same syntax.Node/syntax.Root shape TopDownParser
// does so editor services and the AST builder never need to know which
// backend built a given document. Grounded on the shift/reduce/goto
// dual-stack loop of internal/ictiobus/parse/lr.go's lrParser.Parse
// (Algorithm 4.44), rebuilt to construct *syntax.Node instead of
// *types.ParseTree and to carry assignment identity straight off the
// field-map rather than a separate SDD evaluation pass.
type LRAdapter struct {
	Table  *LRTable
	Out    lrtranslate.Output
	Hidden map[string]bool // token class ID -> trivia, same convention as TopDownParser
}

// Parse runs the table over stream to completion, returning the built CST
// plus diagnostics. Unlike a textbook LR driver that aborts on the first
// error, Parse keeps the parse alive by panic-mode recovery: on an
// unexpected token it discards tokens until one has a non-error action in
// the current state, so a single syntax error does not prevent the rest of
// the document's tree (and its diagnostics) from being produced.
func (a LRAdapter) Parse(stream lex.TokenStream) (*syntax.Root, []diag.Diagnostic) {
	d := &lrDriver{adapter: a, stream: stream}
	top := d.run()
	return &syntax.Root{Top: top, Diagnostics: d.diags}, d.diags
}

// Reparse re-runs the table over the whole of stream, then reuses subtrees
// from prev for any span unaffected by the edit described by (editOffset,
// oldLength, newLength): a fresh node takes over the contents of the old
// node at the same structural position if the old node's span falls
// entirely before editOffset or entirely after editOffset+oldLength and the
// fresh node has the same Kind and post-edit span. Grounded on the incremental-reparse requirement of
// spec 4.4 (Open Question 9(b), resolved in SPEC_FULL.md by preserving node
// identity for untouched spans); since this table-driven shift/reduce
// parser has no notion of resuming mid-stack from an arbitrary tree
// position, the reuse here is a post-pass over the fresh tree that copies
// unaffected subtrees of prev back in, rather than true
// incremental re-parsing from a saved automaton state.
func (a LRAdapter) Reparse(stream lex.TokenStream, prev *syntax.Root, editOffset, oldLength, newLength int) (*syntax.Root, []diag.Diagnostic) {
	root, diags := a.Parse(stream)
	if prev == nil || root == nil {
		return root, diags
	}
	shift := newLength - oldLength
	reuseUnaffected(root.Top, prev.Top, editOffset, editOffset+oldLength, shift)
	return root, diags
}

// reuseUnaffected walks fresh and old in lockstep by structural position.
// Where the old node's pre-edit span lies entirely outside [editStart,
// editEnd) and the fresh node has the same Kind and the matching post-edit
// span, the old node's fields, Children pointers included, are copied into
// fresh; an old subtree after the edit first has every offset in it shifted
// by shift. The descendants of a reused node thus keep their Go pointer
// identity for a caller holding onto them (e.g. a service that cached a
// *syntax.Node for a symbol still present after the edit); the reused node
// itself stays the fresh pointer.
func reuseUnaffected(fresh, old *syntax.Node, editStart, editEnd, shift int) {
	if fresh == nil || old == nil || fresh.Kind != old.Kind {
		return
	}
	if old.End() <= editStart && fresh.Offset == old.Offset && fresh.Length == old.Length {
		*fresh = *old
		return
	}
	if old.Offset >= editEnd && fresh.Offset == old.Offset+shift && fresh.Length == old.Length {
		syntax.Walk(old, func(n *syntax.Node) { n.Offset += shift })
		*fresh = *old
		return
	}
	if len(fresh.Children) != len(old.Children) {
		return
	}
	for i := range fresh.Children {
		reuseUnaffected(fresh.Children[i], old.Children[i], editStart, editEnd, shift)
	}
}

// GetExpectedTokens reports the terminal symbols valid from state, for
// building "expected X" diagnostics or editor completion lists. Grounded on
// findExpectedTokens in internal/ictiobus/parse/lr.go.
func (a LRAdapter) GetExpectedTokens(state string) []string {
	return a.Table.ExpectedTerminals(state)
}

// stackEntry is one dual-stack slot: state+node for a real shift/goto
// result, or just a trivia leaf (trivia=true, state unused) pushed
// immediately before the shift it precedes. Reduce pops a contiguous run
// covering exactly len(Production) real entries, folding any interleaved
// trivia entries into the reduced node's children so the CST fidelity
// invariant (trivia included in leaf concatenation) holds for this backend
// too, the same policy TopDownParser applies via its own pending buffer.
type stackEntry struct {
	state  string
	node   *syntax.Node
	trivia bool
}

type lrDriver struct {
	adapter LRAdapter
	stream  lex.TokenStream
	stack   collections.Stack[stackEntry]
	pending []*syntax.Node
	diags   []diag.Diagnostic
}

func (d *lrDriver) run() *syntax.Node {
	d.stack.Push(stackEntry{state: d.adapter.Table.Initial})

	for {
		tok := d.peekSignificant()
		termID := tok.Class().ID()
		state := d.stack.Peek().state
		act := d.adapter.Table.ActionFor(state, termID)

		switch act.Type {
		case LRShift:
			d.consumeSignificant()
			for _, t := range d.pending {
				d.stack.Push(stackEntry{node: t, trivia: true})
			}
			d.pending = nil
			leaf := syntax.NewLeaf(tok)
			d.stack.Push(stackEntry{state: act.State, node: leaf})

		case LRReduce:
			node, from := d.reduce(act)
			to, ok := d.adapter.Table.GotoFor(from, act.Symbol)
			if !ok {
				d.errorf(tok, "internal: no goto from state %s on %s", from, act.Symbol)
				return node
			}
			d.stack.Push(stackEntry{state: to, node: node})

		case LRAccept:
			top := d.stack.Peek()
			d.flushTrailingTrivia(top.node)
			return top.node

		default:
			if d.recover(state, termID) {
				continue
			}
			human := tok.Class().Human()
			d.errorf(tok, "unexpected %s %s", collections.ArticleFor(human, false), human)
			if !d.stack.Empty() {
				return d.stack.Peek().node
			}
			return syntax.NewInterior("", nil)
		}
	}
}

// reduce pops the stack entries belonging to act's production (trivia
// entries included), builds the reduced interior node, applies the
// field-map's assignment identities to the production's real children
// (trivia doesn't participate in field-map indices, since those were
// assigned during flattening over grammar symbols only), and returns the
// new node plus the state now exposed at the top of the stack for the
// subsequent goto lookup.
func (d *lrDriver) reduce(act LRAction) (*syntax.Node, string) {
	n := len(act.Production)
	var allRev []*syntax.Node
	var realRev []*syntax.Node
	for n > 0 {
		top := d.stack.Pop()
		allRev = append(allRev, top.node)
		if !top.trivia {
			realRev = append(realRev, top.node)
			n--
		}
	}
	all := reverseNodes(allRev)
	real := reverseNodes(realRev)

	applyFieldMap(real, d.adapter.Out.FieldMap[productionKey(act.Symbol, act.Index)])
	node := syntax.NewInterior(act.Symbol, all)
	from := d.stack.Peek().state
	return node, from
}

func reverseNodes(rev []*syntax.Node) []*syntax.Node {
	out := make([]*syntax.Node, len(rev))
	for i, n := range rev {
		out[len(rev)-1-i] = n
	}
	return out
}

// recover discards tokens (panic-mode error recovery) until either the
// stream is exhausted or the current state has a non-error action for the
// lookahead, so one bad token doesn't abort the whole parse.
func (d *lrDriver) recover(state, failedTermID string) bool {
	for d.stream.HasNext() {
		bad := d.consumeSignificant()
		human := bad.Class().Human()
		d.errorf(bad, "skipping unexpected %s %s during error recovery", collections.ArticleFor(human, false), human)
		tok := d.peekSignificant()
		if d.adapter.Table.ActionFor(state, tok.Class().ID()).Type != LRError {
			return true
		}
	}
	return false
}

func (d *lrDriver) peekSignificant() lex.Token {
	for {
		t := d.stream.Peek()
		if !d.adapter.Hidden[t.Class().ID()] {
			return t
		}
		d.stream.Next()
		d.pending = append(d.pending, syntax.NewLeaf(t))
	}
}

func (d *lrDriver) consumeSignificant() lex.Token {
	tok := d.peekSignificant()
	d.stream.Next()
	return tok
}

func (d *lrDriver) flushTrailingTrivia(top *syntax.Node) {
	if len(d.pending) == 0 || top == nil {
		return
	}
	top.Children = append(top.Children, d.pending...)
	d.pending = nil
	if len(top.Children) > 0 {
		last := top.Children[len(top.Children)-1]
		top.Length = last.End() - top.Offset
	}
}

func (d *lrDriver) errorf(tok lex.Token, format string, args ...interface{}) {
	d.diags = append(d.diags, diag.Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Offset:   tok.Offset(),
		Length:   tok.End() - tok.Offset(),
		Line:     tok.Line(),
		Column:   tok.LinePos(),
		Severity: diag.SeverityError,
		Source:   diag.SourceParser,
	})
}

func productionKey(head string, index int) string {
	return lrtranslate.ProductionID{Head: head, Index: index}.String()
}

// applyFieldMap tags children with the assignment identity the translator
// recorded for this production, mirroring what TopDownParser's Assignment/
// CrossRef cases do inline during its own descent.
func applyFieldMap(children []*syntax.Node, fields []lrtranslate.FieldEntry) {
	for _, fe := range fields {
		if fe.Index < 0 || fe.Index >= len(children) {
			continue
		}
		children[fe.Index].FieldName = fe.Name
		children[fe.Index].FieldOp = fe.Op
		if fe.Op == "ref" {
			children[fe.Index].RefTarget = fe.Target
		}
	}
}
