package services

import (
	"strings"

	"github.com/ictara/langbench/syntax"
)

// FoldingRange is a foldable [StartLine, EndLine] span, both 1-indexed and
// inclusive, per spec 4.7's `{startLine, endLine − 1}` construction.
type FoldingRange struct {
	StartLine, EndLine int
}

// closingDelimiters are the leaf lexemes treated as "a block node's closing
// delimiter" per spec 4.7. The grammar source format (spec 6) doesn't
// declare which literals are block delimiters, so this is the conventional
// closing-bracket set every grammar in this ecosystem uses for blocks;
// a grammar using other delimiter literals simply never folds on them.
var closingDelimiters = map[string]bool{"}": true, ")": true, "]": true}

// FoldingRanges walks root, emitting one FoldingRange per block node whose
// last leaf is a closing delimiter and one per multi-line block comment,
// each only when it spans at least 3 source lines (spec 4.7's
// `endLine − startLine ≥ 2` guard).
func FoldingRanges(root *syntax.Root) []FoldingRange {
	var out []FoldingRange
	syntax.Walk(root.Top, func(n *syntax.Node) {
		if n.Terminal {
			if strings.HasPrefix(n.Leaf.Lexeme(), "/*") {
				if r, ok := foldingRangeOf(root, n.Offset, n.End()); ok {
					out = append(out, r)
				}
			}
			return
		}
		last := lastLeaf(n)
		if last == nil || !closingDelimiters[last.Leaf.Lexeme()] {
			return
		}
		if r, ok := foldingRangeOf(root, n.Offset, n.End()); ok {
			out = append(out, r)
		}
	})
	return out
}

func foldingRangeOf(root *syntax.Root, startOffset, endOffset int) (FoldingRange, bool) {
	startLine, _ := lineCol(root.Source, startOffset)
	endLine, _ := lineCol(root.Source, endOffset)
	if endLine-startLine < 2 {
		return FoldingRange{}, false
	}
	return FoldingRange{StartLine: startLine, EndLine: endLine - 1}, true
}

// lastLeaf returns n's last grammar-significant leaf, skipping trailing
// trivia (whitespace/comments) a backend may have attached as the node's
// final child — a node's closing delimiter is never itself trivia, but
// trivia following it can still be the last entry in Children.
func lastLeaf(n *syntax.Node) *syntax.Node {
	for i := len(n.Children) - 1; i >= 0; i-- {
		c := n.Children[i]
		if c.Terminal {
			if isTrivia(c) {
				continue
			}
			return c
		}
		if last := lastLeaf(c); last != nil {
			return last
		}
	}
	return nil
}

func isTrivia(leaf *syntax.Node) bool {
	lexeme := strings.TrimSpace(leaf.Leaf.Lexeme())
	return lexeme == "" || strings.HasPrefix(lexeme, "//") || strings.HasPrefix(lexeme, "/*")
}
