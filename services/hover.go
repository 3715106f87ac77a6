package services

import (
	"strings"

	"github.com/ictara/langbench/syntax"
)

// Hover is the rendered content for a hover request: Contents holds the
// doc-comment text, with any cross-reference links in it rendered as
// absolute URI-qualified links. HoverAt does not set LinkURI.
type Hover struct {
	Contents string
	LinkURI  string
}

// HoverAt renders hover content for offset within root, per spec 4.7:
// the nearest preceding block-comment trivia is a node's doc comment;
// keyword literals with an attached doc comment render that comment.
// documentURI is used to build the absolute link a cross-reference
// renders when the doc comment's own text references one (spec 4.7
// "cross-reference links in doc-comments render as absolute URI-qualified
// links").
func HoverAt(root *syntax.Root, offset int, documentURI string) (Hover, bool) {
	leaf, ok := syntax.FindLeafAt(root.Top, offset)
	if !ok {
		return Hover{}, false
	}
	comment, ok := precedingDocComment(root.Top, leaf)
	if !ok {
		return Hover{}, false
	}
	text := stripBlockCommentMarkers(comment.Leaf.Lexeme())
	return Hover{Contents: qualifyLinks(text, documentURI)}, true
}

// precedingDocComment finds the nearest block-comment leaf that
// immediately precedes target in source order (its End() equals target's
// enclosing significant span start, modulo intervening whitespace-only
// trivia), walking root's full leaf sequence once.
func precedingDocComment(root *syntax.Node, target *syntax.Node) (*syntax.Node, bool) {
	var leaves []*syntax.Node
	syntax.Walk(root, func(n *syntax.Node) {
		if n.Terminal {
			leaves = append(leaves, n)
		}
	})
	idx := -1
	for i, l := range leaves {
		if l == target {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return nil, false
	}
	for i := idx - 1; i >= 0; i-- {
		lexeme := leaves[i].Leaf.Lexeme()
		trimmed := strings.TrimSpace(lexeme)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "/*") {
			return leaves[i], true
		}
		return nil, false
	}
	return nil, false
}

func stripBlockCommentMarkers(lexeme string) string {
	s := strings.TrimSpace(lexeme)
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	return strings.TrimSpace(s)
}

// qualifyLinks rewrites a doc comment's `[Name]` cross-reference
// mentions into absolute, documentURI-qualified links, the same bracket
// syntax spec 6 uses for grammar cross-reference declarations.
func qualifyLinks(text, documentURI string) string {
	var sb strings.Builder
	for i := 0; i < len(text); {
		if text[i] == '[' {
			if end := strings.IndexByte(text[i:], ']'); end >= 0 {
				name := text[i+1 : i+end]
				sb.WriteString("[")
				sb.WriteString(name)
				sb.WriteString("](")
				sb.WriteString(documentURI)
				sb.WriteString("#")
				sb.WriteString(name)
				sb.WriteString(")")
				i += end + 1
				continue
			}
		}
		sb.WriteByte(text[i])
		i++
	}
	return sb.String()
}
