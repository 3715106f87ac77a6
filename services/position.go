package services

import (
	"strings"

	"github.com/ictara/langbench/syntax"
)

// Range is a half-open [Start, End) span expressed both as byte offsets
// and as 1-indexed line/column pairs, since editor clients address
// positions by line/column while the syntax tree addresses them by offset.
type Range struct {
	StartOffset, EndOffset int
	StartLine, StartColumn int
	EndLine, EndColumn     int
}

// Location pairs a Range with the document it was found in, the unit
// References/DocumentHighlight report.
type Location struct {
	DocumentURI string
	Range       Range
}

// rangeOf converts n's [Offset, End) span into a Range using root's source
// text to derive line/column, since syntax.Node itself only carries byte
// offsets (computing line numbers once per node at parse time would cost
// every parse for a feature only editor services need).
func rangeOf(root *syntax.Root, n *syntax.Node) Range {
	sl, sc := lineCol(root.Source, n.Offset)
	el, ec := lineCol(root.Source, n.End())
	return Range{
		StartOffset: n.Offset, EndOffset: n.End(),
		StartLine: sl, StartColumn: sc,
		EndLine: el, EndColumn: ec,
	}
}

func lineCol(source string, offset int) (line, col int) {
	if offset > len(source) {
		offset = len(source)
	}
	line = 1 + strings.Count(source[:offset], "\n")
	if idx := strings.LastIndexByte(source[:offset], '\n'); idx >= 0 {
		col = offset - idx
	} else {
		col = offset + 1
	}
	return line, col
}
