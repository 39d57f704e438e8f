// Package srcpos computes line/column positions over UTF-8 source text
// using grapheme-cluster-aware column counting, so that diagnostics point
// at a stable column even across multi-byte identifiers, string literals,
// and combining characters (spec §3, Token "source position": file index,
// line number, column).
package srcpos

import "github.com/rivo/uniseg"

// Position is a single source location: file index, 1-based line, 1-based
// column.
type Position struct {
	File   int
	Line   int
	Column int
}

// Tracker converts byte offsets within one file's source text into
// Positions, incrementally, in a single forward pass.
//
// A Tracker must be advanced monotonically: callers feed it offsets in
// non-decreasing order (exactly how the lexer consumes text), which lets it
// avoid re-scanning from the beginning of the file on every token.
type Tracker struct {
	file int
	text string

	offset int
	line   int
	col    int
}

// NewTracker creates a Tracker for the given file index and source text.
func NewTracker(file int, text string) *Tracker {
	return &Tracker{file: file, text: text, line: 1, col: 1}
}

// At returns the Position of byte offset off within the tracked text.
//
// off must be >= the offset passed to the previous call to At (or 0, for
// the first call).
func (t *Tracker) At(off int) Position {
	if off < t.offset {
		panic("srcpos: Tracker.At called with a decreasing offset")
	}

	rest := t.text[t.offset:off]
	for len(rest) > 0 {
		g := uniseg.NewGraphemes(rest)
		if !g.Next() {
			break
		}
		cluster := g.Str()
		if cluster == "\n" {
			t.line++
			t.col = 1
		} else {
			t.col++
		}
		rest = rest[len(cluster):]
	}
	t.offset = off

	return Position{File: t.file, Line: t.line, Column: t.col}
}
