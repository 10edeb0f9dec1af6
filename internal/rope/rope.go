// Package rope implements the vault's per-file text buffer.
//
// A Rope owns no parsed state; it only answers byte-offset/line/character
// questions so the rest of the engine never has to reimplement UTF-16
// position math.
package rope

import (
	"sort"
	"unicode/utf8"

	lsp "github.com/sourcegraph/go-lsp"
)

// Rope is an immutable, line-indexed view over one file's text.
type Rope struct {
	text       string
	lineStarts []int // byte offset of the start of each line; lineStarts[0] == 0
}

// New builds a Rope over text, indexing line-start offsets once up front.
func New(text string) *Rope {
	r := &Rope{text: text, lineStarts: []int{0}}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			r.lineStarts = append(r.lineStarts, i+1)
		}
	}
	return r
}

// Text returns the full buffer.
func (r *Rope) Text() string { return r.text }

// LineCount returns the number of lines (a file with no trailing newline
// still has at least one line).
func (r *Rope) LineCount() int { return len(r.lineStarts) }

// Line returns line n (0-indexed) with any trailing \r\n or \n stripped.
func (r *Rope) Line(n int) string {
	if n < 0 || n >= len(r.lineStarts) {
		return ""
	}
	start := r.lineStarts[n]
	end := len(r.text)
	if n+1 < len(r.lineStarts) {
		end = r.lineStarts[n+1]
		if end > start && r.text[end-1] == '\n' {
			end--
		}
		if end > start && r.text[end-1] == '\r' {
			end--
		}
	}
	return r.text[start:end]
}

// lineForOffset returns the line index containing byte offset.
func (r *Rope) lineForOffset(offset int) int {
	// Largest i such that lineStarts[i] <= offset.
	i := sort.Search(len(r.lineStarts), func(i int) bool { return r.lineStarts[i] > offset })
	if i == 0 {
		return 0
	}
	return i - 1
}

// OffsetToPosition converts a byte offset into an LSP Position measured in
// UTF-16 code units, as the protocol requires.
func (r *Rope) OffsetToPosition(offset int) lsp.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(r.text) {
		offset = len(r.text)
	}
	line := r.lineForOffset(offset)
	lineStart := r.lineStarts[line]
	return lsp.Position{Line: line, Character: utf16Len(r.text[lineStart:offset])}
}

// OffsetRangeToLSPRange converts a half-open byte range [start, end) to an
// LSP Range.
func (r *Rope) OffsetRangeToLSPRange(start, end int) lsp.Range {
	return lsp.Range{Start: r.OffsetToPosition(start), End: r.OffsetToPosition(end)}
}

// PositionToOffset converts an LSP Position back to a byte offset within
// this rope's text.
func (r *Rope) PositionToOffset(pos lsp.Position) int {
	if pos.Line < 0 {
		return 0
	}
	if pos.Line >= len(r.lineStarts) {
		return len(r.text)
	}
	line := r.Line(pos.Line)
	target := pos.Character
	units := 0
	byteOffset := 0
	for _, ch := range line {
		if units >= target {
			break
		}
		if ch > 0xFFFF {
			units += 2
		} else {
			units++
		}
		byteOffset += utf8.RuneLen(ch)
	}
	return r.lineStarts[pos.Line] + byteOffset
}

// utf16Len counts the UTF-16 code units needed to encode s.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		if r > 0xFFFF {
			n += 2
		} else {
			n++
		}
	}
	return n
}
