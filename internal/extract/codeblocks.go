package extract

import (
	"regexp"
	"strings"
)

// Range is a half-open byte-offset range [Start, End) into a file's text.
type Range struct{ Start, End int }

func (r Range) Contains(offset int) bool { return offset >= r.Start && offset < r.End }

// Overlaps reports whether [start,end) overlaps r.
func (r Range) Overlaps(start, end int) bool { return start < r.End && end > r.Start }

var fenceOpenRe = regexp.MustCompile("^( {0,3})(`{3,}|:{3,})(.*)$")

// DetectCodeBlocks identifies fenced (``` / :::) and CommonMark-style
// indented code block ranges. The opening fence's character and
// length must match the closing fence's.
func DetectCodeBlocks(text string) []Range {
	var blocks []Range

	lines, offsets := splitLinesWithOffsets(text)

	type openFence struct {
		char      byte
		length    int
		startLine int
	}
	var open *openFence

	// indented-block tracking
	inIndented := false
	indentedStart := 0

	flushIndented := func(endLineIdx int) {
		if inIndented {
			start := offsets[indentedStart]
			end := lineEnd(offsets, len(text), endLineIdx-1)
			if end > start {
				blocks = append(blocks, Range{Start: start, End: end})
			}
			inIndented = false
		}
	}

	for i, line := range lines {
		trimmedLeft := strings.TrimLeft(line, " ")
		indent := len(line) - len(trimmedLeft)

		if open != nil {
			// Looking for a closing fence of the same char and the same length.
			m := fenceOpenRe.FindStringSubmatch(line)
			if m != nil && m[2][0] == open.char && len(m[2]) == open.length && strings.TrimSpace(m[3]) == "" {
				start := offsets[open.startLine]
				end := lineEnd(offsets, len(text), i)
				blocks = append(blocks, Range{Start: start, End: end})
				open = nil
				continue
			}
			continue // still inside fence; nothing else to detect on this line
		}

		if m := fenceOpenRe.FindStringSubmatch(line); m != nil && indent < 4 {
			flushIndented(i)
			open = &openFence{char: m[2][0], length: len(m[2]), startLine: i}
			continue
		}

		isBlank := strings.TrimSpace(line) == ""
		if indent >= 4 && !isBlank {
			if !inIndented {
				inIndented = true
				indentedStart = i
			}
			continue
		}
		if isBlank {
			// A single blank line doesn't end an indented block by itself in
			// CommonMark, but a non-indented, non-blank line does; we treat
			// blank-then-non-indented as the end for simplicity.
			continue
		}
		flushIndented(i)
	}

	if open != nil {
		// Unterminated fence: per CommonMark this still opens a code block
		// that runs to end of file.
		blocks = append(blocks, Range{Start: offsets[open.startLine], End: len(text)})
	}
	flushIndented(len(lines))

	return blocks
}

// CoveredByAny reports whether [start,end) is covered by any block range.
func CoveredByAny(blocks []Range, start, end int) bool {
	for _, b := range blocks {
		if b.Start <= start && end <= b.End {
			return true
		}
	}
	return false
}

func splitLinesWithOffsets(text string) ([]string, []int) {
	var lines []string
	var offsets []int
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			offsets = append(offsets, start)
			start = i + 1
		}
	}
	lines = append(lines, text[start:])
	offsets = append(offsets, start)
	return lines, offsets
}

func lineEnd(offsets []int, textLen, lineIdx int) int {
	if lineIdx+1 < len(offsets) {
		end := offsets[lineIdx+1]
		return end
	}
	return textLen
}
