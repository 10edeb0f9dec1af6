package extract

import (
	"regexp"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/obsidian-lsp/vaultls/internal/model"
)

var headingRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+?)[ \t]*#*[ \t]*$`)

// ExtractHeadings finds ATX headings, discarding any whose range falls
// inside a code block (headings have no in-codeblock override).
func ExtractHeadings(path, text string, blocks []Range, toPos func(int) lsp.Position) []model.Heading {
	var out []model.Heading
	for _, m := range headingRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if CoveredByAny(blocks, start, end) {
			continue
		}
		level := m[3] - m[2]
		heading := strings.TrimRight(text[m[4]:m[5]], " \t")
		textStart, textEnd := m[4], m[4]+len(heading)
		out = append(out, model.Heading{
			Path:    path,
			Text:    heading,
			Level:   level,
			Rng:     lsp.Range{Start: toPos(start), End: toPos(end)},
			TextRng: lsp.Range{Start: toPos(textStart), End: toPos(textEnd)},
		})
	}
	return out
}
