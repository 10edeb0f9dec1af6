package extract

import (
	"fmt"
	"regexp"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/obsidian-lsp/vaultls/internal/model"
)

// The AST and regex strategies overlap on exactly one construct family:
// inline CommonMark links. ExtractMDLinksRegex is the regex side of that
// overlap, and CompareStrategies diffs the two so drift between them is a
// test failure rather than a silent behavior split (the AST side is what
// production extraction uses; the regex side exists to cross-check it).

var mdLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(([^)]*)\)`)

// ExtractMDLinksRegex finds inline `[display](dest)` links by pattern
// matching, applying the same classification rules as the AST
// strategy. Images (`![alt](...)`) are skipped; so are links whose display
// text is empty, which the AST strategy cannot anchor a range to either.
func ExtractMDLinksRegex(text string, blocks []Range, toPos func(int) lsp.Position) []model.Reference {
	var out []model.Reference
	for _, m := range mdLinkRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if start > 0 && text[start-1] == '!' {
			continue
		}
		if CoveredByAny(blocks, start, end) {
			continue
		}
		display := text[m[2]:m[3]]
		if strings.HasPrefix(display, "^") {
			continue // footnote reference, not a link
		}
		dest := text[m[4]:m[5]]

		// Angle-bracket destination: `[d](<path with spaces>)`.
		if strings.HasPrefix(dest, "<") && strings.HasSuffix(dest, ">") {
			dest = dest[1 : len(dest)-1]
		} else if idx := strings.IndexAny(dest, " \t"); idx >= 0 {
			// `[d](path "title")`: the destination stops at the first
			// whitespace when a quoted title follows.
			if strings.HasPrefix(strings.TrimLeft(dest[idx:], " \t"), `"`) {
				dest = dest[:idx]
			}
		}

		rng := lsp.Range{Start: toPos(start), End: toPos(end)}
		if ref, ok := linkToReference(dest, display, rng); ok {
			out = append(out, ref)
		}
	}
	return out
}

// Mismatch is one divergence between the two extraction strategies over the
// same input.
type Mismatch struct {
	Detail string
}

func (m Mismatch) String() string { return m.Detail }

// CompareStrategies runs the AST and regex strategies over text and returns
// every {variant, reference_text, display_text, range} divergence on the
// constructs both cover. An empty result means the strategies agree.
func CompareStrategies(text string, toPos func(int) lsp.Position) []Mismatch {
	blocks := DetectCodeBlocks(text)

	var ast []model.Reference
	for _, r := range ExtractASTReferences(text, blocks, toPos) {
		switch r.(type) {
		case model.MDFileLink, model.MDHeadingLink, model.MDIndexedBlockLink:
			ast = append(ast, r)
		}
	}
	rx := ExtractMDLinksRegex(text, blocks, toPos)

	var out []Mismatch
	n := len(ast)
	if len(rx) != n {
		out = append(out, Mismatch{Detail: fmt.Sprintf("count: ast=%d regex=%d", len(ast), len(rx))})
		if len(rx) < n {
			n = len(rx)
		}
	}
	for i := 0; i < n; i++ {
		if d := diffReference(ast[i], rx[i]); d != "" {
			out = append(out, Mismatch{Detail: fmt.Sprintf("link %d: %s", i, d)})
		}
	}
	return out
}

func diffReference(a, b model.Reference) string {
	if fmt.Sprintf("%T", a) != fmt.Sprintf("%T", b) {
		return fmt.Sprintf("variant %T vs %T", a, b)
	}
	da, db := a.Data(), b.Data()
	switch {
	case da.Text != db.Text:
		return fmt.Sprintf("reference_text %q vs %q", da.Text, db.Text)
	case da.Display != db.Display:
		return fmt.Sprintf("display_text %q vs %q", da.Display, db.Display)
	case da.Range != db.Range:
		return fmt.Sprintf("range %+v vs %+v", da.Range, db.Range)
	}
	return ""
}
