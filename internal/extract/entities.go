package extract

import (
	"regexp"
	"strings"
	"unicode"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/obsidian-lsp/vaultls/internal/model"
)

var indexedBlockRe = regexp.MustCompile(`(?m)(?:^|[ \t])\^([A-Za-z0-9][A-Za-z0-9_-]*)[ \t]*$`)

// ExtractIndexedBlocks finds end-of-line `^id` tokens.
func ExtractIndexedBlocks(path, text string, blocks []Range, toPos func(int) lsp.Position) []model.IndexedBlock {
	var out []model.IndexedBlock
	for _, m := range indexedBlockRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if CoveredByAny(blocks, start, end) {
			continue
		}
		out = append(out, model.IndexedBlock{
			Path:  path,
			ID:    text[m[2]:m[3]],
			Rng:   lsp.Range{Start: toPos(start), End: toPos(end)},
			IDRng: lsp.Range{Start: toPos(m[2]), End: toPos(m[3])},
		})
	}
	return out
}

var tagRe = regexp.MustCompile(`(?m)(^|\s)#([\p{L}_/\x60'"-][\p{L}\p{N}_/\x60'"-]*)`)

// ExtractTags finds `#name`/`#a/b` hashtags. When cfg disallows
// tags in codeblocks (the default), tags whose range is covered by a
// codeblock are dropped.
func ExtractTags(path, text string, blocks []Range, cfg Config, toPos func(int) lsp.Position) []model.Tag {
	var out []model.Tag
	for _, m := range tagRe.FindAllStringSubmatchIndex(text, -1) {
		nameStart, nameEnd := m[4], m[5]
		name := text[nameStart:nameEnd]
		if !containsAlpha(name) {
			continue
		}
		// The reported range covers only the '#name' portion, not the
		// leading boundary capture group.
		start := nameStart - 1 // the '#' itself
		end := nameEnd
		if !cfg.TagsInCodeblocks && CoveredByAny(blocks, start, end) {
			continue
		}
		out = append(out, model.Tag{
			Path: path,
			Name: name,
			Rng:  lsp.Range{Start: toPos(start), End: toPos(end)},
		})
	}
	return out
}

func containsAlpha(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

var footnoteDefRe = regexp.MustCompile(`(?m)^\[\^([^\]]+)\]:[ \t]?(.*)$`)

// ExtractFootnoteDefs finds `[^id]: text` definitions.
func ExtractFootnoteDefs(path, text string, blocks []Range, toPos func(int) lsp.Position) []model.Footnote {
	var out []model.Footnote
	for _, m := range footnoteDefRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if CoveredByAny(blocks, start, end) {
			continue
		}
		id := text[m[2]:m[3]]
		body := strings.TrimSpace(text[m[4]:m[5]])
		out = append(out, model.Footnote{
			Path:  path,
			ID:    "^" + id,
			Body:  body,
			Rng:   lsp.Range{Start: toPos(start), End: toPos(end)},
			IDRng: lsp.Range{Start: toPos(m[2]), End: toPos(m[3])},
		})
	}
	return out
}

var linkRefDefRe = regexp.MustCompile(`(?m)^\[([^\]]+)\]:[ \t]+(\S+)(?:[ \t]+"([^"]*)")?[ \t]*$`)

// ExtractLinkRefDefs finds `[label]: url "title"` definitions whose label
// does not start with `^`.
func ExtractLinkRefDefs(path, text string, blocks []Range, toPos func(int) lsp.Position) []model.LinkRefDef {
	var out []model.LinkRefDef
	for _, m := range linkRefDefRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		label := text[m[2]:m[3]]
		if strings.HasPrefix(label, "^") {
			continue
		}
		if CoveredByAny(blocks, start, end) {
			continue
		}
		url := text[m[4]:m[5]]
		title := ""
		if m[6] >= 0 {
			title = text[m[6]:m[7]]
		}
		out = append(out, model.LinkRefDef{
			Path:     path,
			Label:    label,
			URL:      url,
			Title:    title,
			Rng:      lsp.Range{Start: toPos(start), End: toPos(end)},
			LabelRng: lsp.Range{Start: toPos(m[2]), End: toPos(m[3])},
		})
	}
	return out
}

// LinkRefLabels returns the set of labels defined in the file, used by the
// reference extractor to decide whether a bare `[label]` is a LinkRef use
// or ordinary prose.
func LinkRefLabels(defs []model.LinkRefDef) map[string]bool {
	labels := make(map[string]bool, len(defs))
	for _, d := range defs {
		labels[strings.ToLower(d.Label)] = true
	}
	return labels
}
