// Package extract turns raw markdown text into the typed entities and
// references the rest of the engine operates on, combining a
// goldmark-based CommonMark+GFM walk with targeted regexes for constructs
// goldmark doesn't know about (wikilinks, MyST roles, bare link
// references).
package extract

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gfmast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	lsp "github.com/sourcegraph/go-lsp"

	"github.com/obsidian-lsp/vaultls/internal/model"
)

var mdMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Footnote),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// classify normalizes a raw link destination (external-scheme discard,
// percent-decode, .md strip, foreign-extension discard), returning the
// path/fragment split, or ok=false if the reference should be discarded
// entirely.
type classified struct {
	path       string // empty for a same-file fragment-only link
	fragment   string // without leading '#'
	isBlockRef bool   // fragment begins with '^'
}

func classify(dest string) (classified, bool) {
	if strings.HasPrefix(dest, "http://") || strings.HasPrefix(dest, "https://") || strings.HasPrefix(dest, "data:") {
		return classified{}, false
	}
	if decoded, err := url.PathUnescape(dest); err == nil {
		dest = decoded
	}

	p := dest
	frag := ""
	if idx := strings.IndexByte(dest, '#'); idx >= 0 {
		p = dest[:idx]
		frag = dest[idx+1:]
	}

	if strings.HasSuffix(strings.ToLower(p), ".md") {
		p = p[:len(p)-3]
	} else if ext := path.Ext(p); ext != "" {
		return classified{}, false // non-.md extension: not a vault link
	}

	c := classified{path: p, fragment: frag}
	if strings.HasPrefix(frag, "^") {
		c.isBlockRef = true
		c.fragment = frag[1:]
	}
	return c, true
}

// ExtractASTReferences walks the CommonMark+GFM AST for link and footnote
// reference nodes (the AST strategy). blocks masks out codeblock ranges
// the same way the regex extractors do: goldmark has no notion of the
// `:::`-fenced MyST directive syntax DetectCodeBlocks recognizes, so a link
// inside such a block still parses as an ordinary CommonMark link and must
// be discarded here to honor references_in_codeblocks=false.
func ExtractASTReferences(text_ string, blocks []Range, toPos func(int) lsp.Position) []model.Reference {
	src := []byte(text_)
	doc := mdMarkdown.Parser().Parse(text.NewReader(src))

	var out []model.Reference
	_ = gast.Walk(doc, func(n gast.Node, entering bool) (gast.WalkStatus, error) {
		if !entering {
			return gast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gast.Link:
			start, end, found := nodeByteRange(node, src)
			if !found || CoveredByAny(blocks, start, end) {
				return gast.WalkContinue, nil
			}
			rng := lsp.Range{Start: toPos(start), End: toPos(end)}
			if ref, ok := linkToReference(string(node.Destination), textOf(node, src), rng); ok {
				out = append(out, ref)
			}
		case *gfmast.FootnoteLink:
			// FootnoteLink carries an Index into the footnote list, not a
			// byte offset; its range is recovered via the regex strategy
			// instead (see ExtractFootnoteUses).
			_ = node
		}
		return gast.WalkContinue, nil
	})
	return out
}

func linkToReference(dest, display string, rng lsp.Range) (model.Reference, bool) {
	c, ok := classify(dest)
	if !ok {
		return nil, false
	}
	data := model.ReferenceData{Text: refText(c), Display: display, Range: rng}
	switch {
	case c.fragment == "":
		return model.MDFileLink{D: data}, true
	case c.isBlockRef:
		return model.MDIndexedBlockLink{D: data, Block: c.fragment}, true
	default:
		return model.MDHeadingLink{D: data, Heading: c.fragment}, true
	}
}

func refText(c classified) string {
	if c.fragment == "" {
		return c.path
	}
	if c.isBlockRef {
		return c.path + "#^" + c.fragment
	}
	return c.path + "#" + c.fragment
}

// textOf returns the literal text contents of an inline node (its display
// text), concatenating child text segments.
func textOf(n gast.Node, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gast.Text); ok {
			sb.Write(t.Segment.Value(src))
		} else {
			sb.WriteString(textOf(c, src))
		}
	}
	return sb.String()
}

// nodeByteRange recovers an inline link's full `[display](dest)` byte span.
// goldmark only hands out the display text's segments, so the span is
// rebuilt around them: walk left to the opening `[`, right to the `](`,
// then across the destination (angle-bracketed or paren-balanced, title
// included) to the closing `)`. found=false means the node is not an
// inline link on a single line — a reference-style `[text][label]` or
// shortcut `[label]` link, which the link-reference extractor owns.
func nodeByteRange(n gast.Node, src []byte) (start, end int, found bool) {
	start, end = -1, -1
	var walk func(gast.Node)
	walk = func(node gast.Node) {
		if t, ok := node.(*gast.Text); ok {
			s := t.Segment.Start
			e := t.Segment.Stop
			if start == -1 || s < start {
				start = s
			}
			if e > end {
				end = e
			}
		}
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			walk(c)
		}
	}
	walk(n)
	if start == -1 {
		return 0, 0, false
	}

	// The first text segment may begin inside inline markup (`[*x*](t)`),
	// so scan left on the same line for the opening bracket.
	for start > 0 {
		c := src[start-1]
		if c == '[' {
			start--
			break
		}
		if c == '\n' || c == ']' {
			break
		}
		start--
	}
	if start >= len(src) || src[start] != '[' {
		return 0, 0, false
	}

	// Likewise scan right for the `](` that opens the destination.
	for {
		if end+1 >= len(src) || src[end] == '\n' {
			return 0, 0, false
		}
		if src[end] == ']' && src[end+1] == '(' {
			break
		}
		end++
	}

	i := end + 2
	if i < len(src) && src[i] == '<' {
		for i++; i < len(src) && src[i] != '>' && src[i] != '\n'; i++ {
		}
		if i >= len(src) || src[i] != '>' {
			return 0, 0, false
		}
		i++
	}
	depth := 1
	for ; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return start, i + 1, true
			}
		case '\n':
			return 0, 0, false
		}
	}
	return 0, 0, false
}

// --- Regex strategy: wikilinks, MyST roles, link-references, footnote uses ---

var wikiLinkRe = regexp.MustCompile(`\[\[([^\]|#]+)(?:#(\^?[^\]|]+))?(?:\|([^\]]+))?\]\]`)

// ExtractWikiLinks finds `[[path]]`, `[[path#heading]]`, `[[path#^id]]`,
// each with an optional `|display` suffix.
func ExtractWikiLinks(text string, blocks []Range, toPos func(int) lsp.Position) []model.Reference {
	var out []model.Reference
	for _, m := range wikiLinkRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if CoveredByAny(blocks, start, end) {
			continue
		}
		p := text[m[2]:m[3]]
		frag := ""
		if m[4] >= 0 {
			frag = text[m[4]:m[5]]
		}
		display := ""
		if m[6] >= 0 {
			display = text[m[6]:m[7]]
		}
		rng := lsp.Range{Start: toPos(start), End: toPos(end)}

		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			continue
		}
		if strings.HasSuffix(strings.ToLower(p), ".md") {
			p = p[:len(p)-3]
		} else if ext := path.Ext(p); ext != "" {
			continue
		}

		data := model.ReferenceData{Display: display, Range: rng}
		switch {
		case frag == "":
			data.Text = p
			out = append(out, model.WikiFileLink{D: data})
		case strings.HasPrefix(frag, "^"):
			id := frag[1:]
			data.Text = p + "#^" + id
			out = append(out, model.WikiIndexedBlockLink{D: data, Block: id})
		default:
			data.Text = p + "#" + frag
			out = append(out, model.WikiHeadingLink{D: data, Heading: frag})
		}
	}
	return out
}

var mystRoleRe = regexp.MustCompile("\\{(ref|numref|doc|download|term|eq)\\}`([^`]*)`")

// ExtractMystRoles finds inline `{kind}`target`` occurrences.
func ExtractMystRoles(text string, blocks []Range, toPos func(int) lsp.Position) []model.Reference {
	var out []model.Reference
	for _, m := range mystRoleRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if CoveredByAny(blocks, start, end) {
			continue
		}
		kind := model.MystRoleKind(text[m[2]:m[3]])
		raw := text[m[4]:m[5]]

		target := raw
		display := ""
		if idx := strings.Index(raw, "<"); idx >= 0 && strings.HasSuffix(raw, ">") {
			display = strings.TrimSpace(raw[:idx])
			target = raw[idx+1 : len(raw)-1]
		}
		data := model.ReferenceData{
			Text:    target,
			Display: display,
			Range:   lsp.Range{Start: toPos(start), End: toPos(end)},
		}
		out = append(out, model.MystRole{D: data, Kind: kind, Target: target})
	}
	return out
}

var footnoteUseRe = regexp.MustCompile(`\[\^([^\]]+)\]`)

// ExtractFootnoteUses finds inline `[^id]` occurrences that are not
// themselves definitions: a definition is recognized by the `:`
// immediately following the closing bracket, and a preceding `[` marks a
// false match inside other bracket syntax (a `[[^note]]` wikilink whose
// path starts with `^`).
func ExtractFootnoteUses(text string, blocks []Range, toPos func(int) lsp.Position) []model.Reference {
	var out []model.Reference
	for _, m := range footnoteUseRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if CoveredByAny(blocks, start, end) {
			continue
		}
		if start > 0 && text[start-1] == '[' {
			continue // nested in other bracket syntax, not a use
		}
		if end < len(text) && text[end] == ':' {
			continue // definition, not a use
		}
		id := text[m[2]:m[3]]
		data := model.ReferenceData{
			Text:  "^" + id,
			Range: lsp.Range{Start: toPos(start), End: toPos(end)},
		}
		out = append(out, model.FootnoteUse{D: data, ID: "^" + id})
	}
	return out
}

var linkRefUseRe = regexp.MustCompile(`\[([^\]^][^\]]*)\](?:\[\])?`)

// ExtractLinkRefUses finds bare `[label]` occurrences, emitting a
// LinkRefUse only when labels (from ExtractLinkRefDefs) contains a
// case-insensitive match. Occurrences immediately followed
// by `(` or `:` are skipped (those are MD links / definitions, handled
// elsewhere).
func ExtractLinkRefUses(text string, blocks []Range, labels map[string]bool, toPos func(int) lsp.Position) []model.Reference {
	if len(labels) == 0 {
		return nil
	}
	var out []model.Reference
	for _, m := range linkRefUseRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if CoveredByAny(blocks, start, end) {
			continue
		}
		if end < len(text) && (text[end] == '(' || text[end] == ':') {
			continue
		}
		label := text[m[2]:m[3]]
		if !labels[strings.ToLower(label)] {
			continue
		}
		data := model.ReferenceData{
			Text:  label,
			Range: lsp.Range{Start: toPos(start), End: toPos(end)},
		}
		out = append(out, model.LinkRefUse{D: data, Label: label})
	}
	return out
}

// ExtractAllReferences runs both strategies and concatenates their output;
// callers needing deduplicated results for a single file should prefer the
// AST strategy for plain CommonMark links, since the regex strategy only
// targets constructs the AST strategy structurally cannot see (wikilinks,
// MyST roles, link-references, standalone footnote uses).
func ExtractAllReferences(text string, blocks []Range, linkRefLabels map[string]bool, toPos func(int) lsp.Position) []model.Reference {
	var out []model.Reference
	out = append(out, ExtractASTReferences(text, blocks, toPos)...)
	out = append(out, ExtractWikiLinks(text, blocks, toPos)...)
	out = append(out, ExtractMystRoles(text, blocks, toPos)...)
	out = append(out, ExtractFootnoteUses(text, blocks, toPos)...)
	out = append(out, ExtractLinkRefUses(text, blocks, linkRefLabels, toPos)...)
	return out
}
