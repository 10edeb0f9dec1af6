package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obsidian-lsp/vaultls/internal/extract"
	"github.com/obsidian-lsp/vaultls/internal/model"
	"github.com/obsidian-lsp/vaultls/internal/rope"
)

func extractAll(t *testing.T, text string) []model.Reference {
	t.Helper()
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	defs := extract.ExtractLinkRefDefs("note.md", text, blocks, r.OffsetToPosition)
	labels := extract.LinkRefLabels(defs)
	return extract.ExtractAllReferences(text, blocks, labels, r.OffsetToPosition)
}

func TestExtractWikiFileLink(t *testing.T) {
	refs := extract.ExtractWikiLinks("See [[target]] for more.", nil, rope.New("See [[target]] for more.").OffsetToPosition)
	if assert.Len(t, refs, 1) {
		link, ok := refs[0].(model.WikiFileLink)
		assert.True(t, ok)
		assert.Equal(t, "target", link.D.Text)
	}
}

func TestExtractWikiHeadingLinkWithDisplay(t *testing.T) {
	text := "[[target#Some Heading|shown text]]"
	refs := extract.ExtractWikiLinks(text, nil, rope.New(text).OffsetToPosition)
	if assert.Len(t, refs, 1) {
		link, ok := refs[0].(model.WikiHeadingLink)
		assert.True(t, ok)
		assert.Equal(t, "Some Heading", link.Heading)
		assert.Equal(t, "shown text", link.D.Display)
	}
}

func TestExtractWikiIndexedBlockLink(t *testing.T) {
	text := "[[target#^abc123]]"
	refs := extract.ExtractWikiLinks(text, nil, rope.New(text).OffsetToPosition)
	if assert.Len(t, refs, 1) {
		link, ok := refs[0].(model.WikiIndexedBlockLink)
		assert.True(t, ok)
		assert.Equal(t, "abc123", link.Block)
	}
}

func TestExtractMDFileLinkStripsMdExtension(t *testing.T) {
	refs := extractAll(t, "[text](target.md)")
	if assert.Len(t, refs, 1) {
		link, ok := refs[0].(model.MDFileLink)
		assert.True(t, ok)
		assert.Equal(t, "target", link.D.Text)
	}
}

func TestExternalURLsAreDiscarded(t *testing.T) {
	refs := extractAll(t, "[text](https://example.com/page) and [x](data:image/png;base64,abc)")
	assert.Empty(t, refs)
}

func TestNonMdExtensionDiscarded(t *testing.T) {
	refs := extractAll(t, "[img](diagram.png)")
	assert.Empty(t, refs)
}

func TestMystRoleRef(t *testing.T) {
	text := "See {ref}`my-section` for details."
	refs := extract.ExtractMystRoles(text, nil, rope.New(text).OffsetToPosition)
	if assert.Len(t, refs, 1) {
		role, ok := refs[0].(model.MystRole)
		assert.True(t, ok)
		assert.Equal(t, model.RoleRef, role.Kind)
		assert.Equal(t, "my-section", role.Target)
	}
}

func TestMystRoleNumrefDistinctFromRef(t *testing.T) {
	text := "{numref}`fig-1`"
	refs := extract.ExtractMystRoles(text, nil, rope.New(text).OffsetToPosition)
	if assert.Len(t, refs, 1) {
		role := refs[0].(model.MystRole)
		assert.Equal(t, model.RoleNumref, role.Kind)
	}
}

func TestFootnoteUseNotConfusedWithDefinition(t *testing.T) {
	text := "See[^1] for more.\n\n[^1]: The footnote body.\n"
	refs := extractAll(t, text)
	var uses int
	for _, r := range refs {
		if _, ok := r.(model.FootnoteUse); ok {
			uses++
		}
	}
	assert.Equal(t, 1, uses)
}

func TestFootnoteUseNotEmittedInsideWikiLink(t *testing.T) {
	// A wikilink whose path starts with `^` contains a `[^note]` substring
	// the footnote regex also matches; the preceding `[` marks it as nested
	// bracket syntax, not a footnote use.
	text := "See [[^note]] and[^note].\n\n[^note]: The body.\n"
	refs := extractAll(t, text)
	var uses int
	for _, r := range refs {
		if _, ok := r.(model.FootnoteUse); ok {
			uses++
		}
	}
	assert.Equal(t, 1, uses)
}

func TestLinkRefUseRequiresMatchingDefinition(t *testing.T) {
	withDef := "See [label] here.\n\n[label]: https://example.com\n"
	refs := extractAll(t, withDef)
	var found bool
	for _, r := range refs {
		if u, ok := r.(model.LinkRefUse); ok && u.Label == "label" {
			found = true
		}
	}
	assert.True(t, found)

	withoutDef := "See [label] here.\n"
	refs2 := extractAll(t, withoutDef)
	for _, r := range refs2 {
		_, ok := r.(model.LinkRefUse)
		assert.False(t, ok)
	}
}

func TestReferencesInCodeblocksDefaultOff(t *testing.T) {
	text := "```\n[[hidden]]\n```\n\n[[visible]]\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	refs := extract.ExtractWikiLinks(text, blocks, r.OffsetToPosition)
	if assert.Len(t, refs, 1) {
		link := refs[0].(model.WikiFileLink)
		assert.Equal(t, "visible", link.D.Text)
	}
}

// goldmark has no notion of MyST's `:::` fence, so a plain CommonMark link
// inside one still parses as ordinary prose; ExtractASTReferences must mask
// it against the same codeblock ranges the regex extractors use.
func TestASTReferenceInMystFencedBlockMaskedByDefault(t *testing.T) {
	text := ":::\n[hidden](target)\n:::\n\n[visible](target)\n"
	refs := extractAll(t, text)
	if assert.Len(t, refs, 1) {
		link := refs[0].(model.MDFileLink)
		assert.Equal(t, "target", link.D.Text)
		assert.Equal(t, 4, link.D.Range.Start.Line)
	}
}
