package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obsidian-lsp/vaultls/internal/extract"
	"github.com/obsidian-lsp/vaultls/internal/rope"
)

func TestExtractIndexedBlocks(t *testing.T) {
	text := "Some paragraph text. ^block-1\n\nAnother one.\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	out := extract.ExtractIndexedBlocks("a.md", text, blocks, r.OffsetToPosition)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "block-1", out[0].ID)
	}
}

func TestExtractTagsPrefixAndRejection(t *testing.T) {
	text := "#project/alpha and #project/beta but not a #123 tag\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	tags := extract.ExtractTags("a.md", text, blocks, extract.DefaultConfig(), r.OffsetToPosition)
	names := make([]string, 0, len(tags))
	for _, tg := range tags {
		names = append(names, tg.Name)
	}
	assert.Contains(t, names, "project/alpha")
	assert.Contains(t, names, "project/beta")
	assert.NotContains(t, names, "123")
}

func TestExtractTagsSkipsCodeBlocksByDefault(t *testing.T) {
	text := "```\n#hidden\n```\n\n#visible\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	tags := extract.ExtractTags("a.md", text, blocks, extract.DefaultConfig(), r.OffsetToPosition)
	if assert.Len(t, tags, 1) {
		assert.Equal(t, "visible", tags[0].Name)
	}
}

func TestExtractTagsInCodeblocksWhenConfigured(t *testing.T) {
	text := "```\n#hidden\n```\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	cfg := extract.Config{TagsInCodeblocks: true}
	tags := extract.ExtractTags("a.md", text, blocks, cfg, r.OffsetToPosition)
	assert.Len(t, tags, 1)
}

func TestExtractFootnoteDefs(t *testing.T) {
	text := "[^note]: This is the body.\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	defs := extract.ExtractFootnoteDefs("a.md", text, blocks, r.OffsetToPosition)
	if assert.Len(t, defs, 1) {
		assert.Equal(t, "^note", defs[0].ID)
		assert.Equal(t, "This is the body.", defs[0].Body)
	}
}

func TestExtractLinkRefDefsExcludesBlockIDs(t *testing.T) {
	text := "[label]: https://example.com \"A title\"\n[^block]: not a link ref\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	defs := extract.ExtractLinkRefDefs("a.md", text, blocks, r.OffsetToPosition)
	if assert.Len(t, defs, 1) {
		assert.Equal(t, "label", defs[0].Label)
		assert.Equal(t, "https://example.com", defs[0].URL)
		assert.Equal(t, "A title", defs[0].Title)
	}
}

func TestLinkRefLabelsCaseInsensitive(t *testing.T) {
	text := "[Label]: https://example.com\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	defs := extract.ExtractLinkRefDefs("a.md", text, blocks, r.OffsetToPosition)
	labels := extract.LinkRefLabels(defs)
	assert.True(t, labels["label"])
}
