package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obsidian-lsp/vaultls/internal/extract"
	"github.com/obsidian-lsp/vaultls/internal/rope"
)

func TestExtractHeadings(t *testing.T) {
	text := "# Title\n\nSome text.\n\n## Sub heading ##\n\n```\n# not a heading\n```\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)

	headings := extract.ExtractHeadings("note.md", text, blocks, r.OffsetToPosition)

	assert.Len(t, headings, 2)
	assert.Equal(t, "Title", headings[0].Text)
	assert.Equal(t, 1, headings[0].Level)
	assert.Equal(t, "Sub heading", headings[1].Text)
	assert.Equal(t, 2, headings[1].Level)
}

func TestExtractHeadingsSkipsCodeBlockContent(t *testing.T) {
	text := "```\n# inside fence\n```\n\n# real heading\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)

	headings := extract.ExtractHeadings("note.md", text, blocks, r.OffsetToPosition)

	assert.Len(t, headings, 1)
	assert.Equal(t, "real heading", headings[0].Text)
}
