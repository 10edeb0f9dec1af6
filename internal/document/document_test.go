package document_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-lsp/vaultls/internal/document"
	"github.com/obsidian-lsp/vaultls/internal/extract"
	"github.com/obsidian-lsp/vaultls/internal/model"
)

const fixture = `---
aliases: [n]
substitutions:
  project: Vault
---
# Title

See [[other]] and #topic here. ^anchor1

(myst-target)=

[^fn]: footnote body
`

func TestBuildBundlesEveryEntityKind(t *testing.T) {
	doc := document.Build("note.md", fixture, time.Time{}, extract.DefaultConfig(), nil)

	assert.Equal(t, "note.md", doc.Path)
	assert.Len(t, doc.Headings, 1)
	assert.Len(t, doc.Tags, 1)
	assert.Len(t, doc.Blocks, 1)
	assert.Len(t, doc.Footnotes, 1)
	assert.Len(t, doc.MystAnchors, 1)
	assert.Len(t, doc.SubstDefs, 1)
	assert.Len(t, doc.References, 1)
	assert.True(t, doc.Frontmatter.Present)
	assert.Equal(t, []string{"n"}, doc.Frontmatter.Aliases)
}

func TestReferenceablesIncludeSyntheticFile(t *testing.T) {
	doc := document.Build("dir/note.md", "# H\n", time.Time{}, extract.DefaultConfig(), nil)

	refs := doc.Referenceables()
	require.NotEmpty(t, refs)
	f, ok := refs[0].(model.File)
	require.True(t, ok)
	assert.Equal(t, "dir/note.md", f.Path)
	assert.Equal(t, "dir/note", f.Refname().Full)
}

func TestBuildRecordsFrontmatterParseError(t *testing.T) {
	text := "---\n: not yaml [\n---\nbody\n"
	doc := document.Build("bad.md", text, time.Time{}, extract.DefaultConfig(), nil)

	assert.False(t, doc.Frontmatter.Present)
	require.Len(t, doc.ParseErrors, 1)
	assert.Contains(t, doc.ParseErrors[0].Message, "YAML")
}

func TestBuildRecordsCodeblockRanges(t *testing.T) {
	text := "before\n```\ncode\n```\nafter\n"
	doc := document.Build("cb.md", text, time.Time{}, extract.DefaultConfig(), nil)
	assert.Len(t, doc.CodeBlocks, 1)
}

func TestBuildHonorsReferencesInCodeblocks(t *testing.T) {
	text := "```\n[[hidden]]\n```\n"
	cfg := extract.DefaultConfig()

	doc := document.Build("a.md", text, time.Time{}, cfg, nil)
	assert.Empty(t, doc.References)

	cfg.ReferencesInCodeblocks = true
	doc = document.Build("a.md", text, time.Time{}, cfg, nil)
	assert.Len(t, doc.References, 1)
}
