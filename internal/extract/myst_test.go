package extract_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/obsidian-lsp/vaultls/internal/extract"
	"github.com/obsidian-lsp/vaultls/internal/rope"
)

func TestExtractMystAnchor(t *testing.T) {
	text := "(my-section)=\n## My Section\n"
	r := rope.New(text)
	blocks := extract.DetectCodeBlocks(text)
	anchors := extract.ExtractMystAnchors("a.md", text, blocks, r.OffsetToPosition)
	if assert.Len(t, anchors, 1) {
		assert.Equal(t, "my-section", anchors[0].Name)
	}
}

func TestExtractDirectiveLabelFromNameOption(t *testing.T) {
	text := "```{figure} diagram.png\n:name: fig-overview\n:alt: an overview diagram\n\nCaption text.\n```\n"
	r := rope.New(text)
	labels := extract.ExtractDirectiveLabels("a.md", text, r.OffsetToPosition)
	if assert.Len(t, labels, 1) {
		assert.Equal(t, "figure", labels[0].Directive)
		assert.Equal(t, "fig-overview", labels[0].Value)
	}
}

func TestExtractMathLabel(t *testing.T) {
	text := "```{math}\n:label: eq-energy\nE = mc^2\n```\n"
	r := rope.New(text)
	labels := extract.ExtractMathLabels("a.md", text, r.OffsetToPosition)
	if assert.Len(t, labels, 1) {
		assert.Equal(t, "eq-energy", labels[0].Label)
	}
}

func TestExtractGlossaryTerms(t *testing.T) {
	text := "```{glossary}\nAPI\n    Application Programming Interface.\n\nLSP\n    Language Server Protocol.\n```\n"
	r := rope.New(text)
	terms := extract.ExtractGlossaryTerms("a.md", text, r.OffsetToPosition)
	names := make([]string, 0, len(terms))
	for _, term := range terms {
		names = append(names, term.Term)
	}
	assert.Contains(t, names, "API")
	assert.Contains(t, names, "LSP")
}

func TestToctreeEntries(t *testing.T) {
	text := "```{toctree}\n:maxdepth: 2\n:caption: Guides\n\nchapter1\nchapter2\n```\n"
	entries := extract.ToctreeEntries(text)
	assert.Equal(t, []extract.ToctreeRef{
		{Target: "chapter1", Caption: "Guides"},
		{Target: "chapter2", Caption: "Guides"},
	}, entries)
}

func TestIncludeEntries(t *testing.T) {
	text := "```{include} shared/header.md\n```\n"
	entries := extract.IncludeEntries(text)
	assert.Equal(t, []string{"shared/header.md"}, entries)
}

func TestFrontmatterSubstitutionMerge(t *testing.T) {
	text := "---\nsubstitutions:\n  product: Widget\nmyst:\n  substitutions:\n    product: SuperWidget\n---\n\nBody.\n"
	r := rope.New(text)
	fm, perr := extract.ExtractFrontmatter(text, r.OffsetToPosition)
	assert.Nil(t, perr)
	assert.Equal(t, "SuperWidget", fm.Substitutions["product"])
}

func TestFrontmatterAliases(t *testing.T) {
	text := "---\naliases:\n  - Alt Name\n  - Another Alt\n---\n\nBody.\n"
	r := rope.New(text)
	fm, perr := extract.ExtractFrontmatter(text, r.OffsetToPosition)
	assert.Nil(t, perr)
	assert.Equal(t, []string{"Alt Name", "Another Alt"}, fm.Aliases)
}

func TestFrontmatterMalformedYAMLDegradesGracefully(t *testing.T) {
	text := "---\naliases: [unterminated\n---\n\nBody.\n"
	r := rope.New(text)
	fm, perr := extract.ExtractFrontmatter(text, r.OffsetToPosition)
	assert.NotNil(t, perr)
	assert.False(t, fm.Present)
}
