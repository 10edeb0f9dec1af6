package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-lsp/vaultls/internal/model"
	"github.com/obsidian-lsp/vaultls/internal/query"
)

func TestSymbolsSortedByLineAcrossKinds(t *testing.T) {
	text := "# Title\n\n(anchor-one)=\n\n```{figure} img.png\n:name: fig-a\n```\n\n## Later\n"
	v := buildVault(t, map[string]string{"a.md": text})
	e := query.New(v)

	syms := e.Symbols("a.md")
	require.Len(t, syms, 4)
	assert.Equal(t, []string{"Title", "anchor-one", "fig-a", "Later"}, []string{
		syms[0].Name, syms[1].Name, syms[2].Name, syms[3].Name,
	})
	assert.Equal(t, "H1", syms[0].Detail)
	assert.Equal(t, "anchor", syms[1].Kind)
	assert.Equal(t, "figure", syms[2].Detail)
	assert.Equal(t, "H2", syms[3].Detail)
}

func TestSymbolsIncludeGlossaryTerms(t *testing.T) {
	text := "```{glossary}\nVault\n  The indexed directory tree.\n```\n"
	v := buildVault(t, map[string]string{"g.md": text})
	e := query.New(v)

	syms := e.Symbols("g.md")
	require.Len(t, syms, 1)
	assert.Equal(t, "Vault", syms[0].Name)
	assert.Equal(t, "term", syms[0].Kind)
}

func TestSymbolsUnknownPathEmpty(t *testing.T) {
	v := buildVault(t, map[string]string{"a.md": "# A\n"})
	e := query.New(v)
	assert.Empty(t, e.Symbols("nope.md"))
}

func TestWorkspaceSymbolsRanksMatches(t *testing.T) {
	v := buildVault(t, map[string]string{
		"alpha.md":     "# Alpha Notes\n",
		"beta.md":      "# Beta Notes\n",
		"unrelated.md": "# Something Else\n",
	})
	e := query.New(v)

	results := e.WorkspaceSymbols("alpha")
	require.NotEmpty(t, results)
	assert.Contains(t, model.DisplayName(results[0]), "lpha")

	var sawAlpha bool
	for _, r := range results {
		if f, ok := r.(model.File); ok {
			sawAlpha = sawAlpha || f.Path == "alpha.md"
			assert.NotEqual(t, "beta.md", f.Path, "non-matching file must be filtered out")
		}
	}
	assert.True(t, sawAlpha)
}

func TestWorkspaceSymbolsEmptyQueryEmptyResult(t *testing.T) {
	v := buildVault(t, map[string]string{"a.md": "# A\n"})
	e := query.New(v)
	assert.Empty(t, e.WorkspaceSymbols(""))
}
