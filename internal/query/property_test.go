package query_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-lsp/vaultls/internal/document"
	"github.com/obsidian-lsp/vaultls/internal/extract"
	"github.com/obsidian-lsp/vaultls/internal/graph"
	"github.com/obsidian-lsp/vaultls/internal/model"
	"github.com/obsidian-lsp/vaultls/internal/query"
)

// applyWorkspaceEdit applies a planned rename to an in-memory file set and
// returns the resulting texts, so property tests can re-extract and query
// the renamed vault.
func applyWorkspaceEdit(files map[string]string, w *query.WorkspaceEdit) map[string]string {
	out := make(map[string]string, len(files))
	for path, text := range files {
		if edits, ok := w.Changes[path]; ok {
			text = applyEdits(text, edits)
		}
		out[path] = text
	}
	if w.RenameFrom != "" {
		text := out[w.RenameFrom]
		delete(out, w.RenameFrom)
		out[w.RenameTo] = text
	}
	return out
}

func headingIn(v *graph.Vault, path, text string) (model.Heading, bool) {
	doc, ok := v.Docs[path]
	if !ok {
		return model.Heading{}, false
	}
	for _, h := range doc.Headings {
		if h.Text == text {
			return h, true
		}
	}
	return model.Heading{}, false
}

// Re-extracting the text produced by a rename yields a document where the
// renamed referenceable carries the new name and its backref count is
// unchanged.
func TestRenameRoundTripPreservesBackrefCount(t *testing.T) {
	files := map[string]string{
		"source.md": "[x](target#Details)\n\nAlso [[target#Details|shown]].\n",
		"target.md": "## details\n\nBody.\n",
	}
	v := buildVault(t, files)
	e := query.New(v)

	h, ok := headingIn(v, "target.md", "details")
	require.True(t, ok)
	before := len(e.Backrefs(h))
	require.Equal(t, 2, before)

	edit, ok := e.Rename(h, "Summary")
	require.True(t, ok)

	renamed := applyWorkspaceEdit(files, edit)
	v2 := buildVault(t, renamed)
	e2 := query.New(v2)

	h2, ok := headingIn(v2, "target.md", "Summary")
	require.True(t, ok, "renamed heading must survive re-extraction")
	assert.Equal(t, before, len(e2.Backrefs(h2)))

	_, stillOld := headingIn(v2, "target.md", "details")
	assert.False(t, stillOld)
}

// Applying the same rename a second time (after regenerating the plan
// against the renamed vault) is a no-op.
func TestRenameIdempotentAfterRegeneration(t *testing.T) {
	files := map[string]string{
		"source.md": "[x](target#Details)\n",
		"target.md": "## Details\n",
	}
	v := buildVault(t, files)
	e := query.New(v)

	h, ok := headingIn(v, "target.md", "Details")
	require.True(t, ok)
	edit, ok := e.Rename(h, "Summary")
	require.True(t, ok)
	once := applyWorkspaceEdit(files, edit)

	v2 := buildVault(t, once)
	e2 := query.New(v2)
	h2, ok := headingIn(v2, "target.md", "Summary")
	require.True(t, ok)
	edit2, ok := e2.Rename(h2, "Summary")
	require.True(t, ok)
	twice := applyWorkspaceEdit(once, edit2)

	assert.Equal(t, once, twice)
}

// A reference resolves to at most one file target, unless multiple files
// share a basename and the reference uses the short form; then every
// basename match is returned.
func TestShortFormFileLinkMatchesEveryBasename(t *testing.T) {
	v := buildVault(t, map[string]string{
		"a/note.md": "# A\n",
		"b/note.md": "# B\n",
		"source.md": "[short](note)\n\n[full](a/note)\n",
	})
	e := query.New(v)

	doc := v.Docs["source.md"]
	require.Len(t, doc.References, 2)

	short := e.TargetsOf(doc.References[0], "source.md")
	assert.Len(t, short, 2)

	full := e.TargetsOf(doc.References[1], "source.md")
	require.Len(t, full, 1)
	assert.Equal(t, "a/note.md", full[0].(model.File).Path)
}

// Every backref of t actually resolves to t.
func TestBackrefsAreSoundAgainstResolution(t *testing.T) {
	v := buildVault(t, map[string]string{
		"target.md": "## Section\n\nText ^block9\n",
		"one.md":    "[a](target)\n[b](target#Section)\n",
		"two.md":    "[[target#^block9]]\n[c](elsewhere)\n",
	})
	e := query.New(v)

	for _, target := range e.AllReferenceables("target.md") {
		for _, back := range e.Backrefs(target) {
			targets := e.TargetsOf(back.Ref, back.Path)
			found := false
			for _, got := range targets {
				if got.OwnerPath() == target.OwnerPath() && got.Refname() == target.Refname() {
					found = true
				}
			}
			assert.True(t, found, "backref of %v must resolve back to it", target.Refname().Full)
		}
	}
}

// With tags_in_codeblocks=false no tag inside a code block reaches
// Referenceables().
func TestCodeBlockHidingAtDocumentLevel(t *testing.T) {
	text := "#visible\n\n```\n#hidden\n```\n"
	doc := document.Build("a.md", text, time.Time{}, extract.DefaultConfig(), nil)

	var names []string
	for _, r := range doc.Referenceables() {
		if tag, ok := r.(model.Tag); ok {
			names = append(names, tag.Name)
		}
	}
	assert.Equal(t, []string{"visible"}, names)
}
