package indexer_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-lsp/vaultls/internal/indexer"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	abs := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
}

func TestLoadIndexesMarkdownOnly(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A\n")
	writeFile(t, root, "sub/b.md", "[x](a)\n")
	writeFile(t, root, "notes.txt", "not markdown\n")

	idx, err := indexer.New(root)
	require.NoError(t, err)
	require.NoError(t, idx.Load())

	e := idx.Engine()
	assert.Len(t, e.Vault.Docs, 2)
	assert.Contains(t, e.Vault.Docs, "a.md")
	assert.Contains(t, e.Vault.Docs, "sub/b.md")
}

func TestLoadSkipsHiddenAndLogseqDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "visible.md", "# V\n")
	writeFile(t, root, ".obsidian/hidden.md", "# H\n")
	writeFile(t, root, "logseq/journal.md", "# J\n")

	idx, err := indexer.New(root)
	require.NoError(t, err)
	require.NoError(t, idx.Load())

	e := idx.Engine()
	assert.Len(t, e.Vault.Docs, 1)
	assert.Contains(t, e.Vault.Docs, "visible.md")
}

func TestRefreshReplacesChangedDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# Old Title\n")

	idx, err := indexer.New(root)
	require.NoError(t, err)
	require.NoError(t, idx.Load())

	writeFile(t, root, "a.md", "# New Title\n")
	require.NoError(t, idx.Refresh([]string{"a.md"}, nil))

	e := idx.Engine()
	doc := e.Vault.Docs["a.md"]
	require.Len(t, doc.Headings, 1)
	assert.Equal(t, "New Title", doc.Headings[0].Text)
}

func TestRefreshDropsRemovedDocument(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A\n")
	writeFile(t, root, "b.md", "# B\n")

	idx, err := indexer.New(root)
	require.NoError(t, err)
	require.NoError(t, idx.Load())
	require.Len(t, idx.Engine().Vault.Docs, 2)

	require.NoError(t, os.Remove(filepath.Join(root, "b.md")))
	require.NoError(t, idx.Refresh(nil, []string{"b.md"}))

	e := idx.Engine()
	assert.Len(t, e.Vault.Docs, 1)
	assert.NotContains(t, e.Vault.Docs, "b.md")
}

func TestRefreshRejectsPathEscapingRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# A\n")

	idx, err := indexer.New(root)
	require.NoError(t, err)
	require.NoError(t, idx.Load())

	// The hostile path is logged and omitted; the snapshot is unchanged.
	require.NoError(t, idx.Refresh([]string{"../../etc/passwd"}, nil))
	assert.Len(t, idx.Engine().Vault.Docs, 1)
}

func TestLoadWithDiskCacheSurvivesSecondRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "# Cached\n")
	cachePath := filepath.Join(root, ".vaultls", "cache.db")

	idx, err := indexer.New(root)
	require.NoError(t, err)
	require.NoError(t, idx.WithDiskCache(cachePath))
	require.NoError(t, idx.Load())

	// A fresh indexer over the same cache must produce the same view.
	idx2, err := indexer.New(root)
	require.NoError(t, err)
	require.NoError(t, idx2.WithDiskCache(cachePath))
	require.NoError(t, idx2.Load())

	doc := idx2.Engine().Vault.Docs["a.md"]
	require.NotNil(t, doc)
	require.Len(t, doc.Headings, 1)
	assert.Equal(t, "Cached", doc.Headings[0].Text)
}
