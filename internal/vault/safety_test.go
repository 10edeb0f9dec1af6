package vault_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-lsp/vaultls/internal/vault"
)

func TestSafeJoinVaultPathJoinsRelativePath(t *testing.T) {
	root := t.TempDir()
	got, err := vault.SafeJoinVaultPath(root, "sub/note.md")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "sub", "note.md"), got)
}

func TestSafeJoinVaultPathRejectsAbsolute(t *testing.T) {
	root := t.TempDir()
	_, err := vault.SafeJoinVaultPath(root, "/etc/passwd")
	assert.Error(t, err)
}

func TestSafeJoinVaultPathRejectsEscape(t *testing.T) {
	root := t.TempDir()
	_, err := vault.SafeJoinVaultPath(root, "../outside.md")
	assert.Error(t, err)

	_, err = vault.SafeJoinVaultPath(root, "sub/../../outside.md")
	assert.Error(t, err)
}

func TestSafeJoinVaultPathSiblingPrefixNotMistakenForRoot(t *testing.T) {
	root := t.TempDir()
	_, err := vault.SafeJoinVaultPath(root, "../"+filepath.Base(root)+"-backup/note.md")
	assert.Error(t, err)
}
