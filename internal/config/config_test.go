package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obsidian-lsp/vaultls/internal/config"
)

func TestDefaultValues(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "%Y-%m-%d", cfg.DailyNote)
	assert.True(t, cfg.HeadingCompletions)
	assert.True(t, cfg.TitleHeadings)
	assert.True(t, cfg.UnresolvedDiagnostics)
	assert.False(t, cfg.TagsInCodeblocks)
	assert.False(t, cfg.ReferencesInCodeblocks)
	assert.Equal(t, config.CaseSmart, cfg.CaseMatching)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadOverlaysOnlySetKeys(t *testing.T) {
	dir := t.TempDir()
	content := "heading_completions: false\ncase_matching: ignore\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.False(t, cfg.HeadingCompletions)
	assert.Equal(t, config.CaseIgnore, cfg.CaseMatching)
	// Untouched keys keep their defaults.
	assert.True(t, cfg.TitleHeadings)
	assert.True(t, cfg.UnresolvedDiagnostics)
}

func TestLoadMalformedYAMLReturnsParseError(t *testing.T) {
	dir := t.TempDir()
	content := "heading_completions: [unterminated\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644))

	_, err := config.Load(dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigParse)
}
