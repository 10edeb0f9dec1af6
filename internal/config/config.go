// Package config loads the per-vault settings table: a small struct read
// from a file under the vault root, with defaults applied for every key
// the file omits. YAML, matching the format already used for frontmatter.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file vaultls looks for at the vault root.
const FileName = ".vaultls.yaml"

// ErrConfigRead is returned when the settings file exists but cannot be
// read (permissions, not a regular file, etc).
var ErrConfigRead = errors.New("vaultls: config file unreadable")

// ErrConfigParse is returned when the settings file exists but is not
// valid YAML.
var ErrConfigParse = errors.New("vaultls: config file is not valid YAML")

// CaseMatching controls how completion and lookup compare candidate text
// to the query (case_matching).
type CaseMatching string

const (
	CaseIgnore  CaseMatching = "ignore"
	CaseSmart   CaseMatching = "smart"
	CaseRespect CaseMatching = "respect"
)

// Config is the full settings table, every field optional in the
// YAML file and defaulted by Default().
type Config struct {
	DailyNote                string       `yaml:"dailynote"`
	HeadingCompletions       bool         `yaml:"heading_completions"`
	TitleHeadings            bool         `yaml:"title_headings"`
	UnresolvedDiagnostics    bool         `yaml:"unresolved_diagnostics"`
	TagsInCodeblocks         bool         `yaml:"tags_in_codeblocks"`
	ReferencesInCodeblocks   bool         `yaml:"references_in_codeblocks"`
	IncludeMdExtensionMdLink bool         `yaml:"include_md_extension_md_link"`
	LinkFilenamesOnly        bool         `yaml:"link_filenames_only"`
	CaseMatching             CaseMatching `yaml:"case_matching"`

	// FrontmatterSchemaPath, when set, points at a JSON schema file
	// validated against every file's frontmatter. Loaded once at
	// indexer.New time.
	FrontmatterSchemaPath string `yaml:"frontmatter_schema_path"`
}

// Default returns the settings table with every default applied.
func Default() Config {
	return Config{
		DailyNote:                "%Y-%m-%d",
		HeadingCompletions:       true,
		TitleHeadings:            true,
		UnresolvedDiagnostics:    true,
		TagsInCodeblocks:         false,
		ReferencesInCodeblocks:   false,
		IncludeMdExtensionMdLink: false,
		LinkFilenamesOnly:        false,
		CaseMatching:             CaseSmart,
	}
}

// Load reads FileName from vaultRoot, overlaying any keys it sets onto
// Default(). A missing file is not an error; it is treated the same as an
// empty one.
func Load(vaultRoot string) (Config, error) {
	cfg := Default()

	path := filepath.Join(vaultRoot, FileName)
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: %s: %v", ErrConfigRead, path, err)
	}

	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return Default(), fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}
	return cfg, nil
}
