package extract

import (
	"regexp"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"gopkg.in/yaml.v3"

	"github.com/obsidian-lsp/vaultls/internal/schema"
)

// frontmatterRe matches `^---\n(.*?)\n---` at the very start of the file.
var frontmatterRe = regexp.MustCompile(`(?s)\A---\n(.*?)\n---`)

// Frontmatter is the decoded, merged view of a file's YAML frontmatter
// block.
type Frontmatter struct {
	Raw           map[string]interface{}
	Aliases       []string
	Substitutions map[string]string // merged: top-level, then myst.substitutions wins on conflict
	Range         lsp.Range         // covers the whole `---...---` block
	YAMLText      string            // raw text between the fences, for locating individual keys
	YAMLOffset    int               // byte offset where YAMLText begins within the file
	Present       bool
}

// ParseError describes a degraded-gracefully frontmatter or schema failure
//: a diagnostic, not a fatal condition.
type ParseError struct {
	Message string
	Range   lsp.Range
}

// ExtractFrontmatter parses the leading YAML frontmatter block, if any. A
// malformed block degrades to Present=false plus a ParseError rather than
// failing extraction outright.
func ExtractFrontmatter(text string, toPos func(offset int) lsp.Position) (Frontmatter, *ParseError) {
	loc := frontmatterRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return Frontmatter{}, nil
	}
	blockEnd := loc[1]
	yamlStart, yamlEnd := loc[2], loc[3]
	rng := lsp.Range{Start: toPos(0), End: toPos(blockEnd)}

	var raw map[string]interface{}
	if err := yaml.Unmarshal([]byte(text[yamlStart:yamlEnd]), &raw); err != nil {
		return Frontmatter{}, &ParseError{Message: "frontmatter contains invalid YAML: " + err.Error(), Range: rng}
	}
	if raw == nil {
		raw = map[string]interface{}{}
	}

	fm := Frontmatter{Raw: raw, Range: rng, YAMLText: text[yamlStart:yamlEnd], YAMLOffset: yamlStart, Present: true}
	fm.Aliases = stringSlice(raw["aliases"])

	merged := map[string]string{}
	for k, v := range stringMap(raw["substitutions"]) {
		merged[k] = v
	}
	if mystRaw, ok := raw["myst"].(map[string]interface{}); ok {
		for k, v := range stringMap(mystRaw["substitutions"]) {
			merged[k] = v // nested myst.substitutions wins on conflict
		}
	}
	fm.Substitutions = merged
	return fm, nil
}

// ValidateSchema runs the optional JSON-schema validation step and converts
// failures into extraction ParseErrors pinned to the frontmatter range.
func ValidateSchema(fm Frontmatter, compiled *schema.Schema) []ParseError {
	if compiled == nil || !fm.Present {
		return nil
	}
	errs, err := compiled.Validate(fm.Raw)
	if err != nil {
		return nil // malformed schema: degrade to no validation
	}
	out := make([]ParseError, 0, len(errs))
	for _, e := range errs {
		out = append(out, ParseError{Message: e.Message + " (" + e.InstancePath + ")", Range: fm.Range})
	}
	return out
}

func stringSlice(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func stringMap(v interface{}) map[string]string {
	raw, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(raw))
	for k, val := range raw {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}
