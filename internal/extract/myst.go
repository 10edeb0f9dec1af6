package extract

import (
	"regexp"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/obsidian-lsp/vaultls/internal/model"
)

// anchorRe matches a standalone MyST target line: `(name)=` alone on its
// own line, optionally indented.
var anchorRe = regexp.MustCompile(`(?m)^[ \t]*\(([^)\s]+)\)=[ \t]*$`)

// ExtractMystAnchors finds `(name)=` target declarations.
func ExtractMystAnchors(path, text string, blocks []Range, toPos func(int) lsp.Position) []model.MystAnchor {
	var out []model.MystAnchor
	for _, m := range anchorRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]
		if CoveredByAny(blocks, start, end) {
			continue
		}
		out = append(out, model.MystAnchor{
			Path: path,
			Name: text[m[2]:m[3]],
			Rng:  lsp.Range{Start: toPos(start), End: toPos(end)},
		})
	}
	return out
}

// directiveOpenRe matches a fenced directive's opening line: ```{name}``` or
// :::{name}, capturing the fence char/length and the directive name plus
// any inline argument.
var directiveOpenRe = regexp.MustCompile("^( {0,3})(`{3,}|:{3,})\\{([A-Za-z][A-Za-z0-9_-]*)\\}[ \t]*(.*)$")
var directiveOptionRe = regexp.MustCompile(`^[ \t]*:([A-Za-z][A-Za-z0-9_-]*):[ \t]*(.*)$`)

// mystDirective is one parsed fenced directive block, line-range inclusive.
type mystDirective struct {
	Name    string
	Arg     string
	Options map[string]string
	// OptionRanges gives each option's trimmed value a byte range, for
	// callers (e.g. rename) that need to edit just the value rather than
	// the whole directive header.
	OptionRanges map[string]Range
	BodyStart    int // line index of first body line
	BodyEnd      int // line index one past the last body line
	StartLine    int
	EndLine      int // line index of the closing fence (exclusive of body)
}

// parseDirectives walks the file top to bottom (ignoring ranges already
// classified as plain code blocks by DetectCodeBlocks would be wrong here,
// since directives ARE the `:::`-fenced construct codeblocks also detect;
// instead this scans raw lines and separately decides fence/directive vs
// plain code fence by checking for the `{name}` info string).
func parseDirectives(text string) []mystDirective {
	lines, offsets := splitLinesWithOffsets(text)
	var out []mystDirective
	i := 0
	for i < len(lines) {
		m := directiveOpenRe.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		fenceChar := m[2][0]
		fenceLen := len(m[2])
		name := m[3]
		arg := strings.TrimSpace(m[4])

		options := map[string]string{}
		optionRanges := map[string]Range{}
		bodyStart := i + 1
		j := bodyStart
		for j < len(lines) {
			om := directiveOptionRe.FindStringSubmatchIndex(lines[j])
			if om == nil {
				break
			}
			key := strings.ToLower(lines[j][om[2]:om[3]])
			// directiveOptionRe's `[ \t]*` already consumes leading
			// whitespace before the value capture starts at om[4]; only
			// trailing whitespace needs trimming.
			value := strings.TrimRight(lines[j][om[4]:om[5]], " \t")
			options[key] = value
			optionRanges[key] = Range{Start: offsets[j] + om[4], End: offsets[j] + om[4] + len(value)}
			j++
		}
		bodyStart = j

		end := len(lines)
		for k := j; k < len(lines); k++ {
			cm := fenceOpenRe.FindStringSubmatch(lines[k])
			if cm != nil && cm[2][0] == fenceChar && len(cm[2]) >= fenceLen && strings.TrimSpace(cm[3]) == "" {
				end = k
				break
			}
		}
		out = append(out, mystDirective{
			Name:         strings.ToLower(name),
			Arg:          arg,
			Options:      options,
			OptionRanges: optionRanges,
			BodyStart:    bodyStart,
			BodyEnd:      end,
			StartLine:    i,
			EndLine:      end,
		})
		if end < len(lines) {
			i = end + 1
		} else {
			i = end
		}
	}
	return out
}

// offsetOfLine returns the byte offset of the start of lines[idx] (or the
// end of the minus text when idx == len(lines)).
func offsetOfLine(offsets []int, textLen, idx int) int {
	if idx < len(offsets) {
		return offsets[idx]
	}
	return textLen
}

// ExtractDirectiveLabels collects `:name:`/`:label:` options on any MyST
// directive as DirectiveLabel referenceables.
func ExtractDirectiveLabels(path, text string, toPos func(int) lsp.Position) []model.DirectiveLabel {
	_, offsets := splitLinesWithOffsets(text)
	var out []model.DirectiveLabel
	for _, d := range parseDirectives(text) {
		key := "name"
		value, ok := d.Options[key]
		if !ok {
			key = "label"
			value, ok = d.Options[key]
		}
		if !ok || value == "" {
			continue
		}
		start := offsetOfLine(offsets, len(text), d.StartLine)
		end := offsetOfLine(offsets, len(text), d.BodyStart)
		valueRng := lsp.Range{Start: toPos(start), End: toPos(end)}
		if r, ok := d.OptionRanges[key]; ok {
			valueRng = lsp.Range{Start: toPos(r.Start), End: toPos(r.End)}
		}
		out = append(out, model.DirectiveLabel{
			Path:      path,
			Directive: d.Name,
			Value:     value,
			Rng:       lsp.Range{Start: toPos(start), End: toPos(end)},
			ValueRng:  valueRng,
		})
	}
	return out
}

// ExtractMathLabels collects the `:label:` of `math` directives specifically
// as MathLabel referenceables, the namespace `{eq}` roles resolve against.
func ExtractMathLabels(path, text string, toPos func(int) lsp.Position) []model.MathLabel {
	_, offsets := splitLinesWithOffsets(text)
	var out []model.MathLabel
	for _, d := range parseDirectives(text) {
		if d.Name != "math" {
			continue
		}
		label, ok := d.Options["label"]
		if !ok || label == "" {
			continue
		}
		start := offsetOfLine(offsets, len(text), d.StartLine)
		end := offsetOfLine(offsets, len(text), d.BodyStart)
		valueRng := lsp.Range{Start: toPos(start), End: toPos(end)}
		if r, ok := d.OptionRanges["label"]; ok {
			valueRng = lsp.Range{Start: toPos(r.Start), End: toPos(r.End)}
		}
		out = append(out, model.MathLabel{
			Path:     path,
			Label:    label,
			Rng:      lsp.Range{Start: toPos(start), End: toPos(end)},
			ValueRng: valueRng,
		})
	}
	return out
}

// ExtractGlossaryTerms walks every {glossary} directive's body and takes
// the first line of each term block as a GlossaryTerm.
func ExtractGlossaryTerms(path, text string, toPos func(int) lsp.Position) []model.GlossaryTerm {
	lines, offsets := splitLinesWithOffsets(text)
	var out []model.GlossaryTerm
	for _, d := range parseDirectives(text) {
		if d.Name != "glossary" {
			continue
		}
		for i := d.BodyStart; i < d.BodyEnd; i++ {
			line := lines[i]
			if strings.TrimSpace(line) == "" {
				continue
			}
			indent := len(line) - len(strings.TrimLeft(line, " \t"))
			if indent > 0 {
				continue // definition line, not a term
			}
			term := strings.TrimSpace(line)
			start := offsets[i]
			end := lineEnd(offsets, len(text), i)
			out = append(out, model.GlossaryTerm{
				Path: path,
				Term: term,
				Rng:  lsp.Range{Start: toPos(start), End: toPos(end)},
			})
		}
	}
	return out
}

// SubstitutionDefs turns the merged frontmatter substitution map into
// SubstitutionDef referenceables. Rng is pinned to the whole frontmatter
// block (yaml.Unmarshal discards individual keys' positions), but KeyRng is
// recovered by a textual scan for the key's mapping line, so rename doesn't
// have to nuke the entire block.
func SubstitutionDefs(path string, fm Frontmatter, toPos func(int) lsp.Position) []model.SubstitutionDef {
	if len(fm.Substitutions) == 0 {
		return nil
	}
	out := make([]model.SubstitutionDef, 0, len(fm.Substitutions))
	for key := range fm.Substitutions {
		out = append(out, model.SubstitutionDef{
			Path:   path,
			Key:    key,
			Rng:    fm.Range,
			KeyRng: substitutionKeyRange(fm.YAMLText, fm.YAMLOffset, key, toPos, fm.Range),
		})
	}
	return out
}

// substitutionKeyRange locates key's mapping line within the raw frontmatter
// YAML text (substitutions: or myst.substitutions:, nested wins so the last
// match is preferred) and narrows to just the key token. Falls back to the
// whole block when the key can't be found this way, e.g. a quoted or
// flow-style key yaml.Unmarshal still accepted.
func substitutionKeyRange(yamlText string, yamlOffset int, key string, toPos func(int) lsp.Position, fallback lsp.Range) lsp.Range {
	re := regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*:`)
	locs := re.FindAllStringIndex(yamlText, -1)
	if len(locs) == 0 {
		return fallback
	}
	last := locs[len(locs)-1]
	matched := yamlText[last[0]:last[1]]
	keyOffset := strings.Index(matched, key)
	if keyOffset < 0 {
		return fallback
	}
	start := yamlOffset + last[0] + keyOffset
	end := start + len(key)
	return lsp.Range{Start: toPos(start), End: toPos(end)}
}

// ToctreeRef is one entry line of a {toctree} directive body, carrying the
// owning directive's :caption: option when one is set.
type ToctreeRef struct {
	Target  string
	Caption string
}

// ToctreeEntries returns the entry paths listed in a {toctree} directive's
// body (bare lines, options like :maxdepth: already stripped out by
// parseDirectives since they precede BodyStart).
func ToctreeEntries(text string) []ToctreeRef {
	lines, _ := splitLinesWithOffsets(text)
	var out []ToctreeRef
	for _, d := range parseDirectives(text) {
		if d.Name != "toctree" {
			continue
		}
		caption := d.Options["caption"]
		for i := d.BodyStart; i < d.BodyEnd; i++ {
			entry := strings.TrimSpace(lines[i])
			if entry == "" || strings.HasPrefix(entry, "#") {
				continue
			}
			out = append(out, ToctreeRef{Target: entry, Caption: caption})
		}
	}
	return out
}

// IncludeEntries returns the target path of every {include} directive,
// taken from its inline argument (`` ```{include} path ``` ``).
func IncludeEntries(text string) []string {
	var out []string
	for _, d := range parseDirectives(text) {
		if d.Name != "include" || d.Arg == "" {
			continue
		}
		out = append(out, d.Arg)
	}
	return out
}
