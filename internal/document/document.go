// Package document assembles one file's extracted entities and references
// into a single bundle, the unit internal/graph indexes and
// internal/query operates over.
package document

import (
	"time"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/obsidian-lsp/vaultls/internal/extract"
	"github.com/obsidian-lsp/vaultls/internal/model"
	"github.com/obsidian-lsp/vaultls/internal/rope"
	"github.com/obsidian-lsp/vaultls/internal/schema"
)

// Document is the per-file extraction result: every typed entity the file
// contributes, every outgoing reference, its frontmatter, and the codeblock
// ranges extraction masked against.
type Document struct {
	Path    string
	Rope    *rope.Rope
	ModTime time.Time // UNIX epoch when the indexer's stat failed; best-effort

	Headings      []model.Heading
	Blocks        []model.IndexedBlock
	Tags          []model.Tag
	Footnotes     []model.Footnote
	LinkRefDefs   []model.LinkRefDef
	MystAnchors   []model.MystAnchor
	GlossaryTerms []model.GlossaryTerm
	DirectiveLbls []model.DirectiveLabel
	MathLabels    []model.MathLabel
	SubstDefs     []model.SubstitutionDef

	Frontmatter  extract.Frontmatter
	ParseErrors  []extract.ParseError
	References   []model.Reference
	CodeBlocks   []extract.Range
	ToctreeEntry []extract.ToctreeRef
	IncludeEntry []string
}

// Build runs every extractor over text and bundles the result. schemaV
// may be nil (no frontmatter schema configured). modTime is the caller's
// best-effort stat result (internal/indexer passes the UNIX epoch if the
// stat failed).
func Build(path, text string, modTime time.Time, cfg extract.Config, schemaV *schema.Schema) *Document {
	r := rope.New(text)
	toPos := func(offset int) lsp.Position { return r.OffsetToPosition(offset) }

	blocks := extract.DetectCodeBlocks(text)

	fm, parseErr := extract.ExtractFrontmatter(text, toPos)
	var parseErrs []extract.ParseError
	if parseErr != nil {
		parseErrs = append(parseErrs, *parseErr)
	}
	parseErrs = append(parseErrs, extract.ValidateSchema(fm, schemaV)...)

	linkRefDefs := extract.ExtractLinkRefDefs(path, text, blocks, toPos)
	labels := extract.LinkRefLabels(linkRefDefs)

	refBlocks := blocks
	if cfg.ReferencesInCodeblocks {
		refBlocks = nil
	}

	doc := &Document{
		Path:          path,
		Rope:          r,
		ModTime:       modTime,
		Headings:      extract.ExtractHeadings(path, text, blocks, toPos),
		Blocks:        extract.ExtractIndexedBlocks(path, text, blocks, toPos),
		Tags:          extract.ExtractTags(path, text, blocks, cfg, toPos),
		Footnotes:     extract.ExtractFootnoteDefs(path, text, blocks, toPos),
		LinkRefDefs:   linkRefDefs,
		MystAnchors:   extract.ExtractMystAnchors(path, text, blocks, toPos),
		GlossaryTerms: extract.ExtractGlossaryTerms(path, text, toPos),
		DirectiveLbls: extract.ExtractDirectiveLabels(path, text, toPos),
		MathLabels:    extract.ExtractMathLabels(path, text, toPos),
		SubstDefs:     extract.SubstitutionDefs(path, fm, toPos),
		Frontmatter:   fm,
		ParseErrors:   parseErrs,
		References:    extract.ExtractAllReferences(text, refBlocks, labels, toPos),
		CodeBlocks:    blocks,
		ToctreeEntry:  extract.ToctreeEntries(text),
		IncludeEntry:  extract.IncludeEntries(text),
	}
	return doc
}

// Referenceables returns every referenceable the document contributes,
// including the synthetic File variant for the file itself.
func (d *Document) Referenceables() []model.Referenceable {
	out := []model.Referenceable{model.File{Path: d.Path}}
	for _, h := range d.Headings {
		out = append(out, h)
	}
	for _, b := range d.Blocks {
		out = append(out, b)
	}
	for _, t := range d.Tags {
		out = append(out, t)
	}
	for _, f := range d.Footnotes {
		out = append(out, f)
	}
	for _, l := range d.LinkRefDefs {
		out = append(out, l)
	}
	for _, a := range d.MystAnchors {
		out = append(out, a)
	}
	for _, g := range d.GlossaryTerms {
		out = append(out, g)
	}
	for _, dl := range d.DirectiveLbls {
		out = append(out, dl)
	}
	for _, m := range d.MathLabels {
		out = append(out, m)
	}
	for _, s := range d.SubstDefs {
		out = append(out, s)
	}
	return out
}
