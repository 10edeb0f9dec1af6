// Package model holds the vault's shared data model: referenceables (link
// targets) and references (use sites). These types are produced by
// internal/extract, bundled per-file by internal/document, and consumed by
// internal/graph and internal/query.
package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
)

// Refname is the canonical string a reference must produce to resolve to a
// referenceable, decomposed into its path-qualifying and in-file parts.
type Refname struct {
	Full       string
	Path       string // empty for referenceables with no path qualifier
	InfileRef  string // empty for File referenceables
}

// Referenceable is anything another piece of text can point at. The
// interface is sealed (via the unexported referenceable method) so every
// call site handling a Referenceable is forced into exhaustive switches over
// the concrete types below, mirroring the closed-enum shape of the original
// design (see DESIGN.md).
type Referenceable interface {
	// OwnerPath is the file that contributes this referenceable (or, for an
	// Unresolved* variant, the textual path the reference named).
	OwnerPath() string
	// Range is nil for File and for every Unresolved* variant.
	Range() *lsp.Range
	// Refname computes the canonical matching string from the
	// vault-root-relative path OwnerPath stores; path-qualified kinds drop
	// a trailing `.md` from it.
	Refname() Refname
	referenceable()
}

func slashPath(p string) string { return filepath.ToSlash(p) }

func stripMdExt(p string) string {
	if strings.HasSuffix(strings.ToLower(p), ".md") {
		return p[:len(p)-3]
	}
	return p
}

// File is the synthetic referenceable every indexed markdown file
// contributes for itself.
type File struct {
	Path string // vault-root-relative, with .md extension
}

func (f File) OwnerPath() string { return f.Path }
func (f File) Range() *lsp.Range { return nil }
func (f File) Refname() Refname {
	p := stripMdExt(slashPath(f.Path))
	return Refname{Full: p, Path: p}
}
func (File) referenceable() {}

// Heading is an ATX heading (level 1-6).
type Heading struct {
	Path  string
	Text  string
	Level int
	Rng   lsp.Range // the whole heading line, including the `#` markers
	// TextRng is just the heading text, used when renaming so the `#`
	// markers survive the edit.
	TextRng lsp.Range
}

func (h Heading) OwnerPath() string { return h.Path }
func (h Heading) Range() *lsp.Range { r := h.Rng; return &r }
func (h Heading) Refname() Refname {
	p := stripMdExt(slashPath(h.Path))
	return Refname{Full: p + "#" + h.Text, Path: p, InfileRef: h.Text}
}
func (Heading) referenceable() {}

// IndexedBlock is a `^id` block-reference target.
type IndexedBlock struct {
	Path string
	ID   string // without the leading ^
	Rng  lsp.Range
	// IDRng covers just the id token, excluding the `^` and surrounding
	// whitespace Rng picks up from the full regex match.
	IDRng lsp.Range
}

func (b IndexedBlock) OwnerPath() string { return b.Path }
func (b IndexedBlock) Range() *lsp.Range { r := b.Rng; return &r }
func (b IndexedBlock) Refname() Refname {
	p := stripMdExt(slashPath(b.Path))
	return Refname{Full: p + "#^" + b.ID, Path: p, InfileRef: "^" + b.ID}
}
func (IndexedBlock) referenceable() {}

// Tag is a `#name` (dot/slash-segmented) hashtag.
type Tag struct {
	Path string
	Name string
	Rng  lsp.Range
}

func (t Tag) OwnerPath() string { return t.Path }
func (t Tag) Range() *lsp.Range { r := t.Rng; return &r }
func (t Tag) Refname() Refname  { return Refname{Full: "#" + t.Name, InfileRef: "#" + t.Name} }
func (Tag) referenceable()      {}

// Footnote is a `[^id]: body` definition.
type Footnote struct {
	Path string
	ID   string // including the leading ^
	Body string
	Rng  lsp.Range // the whole `[^id]: body` definition line
	// IDRng covers just the id text, excluding the brackets, `^`, colon
	// and body, so renaming leaves the definition's syntax intact.
	IDRng lsp.Range
}

func (f Footnote) OwnerPath() string { return f.Path }
func (f Footnote) Range() *lsp.Range { r := f.Rng; return &r }
func (f Footnote) Refname() Refname  { return Refname{Full: f.ID, InfileRef: f.ID} }
func (Footnote) referenceable()      {}

// LinkRefDef is a `[label]: url "title"` definition.
type LinkRefDef struct {
	Path  string
	Label string
	URL   string
	Title string
	Rng   lsp.Range // the whole `[label]: url "title"` definition line
	// LabelRng covers just the label text, excluding the brackets, URL
	// and title, so renaming leaves the target URL intact.
	LabelRng lsp.Range
}

func (l LinkRefDef) OwnerPath() string { return l.Path }
func (l LinkRefDef) Range() *lsp.Range { r := l.Rng; return &r }
func (l LinkRefDef) Refname() Refname  { return Refname{Full: l.Label, InfileRef: l.Label} }
func (LinkRefDef) referenceable()      {}

// MystAnchor is a MyST `(name)=` target declaration.
type MystAnchor struct {
	Path string
	Name string
	Rng  lsp.Range
}

func (a MystAnchor) OwnerPath() string { return a.Path }
func (a MystAnchor) Range() *lsp.Range { r := a.Rng; return &r }
func (a MystAnchor) Refname() Refname  { return Refname{Full: a.Name, InfileRef: a.Name} }
func (MystAnchor) referenceable()      {}

// GlossaryTerm is the first line of a term block inside a {glossary}
// directive.
type GlossaryTerm struct {
	Path string
	Term string
	Rng  lsp.Range
}

func (g GlossaryTerm) OwnerPath() string { return g.Path }
func (g GlossaryTerm) Range() *lsp.Range { r := g.Rng; return &r }
func (g GlossaryTerm) Refname() Refname  { return Refname{Full: g.Term, InfileRef: g.Term} }
func (GlossaryTerm) referenceable()      {}

// DirectiveLabel is a `:name:`/`:label:` option on a MyST directive.
type DirectiveLabel struct {
	Path      string
	Directive string
	Value     string
	Rng       lsp.Range // the whole directive header, fence through last option
	// ValueRng covers just the option's value text, so renaming leaves the
	// fence and every other option intact.
	ValueRng lsp.Range
}

func (d DirectiveLabel) OwnerPath() string { return d.Path }
func (d DirectiveLabel) Range() *lsp.Range { r := d.Rng; return &r }
func (d DirectiveLabel) Refname() Refname  { return Refname{Full: d.Value, InfileRef: d.Value} }
func (DirectiveLabel) referenceable()      {}

// MathLabel is the label of a `math` directive.
type MathLabel struct {
	Path  string
	Label string
	Rng   lsp.Range // the whole directive header, fence through last option
	// ValueRng covers just the `:label:` value text.
	ValueRng lsp.Range
}

func (m MathLabel) OwnerPath() string { return m.Path }
func (m MathLabel) Range() *lsp.Range { r := m.Rng; return &r }
func (m MathLabel) Refname() Refname  { return Refname{Full: m.Label, InfileRef: m.Label} }
func (MathLabel) referenceable()      {}

// SubstitutionDef is a `substitutions`/`myst.substitutions` frontmatter key.
type SubstitutionDef struct {
	Path string
	Key  string
	Rng  lsp.Range // the whole frontmatter block
	// KeyRng covers just the mapping key's token, when it could be located
	// textually; otherwise it falls back to Rng.
	KeyRng lsp.Range
}

func (s SubstitutionDef) OwnerPath() string { return s.Path }
func (s SubstitutionDef) Range() *lsp.Range { r := s.Rng; return &r }
func (s SubstitutionDef) Refname() Refname  { return Refname{Full: s.Key, InfileRef: s.Key} }
func (SubstitutionDef) referenceable()      {}

// UnresolvedFile/Heading/IndexedBlock are synthesized on demand (never
// stored) whenever a query needs the full referenceable universe and a
// reference's target text matched nothing real. Path holds the textual path
// portion, Fragment the heading text or `^id` (empty for UnresolvedFile).
type UnresolvedFile struct{ Path string }

func (u UnresolvedFile) OwnerPath() string { return u.Path }
func (u UnresolvedFile) Range() *lsp.Range { return nil }
func (u UnresolvedFile) Refname() Refname  { return Refname{Full: u.Path, Path: u.Path} }
func (UnresolvedFile) referenceable()      {}

type UnresolvedHeading struct {
	Path     string
	Fragment string
}

func (u UnresolvedHeading) OwnerPath() string { return u.Path }
func (u UnresolvedHeading) Range() *lsp.Range { return nil }
func (u UnresolvedHeading) Refname() Refname {
	return Refname{Full: u.Path + "#" + u.Fragment, Path: u.Path, InfileRef: u.Fragment}
}
func (UnresolvedHeading) referenceable() {}

type UnresolvedIndexedBlock struct {
	Path     string
	Fragment string // includes leading ^
}

func (u UnresolvedIndexedBlock) OwnerPath() string { return u.Path }
func (u UnresolvedIndexedBlock) Range() *lsp.Range { return nil }
func (u UnresolvedIndexedBlock) Refname() Refname {
	return Refname{Full: u.Path + "#" + u.Fragment, Path: u.Path, InfileRef: u.Fragment}
}
func (UnresolvedIndexedBlock) referenceable() {}

// DisplayName returns a short human label for a referenceable, used by
// symbol and hover surfaces.
func DisplayName(r Referenceable) string {
	switch v := r.(type) {
	case File:
		return filepath.Base(stripMdExt(v.Path))
	case Heading:
		return v.Text
	case IndexedBlock:
		return "^" + v.ID
	case Tag:
		return "#" + v.Name
	case Footnote:
		return v.ID
	case LinkRefDef:
		return "[" + v.Label + "]"
	case MystAnchor:
		return v.Name
	case GlossaryTerm:
		return v.Term
	case DirectiveLabel:
		return v.Value
	case MathLabel:
		return v.Label
	case SubstitutionDef:
		return v.Key
	case UnresolvedFile:
		return v.Path
	case UnresolvedHeading:
		return fmt.Sprintf("%s#%s", v.Path, v.Fragment)
	case UnresolvedIndexedBlock:
		return fmt.Sprintf("%s#%s", v.Path, v.Fragment)
	default:
		return ""
	}
}

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify implements the heading-target slug rule: lower-case, collapse
// every non-alphanumeric run to a single '-', trim '-' at both ends.
// slugify(slugify(x)) == slugify(x) by construction (the output already
// contains no run the regex would further collapse, and has no leading or
// trailing '-').
func Slugify(s string) string {
	lower := strings.ToLower(s)
	collapsed := nonAlnumRun.ReplaceAllString(lower, "-")
	return strings.Trim(collapsed, "-")
}
