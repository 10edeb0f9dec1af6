package query

import (
	"fmt"
	"sort"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/obsidian-lsp/vaultls/internal/graph"
	"github.com/obsidian-lsp/vaultls/internal/model"
)

// Backref pairs a resolved reference with the file it occurs in, the unit
// Backrefs returns (Unresolved returns bare references, since its path is
// already the caller's argument).
type Backref struct {
	Path string
	Ref  model.Reference
}

// Backrefs returns every reference resolving to t, sorted newest-first by
// the originating file's mtime. File targets are answered through the
// graph's backlink edges in O(backlinks(F)) — the query the duplicated
// edge storage exists for — while in-file referenceable kinds (headings,
// blocks, footnotes, labels) are not edge-addressable and fall back to the
// per-document reference lists.
func (e *Engine) Backrefs(t model.Referenceable) []Backref {
	var out []Backref
	switch target := t.(type) {
	case model.Tag:
		for vaultPath, doc := range e.Vault.Docs {
			for _, occ := range doc.Tags {
				if tagPrefixMatches(target.Name, occ.Name) {
					out = append(out, Backref{
						Path: vaultPath,
						Ref:  model.TagUse{D: model.ReferenceData{Text: "#" + occ.Name, Range: occ.Rng}, Name: occ.Name},
					})
				}
			}
		}
	case model.File:
		for _, edge := range e.Vault.Backlinks(target.Path) {
			if edge.Kind != graph.EdgeReference {
				continue
			}
			// Edges are path-only: a heading or block link into this file
			// has an edge too, but resolves to the heading/block, not the
			// file. Re-check the full predicate per edge.
			for _, got := range e.TargetsOf(edge.Ref, edge.From) {
				if sameReferenceable(got, t) {
					out = append(out, Backref{Path: edge.From, Ref: edge.Ref})
					break
				}
			}
		}
	default:
		for vaultPath, doc := range e.Vault.Docs {
			for _, ref := range doc.References {
				for _, target := range e.TargetsOf(ref, vaultPath) {
					if sameReferenceable(target, t) {
						out = append(out, Backref{Path: vaultPath, Ref: ref})
						break
					}
				}
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ti := e.Vault.Docs[out[i].Path].ModTime
		tj := e.Vault.Docs[out[j].Path].ModTime
		return ti.After(tj)
	})
	return out
}

func sameReferenceable(a, b model.Referenceable) bool {
	if a.OwnerPath() != b.OwnerPath() {
		return false
	}
	return a.Refname() == b.Refname()
}

// AllReferenceables returns every referenceable in a single file, or in the
// whole vault (including a synthesized Unresolved* per distinct
// reference_text) when path is empty.
func (e *Engine) AllReferenceables(path string) []model.Referenceable {
	if path != "" {
		doc, ok := e.Vault.Docs[path]
		if !ok {
			return nil
		}
		return doc.Referenceables()
	}

	out := e.Vault.AllReferenceables()
	seen := map[string]bool{}
	for vaultPath, doc := range e.Vault.Docs {
		for _, ref := range doc.References {
			if len(e.TargetsOf(ref, vaultPath)) > 0 {
				continue
			}
			if u := unresolvedFor(ref, vaultPath); u != nil {
				key := fmt.Sprintf("%T:%s", u, u.Refname().Full)
				if !seen[key] {
					seen[key] = true
					out = append(out, u)
				}
			}
		}
	}
	return out
}

// unresolvedFor synthesizes the Unresolved* referenceable a failed
// reference implies, or nil for kinds with no unresolved counterpart
// (tags/footnotes/link-refs/myst roles are always either resolved or simply
// absent; only file/heading/block targets have an unresolved counterpart).
func unresolvedFor(r model.Reference, rf string) model.Referenceable {
	switch ref := r.(type) {
	case model.WikiFileLink:
		p, _ := pathFragment(ref.D.Text)
		return model.UnresolvedFile{Path: p}
	case model.MDFileLink:
		p, _ := pathFragment(ref.D.Text)
		return model.UnresolvedFile{Path: p}
	case model.WikiHeadingLink:
		p, _ := pathFragment(ref.D.Text)
		return model.UnresolvedHeading{Path: p, Fragment: ref.Heading}
	case model.MDHeadingLink:
		p, _ := pathFragment(ref.D.Text)
		return model.UnresolvedHeading{Path: p, Fragment: ref.Heading}
	case model.WikiIndexedBlockLink:
		p, _ := pathFragment(ref.D.Text)
		return model.UnresolvedIndexedBlock{Path: p, Fragment: "^" + ref.Block}
	case model.MDIndexedBlockLink:
		p, _ := pathFragment(ref.D.Text)
		return model.UnresolvedIndexedBlock{Path: p, Fragment: "^" + ref.Block}
	default:
		return nil
	}
}

// Unresolved returns every reference in path whose TargetsOf is empty,
// used by the diagnostics surface.
func (e *Engine) Unresolved(path string) []model.Reference {
	doc, ok := e.Vault.Docs[path]
	if !ok {
		return nil
	}
	var out []model.Reference
	for _, ref := range doc.References {
		if len(e.TargetsOf(ref, path)) == 0 {
			out = append(out, ref)
		}
	}
	return out
}

// ReferenceableAt returns the smallest referenceable whose range contains
// pos, falling back to the file itself.
func (e *Engine) ReferenceableAt(path string, pos lsp.Position) model.Referenceable {
	doc, ok := e.Vault.Docs[path]
	if !ok {
		return model.File{Path: path}
	}
	var best model.Referenceable
	bestSpan := -1
	consider := func(r model.Referenceable) {
		rng := r.Range()
		if rng == nil || !posWithin(pos, *rng) {
			return
		}
		span := spanOf(*rng)
		if best == nil || span < bestSpan {
			best = r
			bestSpan = span
		}
	}
	for _, r := range doc.Referenceables() {
		consider(r)
	}
	if best == nil {
		return model.File{Path: path}
	}
	return best
}

// ReferenceAt returns the reference under pos in path, if any.
func (e *Engine) ReferenceAt(path string, pos lsp.Position) (model.Reference, bool) {
	doc, ok := e.Vault.Docs[path]
	if !ok {
		return nil, false
	}
	for _, r := range doc.References {
		if posWithin(pos, r.Data().Range) {
			return r, true
		}
	}
	return nil, false
}

func posWithin(pos lsp.Position, r lsp.Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// spanOf is a coarse size heuristic (line delta then character delta) used
// only to prefer the smallest of several overlapping ranges.
func spanOf(r lsp.Range) int {
	lines := r.End.Line - r.Start.Line
	return lines*100000 + (r.End.Character - r.Start.Character)
}

// Preview returns the hover text slice for a referenceable.
func (e *Engine) Preview(t model.Referenceable) string {
	doc, ok := e.Vault.Docs[t.OwnerPath()]
	if !ok {
		return ""
	}
	lines := strings.Split(doc.Rope.Text(), "\n")
	clamp := func(n int) int {
		if n > len(lines) {
			return len(lines)
		}
		return n
	}
	switch v := t.(type) {
	case model.Heading:
		start := v.Rng.Start.Line
		return strings.Join(lines[start:clamp(start+10)], "\n")
	case model.IndexedBlock:
		return lines[v.Rng.Start.Line]
	case model.Footnote:
		return lines[v.Rng.Start.Line]
	case model.LinkRefDef:
		return lines[v.Rng.Start.Line]
	case model.File:
		return strings.Join(lines[:clamp(14)], "\n")
	case model.Tag:
		return ""
	default:
		return ""
	}
}
