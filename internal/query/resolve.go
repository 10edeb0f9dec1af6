// Package query implements the resolution predicate and the public query
// surface over an immutable graph.Vault snapshot: backrefs, unresolved
// references, position lookups, previews, symbols, and rename planning.
package query

import (
	"path/filepath"
	"strings"

	"github.com/obsidian-lsp/vaultls/internal/document"
	"github.com/obsidian-lsp/vaultls/internal/graph"
	"github.com/obsidian-lsp/vaultls/internal/model"
)

// Engine answers queries against one immutable vault snapshot. A new Engine
// is constructed (or its Vault field swapped) whenever the index refreshes;
// callers hold their own lock around the swap (see internal/indexer).
type Engine struct {
	Vault *graph.Vault
}

func New(v *graph.Vault) *Engine { return &Engine{Vault: v} }

func pathFragment(text string) (p, frag string) {
	if idx := strings.IndexByte(text, '#'); idx >= 0 {
		return text[:idx], text[idx+1:]
	}
	return text, ""
}

func refnamePath(vaultPath string) string {
	p := filepath.ToSlash(vaultPath)
	if strings.HasSuffix(strings.ToLower(p), ".md") {
		p = p[:len(p)-3]
	}
	return p
}

// docsMatchingFile returns every document whose vault path satisfies the
// file-match rule against pathPart (short-form references may
// legitimately match more than one file sharing a basename).
func (e *Engine) docsMatchingFile(pathPart string) []*document.Document {
	var out []*document.Document
	for vaultPath, doc := range e.Vault.Docs {
		if graph.MatchesFile(pathPart, refnamePath(vaultPath)) {
			out = append(out, doc)
		}
	}
	return out
}

// TargetsOf implements the resolution predicate for a single
// reference, originating in file rf, against every referenceable in the
// vault. It never errors; an empty slice means "unresolved".
func (e *Engine) TargetsOf(r model.Reference, rf string) []model.Referenceable {
	switch ref := r.(type) {
	case model.WikiFileLink:
		return e.fileTargets(ref.D.Text)
	case model.MDFileLink:
		return e.fileTargets(ref.D.Text)
	case model.WikiHeadingLink:
		p, _ := pathFragment(ref.D.Text)
		return e.headingTargets(p, ref.Heading)
	case model.MDHeadingLink:
		p, _ := pathFragment(ref.D.Text)
		return e.headingTargets(p, ref.Heading)
	case model.WikiIndexedBlockLink:
		p, _ := pathFragment(ref.D.Text)
		return e.blockTargets(p, ref.Block)
	case model.MDIndexedBlockLink:
		p, _ := pathFragment(ref.D.Text)
		return e.blockTargets(p, ref.Block)
	case model.MystRole:
		return e.mystRoleTargets(ref, rf)
	case model.FootnoteUse:
		return e.footnoteTargets(rf, ref.ID)
	case model.LinkRefUse:
		return e.linkRefTargets(rf, ref.Label)
	case model.TagUse:
		return e.tagTargets(ref.Name)
	default:
		return nil
	}
}

func (e *Engine) fileTargets(text string) []model.Referenceable {
	pathPart, _ := pathFragment(text)
	var out []model.Referenceable
	for _, doc := range e.docsMatchingFile(pathPart) {
		out = append(out, model.File{Path: doc.Path})
	}
	return out
}

func (e *Engine) headingTargets(pathPart, fragment string) []model.Referenceable {
	var out []model.Referenceable
	for _, doc := range e.docsMatchingFile(pathPart) {
		for _, h := range doc.Headings {
			if strings.EqualFold(h.Text, fragment) {
				out = append(out, h)
			}
		}
	}
	return out
}

func (e *Engine) blockTargets(pathPart, block string) []model.Referenceable {
	var out []model.Referenceable
	for _, doc := range e.docsMatchingFile(pathPart) {
		for _, b := range doc.Blocks {
			if b.ID == block {
				out = append(out, b)
			}
		}
	}
	return out
}

func (e *Engine) footnoteTargets(rf, id string) []model.Referenceable {
	doc, ok := e.Vault.Docs[rf]
	if !ok {
		return nil
	}
	var out []model.Referenceable
	for _, f := range doc.Footnotes {
		if f.ID == id {
			out = append(out, f)
		}
	}
	return out
}

func (e *Engine) linkRefTargets(rf, label string) []model.Referenceable {
	doc, ok := e.Vault.Docs[rf]
	if !ok {
		return nil
	}
	var out []model.Referenceable
	for _, l := range doc.LinkRefDefs {
		if strings.EqualFold(l.Label, label) {
			out = append(out, l)
		}
	}
	return out
}

// tagTargets implements the dot/slash prefix-match rule: `#a/b` matches
// tag `a/b/c` but not `a/bb`.
func (e *Engine) tagTargets(prefix string) []model.Referenceable {
	var out []model.Referenceable
	for _, doc := range e.Vault.Docs {
		for _, t := range doc.Tags {
			if tagPrefixMatches(prefix, t.Name) {
				out = append(out, t)
			}
		}
	}
	return out
}

func tagPrefixMatches(prefix, name string) bool {
	if prefix == name {
		return true
	}
	return strings.HasPrefix(name, prefix+"/")
}

func (e *Engine) mystRoleTargets(ref model.MystRole, rf string) []model.Referenceable {
	var out []model.Referenceable
	switch ref.Kind {
	case model.RoleRef, model.RoleNumref:
		for _, doc := range e.Vault.Docs {
			for _, a := range doc.MystAnchors {
				if a.Name == ref.Target {
					out = append(out, a)
				}
			}
			for _, h := range doc.Headings {
				if model.Slugify(h.Text) == ref.Target {
					out = append(out, h)
				}
			}
		}
	case model.RoleDoc, model.RoleDownload:
		candidates := []string{ref.Target}
		if rel := filepath.ToSlash(filepath.Join(filepath.Dir(rf), ref.Target)); rel != ref.Target {
			candidates = append(candidates, rel)
		}
		seen := map[string]bool{}
		for _, c := range candidates {
			for _, doc := range e.docsMatchingFile(c) {
				if !seen[doc.Path] {
					seen[doc.Path] = true
					out = append(out, model.File{Path: doc.Path})
				}
			}
		}
	case model.RoleTerm:
		for _, doc := range e.Vault.Docs {
			for _, g := range doc.GlossaryTerms {
				if strings.EqualFold(g.Term, ref.Target) {
					out = append(out, g)
				}
			}
		}
	case model.RoleEq:
		for _, doc := range e.Vault.Docs {
			for _, m := range doc.MathLabels {
				if m.Label == ref.Target {
					out = append(out, m)
				}
			}
		}
	}
	return out
}
