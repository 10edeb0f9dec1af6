// Package graph holds the vault graph: document-model nodes plus
// reference/toctree/include edges, built in two passes (insert every node,
// then resolve edges against the full node set).
package graph

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/obsidian-lsp/vaultls/internal/document"
	"github.com/obsidian-lsp/vaultls/internal/model"
)

// EdgeKind distinguishes the three edge varieties the graph stores.
type EdgeKind int

const (
	EdgeReference EdgeKind = iota
	EdgeToctree
	EdgeInclude
)

// Edge is one directed arc between two documents.
type Edge struct {
	Kind    EdgeKind
	From    string
	To      string
	Ref     model.Reference // non-nil only for EdgeReference
	Caption string          // toctree only: the directive's :caption: option, empty when unset
}

// Vault is one immutable snapshot of the indexed markdown tree: every
// document's model plus the edges resolved between them. A Vault is never
// mutated after Build returns; updates produce a new Vault and swap it in
// under the caller's writer-exclusive lock (see internal/indexer).
type Vault struct {
	Docs  map[string]*document.Document
	Edges []Edge

	// fileIndex maps a vault-relative, extension-stripped, slash-separated
	// path to its document, for O(1) exact-path lookups.
	fileIndex map[string]*document.Document
}

// Build performs pass 1 (insert every node) and pass 2 (resolve edges) in
// one call, given every document already extracted in parallel by the
// caller (see internal/indexer).
func Build(docs map[string]*document.Document) *Vault {
	v := &Vault{
		Docs:      docs,
		fileIndex: make(map[string]*document.Document, len(docs)),
	}
	for path, doc := range docs {
		v.fileIndex[refnamePath(path)] = doc
	}

	for path, doc := range docs {
		for _, ref := range doc.References {
			for _, target := range v.resolveReferencePaths(path, ref) {
				v.Edges = append(v.Edges, Edge{Kind: EdgeReference, From: path, To: target, Ref: ref})
			}
		}
		for _, entry := range doc.ToctreeEntry {
			for _, target := range v.resolveBarePaths(entry.Target) {
				v.Edges = append(v.Edges, Edge{Kind: EdgeToctree, From: path, To: target, Caption: entry.Caption})
			}
		}
		for _, entry := range doc.IncludeEntry {
			for _, target := range v.resolveBarePaths(entry) {
				v.Edges = append(v.Edges, Edge{Kind: EdgeInclude, From: path, To: target})
			}
		}
	}
	return v
}

func refnamePath(path string) string {
	p := filepath.ToSlash(path)
	if strings.HasSuffix(strings.ToLower(p), ".md") {
		p = p[:len(p)-3]
	}
	return p
}

// pathPartOf strips any `#fragment` suffix a reference's text may carry.
func pathPartOf(text string) string {
	if idx := strings.IndexByte(text, '#'); idx >= 0 {
		return text[:idx]
	}
	return text
}

// NormalizePathPart applies the decode/strip normalization to a raw
// path portion before file matching.
func NormalizePathPart(p string) string {
	p = strings.ReplaceAll(p, "%20", " ")
	p = strings.ReplaceAll(p, `\ `, " ")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return p
}

func fileKey(refnamePath string) string {
	if idx := strings.LastIndexByte(refnamePath, '/'); idx >= 0 {
		return refnamePath[idx+1:]
	}
	return refnamePath
}

// MatchesFile implements the file-match rule: a path containing '/' must
// match the target's vault-relative path exactly; a bare name matches the
// target's basename case-insensitively.
func MatchesFile(pathPart, targetRefnamePath string) bool {
	norm := NormalizePathPart(pathPart)
	if strings.Contains(norm, "/") {
		return norm == targetRefnamePath
	}
	return strings.EqualFold(norm, fileKey(targetRefnamePath))
}

// resolveReferencePaths returns the vault paths of every document a
// reference's path portion resolves to (a short-form basename may match
// several files). Only the file-addressable reference kinds produce edges:
// wiki/Markdown links and the {doc}/{download} roles; footnote, link-ref,
// and the in-file role kinds never name a file. Edge resolution is
// path-only; fragment-aware resolution lives in internal/query.
func (v *Vault) resolveReferencePaths(from string, ref model.Reference) []string {
	pathPart := pathPartOf(ref.Data().Text)
	if pathPart == "" {
		return nil // fragment-only / same-file references don't need an edge
	}
	switch r := ref.(type) {
	case model.WikiFileLink, model.MDFileLink,
		model.WikiHeadingLink, model.MDHeadingLink,
		model.WikiIndexedBlockLink, model.MDIndexedBlockLink:
		return v.resolveBarePaths(pathPart)
	case model.MystRole:
		if r.Kind != model.RoleDoc && r.Kind != model.RoleDownload {
			return nil
		}
		out := v.resolveBarePaths(pathPart)
		// {doc}/{download} targets also resolve relative to the source file.
		if rel := filepath.ToSlash(filepath.Join(filepath.Dir(from), pathPart)); rel != pathPart {
			for _, p := range v.resolveBarePaths(rel) {
				if !containsString(out, p) {
					out = append(out, p)
				}
			}
		}
		return out
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

// resolveBarePaths resolves a bare path string (no fragment) against every
// known document, matching toctree/include entries and the path portion of
// ordinary references alike. A slash-qualified path is looked up directly in
// fileIndex (the "contains '/'" branch is exact-match, so this is
// equivalent to the full scan below but O(1)); a bare basename still needs
// the scan, since it may match more than one file sharing a basename. A
// trailing `.md` (as an {include} argument usually carries) is stripped
// first, since document keys are compared without it. The result is sorted
// so edge order is deterministic for the same input.
func (v *Vault) resolveBarePaths(pathPart string) []string {
	norm := refnamePath(NormalizePathPart(pathPart))
	if strings.Contains(norm, "/") {
		if doc, ok := v.fileIndex[norm]; ok {
			return []string{doc.Path}
		}
		return nil
	}
	var out []string
	for target, doc := range v.Docs {
		if MatchesFile(norm, refnamePath(target)) {
			out = append(out, doc.Path)
		}
	}
	sort.Strings(out)
	return out
}

// AllReferenceables returns every referenceable contributed by every
// document in the vault.
func (v *Vault) AllReferenceables() []model.Referenceable {
	var out []model.Referenceable
	for _, doc := range v.Docs {
		out = append(out, doc.Referenceables()...)
	}
	return out
}

// Backlinks returns every edge whose To equals path.
func (v *Vault) Backlinks(path string) []Edge {
	var out []Edge
	for _, e := range v.Edges {
		if e.To == path {
			out = append(out, e)
		}
	}
	return out
}
