package query

import (
	"sort"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sahilm/fuzzy"

	"github.com/obsidian-lsp/vaultls/internal/model"
)

// Symbol is one document-symbol-surface entry: a referenceable plus the
// detail text document symbol responses attach (heading level, directive
// name, and so on).
type Symbol struct {
	Name   string
	Detail string
	Kind   string
	Range  lsp.Range
	Target model.Referenceable
}

// Symbols returns path's document symbols — headings, anchors, labeled
// directives, glossary terms — sorted by line.
func (e *Engine) Symbols(path string) []Symbol {
	doc, ok := e.Vault.Docs[path]
	if !ok {
		return nil
	}
	var out []Symbol
	for _, h := range doc.Headings {
		out = append(out, Symbol{Name: h.Text, Detail: headingDetail(h.Level), Kind: "heading", Range: h.Rng, Target: h})
	}
	for _, a := range doc.MystAnchors {
		out = append(out, Symbol{Name: a.Name, Detail: "anchor", Kind: "anchor", Range: a.Rng, Target: a})
	}
	for _, d := range doc.DirectiveLbls {
		out = append(out, Symbol{Name: d.Value, Detail: d.Directive, Kind: "directive", Range: d.Rng, Target: d})
	}
	for _, g := range doc.GlossaryTerms {
		out = append(out, Symbol{Name: g.Term, Detail: "glossary term", Kind: "term", Range: g.Rng, Target: g})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Range.Start.Line < out[j].Range.Start.Line })
	return out
}

func headingDetail(level int) string {
	switch level {
	case 1:
		return "H1"
	case 2:
		return "H2"
	case 3:
		return "H3"
	case 4:
		return "H4"
	case 5:
		return "H5"
	default:
		return "H6"
	}
}

// workspaceSymbolSource is the fuzzy.Source adapter over every
// referenceable's display name, grounded on sahilm/fuzzy's Source interface
// (a plain []string would work too, but this avoids materializing a
// parallel slice of names).
type workspaceSymbolSource struct {
	items []model.Referenceable
}

func (s workspaceSymbolSource) String(i int) string { return model.DisplayName(s.items[i]) }
func (s workspaceSymbolSource) Len() int             { return len(s.items) }

// WorkspaceSymbols fuzzy-matches query against every referenceable's
// display name, ranked highest score first with ties broken by original
// (insertion) order.
func (e *Engine) WorkspaceSymbols(query string) []model.Referenceable {
	items := e.Vault.AllReferenceables()
	matches := fuzzy.FindFrom(query, workspaceSymbolSource{items: items})
	out := make([]model.Referenceable, 0, len(matches))
	for _, m := range matches {
		out = append(out, items[m.Index])
	}
	return out
}
