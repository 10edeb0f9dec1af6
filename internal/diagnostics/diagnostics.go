// Package diagnostics turns extraction and resolution state into the
// structured diagnostics the engine reports: parse errors, schema validation
// failures, and informational unresolved-reference diagnostics.
package diagnostics

import (
	"fmt"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/obsidian-lsp/vaultls/internal/document"
	"github.com/obsidian-lsp/vaultls/internal/query"
)

// Severity mirrors LSP's DiagnosticSeverity as a local enum rather than
// reusing sourcegraph/go-lsp's lsp.DiagnosticSeverity; go-lsp is imported
// here only for lsp.Range (see DESIGN.md).
type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityInformation
)

// Diagnostic is one reportable condition.
type Diagnostic struct {
	Range    lsp.Range
	Message  string
	Severity Severity
}

// ForFile computes every diagnostic for path: frontmatter parse/schema
// errors, plus informational unresolved-reference diagnostics when enabled.
func ForFile(path string, doc *document.Document, engine *query.Engine, unresolvedEnabled bool) []Diagnostic {
	var out []Diagnostic
	for _, pe := range doc.ParseErrors {
		out = append(out, Diagnostic{Range: pe.Range, Message: pe.Message, Severity: SeverityWarning})
	}
	if unresolvedEnabled {
		out = append(out, unresolvedDiagnostics(path, engine)...)
	}
	return out
}

// unresolvedDiagnostics groups unresolved references by reference_text and
// emits one diagnostic per occurrence in path, with the message noting the
// multiplicity of that target text across the whole vault: two files each
// containing one unresolved `[x](missing)` both report
// "Unresolved Reference used 2 times".
func unresolvedDiagnostics(path string, engine *query.Engine) []Diagnostic {
	refs := engine.Unresolved(path)
	if len(refs) == 0 {
		return nil
	}
	counts := vaultWideUnresolvedCounts(engine)

	var out []Diagnostic
	for _, r := range refs {
		text := r.Data().Text
		msg := fmt.Sprintf("Unresolved Reference used %d time", counts[text])
		if counts[text] != 1 {
			msg += "s"
		}
		out = append(out, Diagnostic{Range: r.Data().Range, Message: msg, Severity: SeverityInformation})
	}
	return out
}

// vaultWideUnresolvedCounts tallies unresolved reference_text occurrences
// across every document in the vault, the multiplicity the
// unresolved-reference message reports.
func vaultWideUnresolvedCounts(engine *query.Engine) map[string]int {
	counts := map[string]int{}
	for p := range engine.Vault.Docs {
		for _, r := range engine.Unresolved(p) {
			counts[r.Data().Text]++
		}
	}
	return counts
}
