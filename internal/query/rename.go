package query

import (
	"strings"

	lsp "github.com/sourcegraph/go-lsp"

	"github.com/obsidian-lsp/vaultls/internal/model"
)

// WorkspaceEdit mirrors sourcegraph/go-lsp's WorkspaceEdit shape: per-file
// text edits keyed by pre-rename path, plus an optional file rename the
// caller applies after the text edits.
type WorkspaceEdit struct {
	Changes    map[string][]lsp.TextEdit
	RenameFrom string
	RenameTo   string
}

func (w *WorkspaceEdit) addEdit(path string, edit lsp.TextEdit) {
	if w.Changes == nil {
		w.Changes = map[string][]lsp.TextEdit{}
	}
	w.Changes[path] = append(w.Changes[path], edit)
}

// Rename plans the workspace edit for renaming t to newName. It returns
// ok=false only when t identifies nothing
// renameable or newName is invalid for t's kind — an all-or-nothing plan,
// never a partial one.
func (e *Engine) Rename(t model.Referenceable, newName string) (*WorkspaceEdit, bool) {
	if newName == "" {
		return nil, false
	}

	switch v := t.(type) {
	case model.File:
		if strings.ContainsAny(newName, "/\\") {
			return nil, false
		}
		return e.renameFile(v, newName), true
	case model.Heading:
		return e.renameHeading(v, newName), true
	case model.MystAnchor:
		return e.renameAnchor(v, newName), true
	case model.Tag:
		return e.renameTag(v, newName), true
	default:
		return e.renameGeneric(t, newName), true
	}
}

// RenameAtCursor renames starting from a cursor position: a cursor on a
// {ref}/{numref} role (or any other reference) first resolves through to
// its target, then the rename proceeds as if triggered on the target's
// definition. Generalized to any reference, since looking through a
// use-site to its resolved target before planning a rename is sound for
// every reference kind, not just MyST roles. Falls back to renaming
// whatever referenceable directly occupies pos (a definition site) when pos
// is not on a reference, or to the owning File when neither applies.
func (e *Engine) RenameAtCursor(path string, pos lsp.Position, newName string) (*WorkspaceEdit, bool) {
	if ref, ok := e.ReferenceAt(path, pos); ok {
		targets := e.TargetsOf(ref, path)
		if len(targets) > 0 {
			return e.Rename(targets[0], newName)
		}
		return nil, false
	}
	return e.Rename(e.ReferenceableAt(path, pos), newName)
}

func (e *Engine) renameFile(f model.File, newName string) *WorkspaceEdit {
	dir := dirOf(f.Path)
	newPath := joinPath(dir, newName+".md")
	w := &WorkspaceEdit{RenameFrom: f.Path, RenameTo: newPath}

	for vaultPath, doc := range e.Vault.Docs {
		for _, ref := range doc.References {
			for _, target := range e.TargetsOf(ref, vaultPath) {
				if _, ok := target.(model.File); !ok || target.OwnerPath() != f.Path {
					continue
				}
				if edit, ok := e.portionEdit(vaultPath, ref, portionPath, newName); ok {
					w.addEdit(vaultPath, edit)
				}
			}
		}
	}
	return w
}

func (e *Engine) renameHeading(h model.Heading, newName string) *WorkspaceEdit {
	w := &WorkspaceEdit{}
	w.addEdit(h.Path, lsp.TextEdit{Range: h.TextRng, NewText: newName})

	for vaultPath, doc := range e.Vault.Docs {
		for _, ref := range doc.References {
			for _, target := range e.TargetsOf(ref, vaultPath) {
				th, ok := target.(model.Heading)
				if !ok || !sameReferenceable(th, h) {
					continue
				}
				if edit, ok := e.portionEdit(vaultPath, ref, portionFragment, newName); ok {
					w.addEdit(vaultPath, edit)
				}
			}
		}
	}
	return w
}

func (e *Engine) renameAnchor(a model.MystAnchor, newName string) *WorkspaceEdit {
	w := &WorkspaceEdit{}
	w.addEdit(a.Path, lsp.TextEdit{Range: a.Rng, NewText: "(" + newName + ")="})

	for vaultPath, doc := range e.Vault.Docs {
		for _, ref := range doc.References {
			role, ok := ref.(model.MystRole)
			if !ok || (role.Kind != model.RoleRef && role.Kind != model.RoleNumref) {
				continue
			}
			for _, target := range e.TargetsOf(ref, vaultPath) {
				if anchor, ok := target.(model.MystAnchor); ok && sameReferenceable(anchor, a) {
					if edit, ok := e.portionEdit(vaultPath, ref, portionTarget, newName); ok {
						w.addEdit(vaultPath, edit)
					}
				}
			}
		}
	}
	return w
}

func (e *Engine) renameTag(tag model.Tag, newPrefix string) *WorkspaceEdit {
	w := &WorkspaceEdit{}
	for vaultPath, doc := range e.Vault.Docs {
		for _, occ := range doc.Tags {
			if !tagPrefixMatches(tag.Name, occ.Name) {
				continue
			}
			suffix := strings.TrimPrefix(occ.Name, tag.Name)
			w.addEdit(vaultPath, lsp.TextEdit{Range: occ.Rng, NewText: "#" + newPrefix + suffix})
		}
	}
	return w
}

// renameGeneric covers IndexedBlock, Footnote, LinkRefDef, GlossaryTerm,
// DirectiveLabel, MathLabel, SubstitutionDef: replace the definition's
// identifier, plus the matching portion of every resolved reference.
func (e *Engine) renameGeneric(t model.Referenceable, newName string) *WorkspaceEdit {
	w := &WorkspaceEdit{}
	if t.Range() != nil {
		w.addEdit(t.OwnerPath(), lsp.TextEdit{Range: definitionRange(t), NewText: newName})
	}
	for vaultPath, doc := range e.Vault.Docs {
		for _, ref := range doc.References {
			for _, target := range e.TargetsOf(ref, vaultPath) {
				if !sameReferenceable(target, t) {
					continue
				}
				which := portionTarget
				switch ref.(type) {
				case model.WikiIndexedBlockLink, model.MDIndexedBlockLink:
					which = portionFragment
				}
				if edit, ok := e.portionEdit(vaultPath, ref, which, newName); ok {
					w.addEdit(vaultPath, edit)
				}
			}
		}
	}
	return w
}

// portion names one syntactic slice of a reference occurrence: the path
// before any `#`, the fragment after it (sans a block marker's `^`), or the
// inner identifier of a bracketed/backticked construct.
type portion int

const (
	portionPath portion = iota
	portionFragment
	portionTarget
)

// portionEdit plans a text edit replacing just one portion of a reference,
// located by re-scanning the raw source under the reference's range. The
// surrounding syntax — brackets, display text, fences, any preserved `.md`
// extension or `^` marker — is left untouched.
func (e *Engine) portionEdit(path string, ref model.Reference, which portion, newText string) (lsp.TextEdit, bool) {
	doc, ok := e.Vault.Docs[path]
	if !ok {
		return lsp.TextEdit{}, false
	}
	r := doc.Rope
	rng := ref.Data().Range
	startByte := r.PositionToOffset(rng.Start)
	endByte := r.PositionToOffset(rng.End)
	if startByte < 0 || endByte > len(r.Text()) || startByte >= endByte {
		return lsp.TextEdit{}, false
	}
	raw := r.Text()[startByte:endByte]

	s, t, ok := portionSpan(raw, ref, which)
	if !ok {
		return lsp.TextEdit{}, false
	}
	return lsp.TextEdit{
		Range:   lsp.Range{Start: r.OffsetToPosition(startByte + s), End: r.OffsetToPosition(startByte + t)},
		NewText: newText,
	}, true
}

// portionSpan returns the half-open byte span of the requested portion
// within raw, the reference's full matched text.
func portionSpan(raw string, ref model.Reference, which portion) (int, int, bool) {
	switch ref.(type) {
	case model.WikiFileLink, model.WikiHeadingLink, model.WikiIndexedBlockLink:
		if !strings.HasPrefix(raw, "[[") || !strings.HasSuffix(raw, "]]") {
			return 0, 0, false
		}
		destStart := 2
		destEnd := len(raw) - 2
		if pipe := strings.IndexByte(raw[destStart:destEnd], '|'); pipe >= 0 {
			destEnd = destStart + pipe
		}
		return destSpan(raw, destStart, destEnd, which)

	case model.MDFileLink, model.MDHeadingLink, model.MDIndexedBlockLink:
		open := strings.LastIndex(raw, "](")
		if open < 0 || !strings.HasSuffix(raw, ")") {
			return 0, 0, false
		}
		destStart := open + 2
		destEnd := len(raw) - 1
		if destStart < destEnd && raw[destStart] == '<' && raw[destEnd-1] == '>' {
			destStart++
			destEnd--
		} else if idx := strings.IndexAny(raw[destStart:destEnd], " \t"); idx >= 0 {
			// drop a quoted title from the destination span
			rest := strings.TrimLeft(raw[destStart+idx:destEnd], " \t")
			if strings.HasPrefix(rest, `"`) {
				destEnd = destStart + idx
			}
		}
		return destSpan(raw, destStart, destEnd, which)

	case model.MystRole:
		b1 := strings.IndexByte(raw, '`')
		b2 := strings.LastIndexByte(raw, '`')
		if b1 < 0 || b2 <= b1 {
			return 0, 0, false
		}
		inner := raw[b1+1 : b2]
		// `{ref}`display <target>`` form: only the angle-bracketed target
		// is the identifier.
		if lt := strings.LastIndexByte(inner, '<'); lt >= 0 && strings.HasSuffix(inner, ">") {
			return b1 + 1 + lt + 1, b2 - 1, true
		}
		return b1 + 1, b2, true

	case model.FootnoteUse:
		if !strings.HasPrefix(raw, "[^") || !strings.HasSuffix(raw, "]") {
			return 0, 0, false
		}
		return 2, len(raw) - 1, true

	case model.LinkRefUse:
		if !strings.HasPrefix(raw, "[") {
			return 0, 0, false
		}
		end := strings.IndexByte(raw, ']')
		if end < 0 {
			return 0, 0, false
		}
		return 1, end, true
	}
	return 0, 0, false
}

// destSpan narrows a link destination raw[destStart:destEnd] to its path or
// fragment half. A trailing `.md` stays outside the path span so a file
// rename preserves the extension the author wrote; the `^` of a block
// fragment likewise stays in place.
func destSpan(raw string, destStart, destEnd int, which portion) (int, int, bool) {
	dest := raw[destStart:destEnd]
	hash := strings.IndexByte(dest, '#')
	switch which {
	case portionPath:
		end := destEnd
		if hash >= 0 {
			end = destStart + hash
		}
		if strings.HasSuffix(strings.ToLower(raw[destStart:end]), ".md") {
			end -= 3
		}
		return destStart, end, true
	case portionFragment, portionTarget:
		if hash < 0 {
			return 0, 0, false
		}
		start := destStart + hash + 1
		if start < destEnd && raw[start] == '^' {
			start++
		}
		return start, destEnd, true
	}
	return 0, 0, false
}

// definitionRange returns the narrowest range available for replacing a
// referenceable's identifier on rename. t.Range() is the display/location
// range used by hover, symbols, and referenceable-at-cursor lookups, and for
// several kinds it spans far more than the identifier itself (a whole
// heading line, a whole footnote/link-ref-def line, a whole directive
// header, the whole frontmatter block) — those kinds carry a narrower field
// populated from the defining regex's inner capture group instead.
func definitionRange(t model.Referenceable) lsp.Range {
	switch v := t.(type) {
	case model.IndexedBlock:
		return v.IDRng
	case model.Footnote:
		return v.IDRng
	case model.LinkRefDef:
		return v.LabelRng
	case model.DirectiveLabel:
		return v.ValueRng
	case model.MathLabel:
		return v.ValueRng
	case model.SubstitutionDef:
		return v.KeyRng
	default:
		return *t.Range()
	}
}

func dirOf(p string) string {
	if idx := strings.LastIndexByte(p, '/'); idx >= 0 {
		return p[:idx]
	}
	return ""
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
