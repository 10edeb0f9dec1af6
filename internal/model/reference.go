package model

import lsp "github.com/sourcegraph/go-lsp"

// ReferenceData is the data every reference variant shares.
type ReferenceData struct {
	Text    string // reference text, percent-decoded and .md-stripped
	Display string // display_text, empty if the syntax has none
	Range   lsp.Range
}

// Reference is a textual occurrence that points at (or tries to point at) a
// referenceable. Like Referenceable, the interface is sealed.
type Reference interface {
	Data() ReferenceData
	reference()
}

// MystRoleKind enumerates the supported MyST role kinds.
type MystRoleKind string

const (
	RoleRef      MystRoleKind = "ref"
	RoleNumref   MystRoleKind = "numref"
	RoleDoc      MystRoleKind = "doc"
	RoleDownload MystRoleKind = "download"
	RoleTerm     MystRoleKind = "term"
	RoleEq       MystRoleKind = "eq"
)

// WikiFileLink is `[[path]]` / `[[path|display]]`.
type WikiFileLink struct {
	D ReferenceData
}

func (r WikiFileLink) Data() ReferenceData { return r.D }
func (WikiFileLink) reference()            {}

// WikiHeadingLink is `[[path#heading]]` / `[[path#heading|d]]`.
type WikiHeadingLink struct {
	D       ReferenceData
	Heading string
}

func (r WikiHeadingLink) Data() ReferenceData { return r.D }
func (WikiHeadingLink) reference()            {}

// WikiIndexedBlockLink is `[[path#^id]]` / `[[path#^id|d]]`.
type WikiIndexedBlockLink struct {
	D     ReferenceData
	Block string // without leading ^
}

func (r WikiIndexedBlockLink) Data() ReferenceData { return r.D }
func (WikiIndexedBlockLink) reference()            {}

// MDFileLink is `[d](path)`.
type MDFileLink struct {
	D ReferenceData
}

func (r MDFileLink) Data() ReferenceData { return r.D }
func (MDFileLink) reference()            {}

// MDHeadingLink is `[d](path#heading)`.
type MDHeadingLink struct {
	D       ReferenceData
	Heading string
}

func (r MDHeadingLink) Data() ReferenceData { return r.D }
func (MDHeadingLink) reference()            {}

// MDIndexedBlockLink is `[d](path#^id)`.
type MDIndexedBlockLink struct {
	D     ReferenceData
	Block string
}

func (r MDIndexedBlockLink) Data() ReferenceData { return r.D }
func (MDIndexedBlockLink) reference()            {}

// MystRole is `{kind}`target`` for kind in RoleRef..RoleEq.
type MystRole struct {
	D      ReferenceData
	Kind   MystRoleKind
	Target string
}

func (r MystRole) Data() ReferenceData { return r.D }
func (MystRole) reference()            {}

// FootnoteUse is an inline `[^id]` use (not the `[^id]: ...` definition).
type FootnoteUse struct {
	D  ReferenceData
	ID string // including leading ^
}

func (r FootnoteUse) Data() ReferenceData { return r.D }
func (FootnoteUse) reference()            {}

// LinkRefUse is a `[label]` use, only emitted when a matching
// `[label]: url` definition exists somewhere in the same file.
type LinkRefUse struct {
	D     ReferenceData
	Label string
}

func (r LinkRefUse) Data() ReferenceData { return r.D }
func (LinkRefUse) reference()            {}

// TagUse is a `#name` occurrence. The
// extractor does not emit these (definition and use are the same token);
// query.Backrefs synthesizes one per tag occurrence matching a Tag target.
type TagUse struct {
	D    ReferenceData
	Name string
}

func (r TagUse) Data() ReferenceData { return r.D }
func (TagUse) reference()            {}
