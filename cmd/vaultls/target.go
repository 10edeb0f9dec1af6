package main

import "github.com/obsidian-lsp/vaultls/internal/model"

// lookupReferenceable finds the referenceable among candidates matching
// fragment (by its in-file or full refname), or the bare file itself when
// fragment is empty.
func lookupReferenceable(candidates []model.Referenceable, fragment string) (model.Referenceable, bool) {
	if fragment == "" {
		for _, r := range candidates {
			if _, ok := r.(model.File); ok {
				return r, true
			}
		}
		return nil, false
	}
	for _, r := range candidates {
		rn := r.Refname()
		if rn.InfileRef == fragment || rn.Full == fragment {
			return r, true
		}
	}
	return nil, false
}
