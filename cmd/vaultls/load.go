package main

import (
	"log"

	"github.com/obsidian-lsp/vaultls/internal/indexer"
)

// loadIndexer constructs and loads an indexer over vaultRoot, honoring the
// --cache global flag.
func loadIndexer() (*indexer.Indexer, error) {
	idx, err := indexer.New(vaultRoot)
	if err != nil {
		return nil, err
	}
	if cachePath != "" {
		if err := idx.WithDiskCache(cachePath); err != nil {
			log.Printf("vaultls: disk cache unavailable (%v); continuing without it", err)
		}
	}
	if err := idx.Load(); err != nil {
		return nil, err
	}
	return idx, nil
}
