// Package indexer owns the vault lifecycle: the parallel initial crawl, the
// writer-exclusive refresh, and the immutable snapshot readers see. The
// crawl fans file reads and extraction out over a bounded worker pool; a
// refresh builds a brand-new snapshot and swaps one pointer.
package indexer

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/obsidian-lsp/vaultls/internal/config"
	"github.com/obsidian-lsp/vaultls/internal/diskcache"
	"github.com/obsidian-lsp/vaultls/internal/document"
	"github.com/obsidian-lsp/vaultls/internal/extract"
	"github.com/obsidian-lsp/vaultls/internal/graph"
	"github.com/obsidian-lsp/vaultls/internal/query"
	"github.com/obsidian-lsp/vaultls/internal/schema"
	"github.com/obsidian-lsp/vaultls/internal/vault"
)

// Indexer is the writer side of the vault: it owns the current snapshot and
// exposes a read lock over it. Callers obtain a query.Engine per read; the
// Engine's Vault field never mutates underneath them, because Refresh
// builds a brand new graph.Vault and swaps the pointer rather than editing
// the old one in place.
type Indexer struct {
	Root   string
	Config config.Config

	mu     sync.RWMutex
	vault  *graph.Vault
	schema *schema.Schema
	cache  *diskcache.Cache // nil when no on-disk cache is configured
}

// New constructs an Indexer for root, loading the vault settings and, if
// configured, compiling the frontmatter JSON schema.
func New(root string) (*Indexer, error) {
	cfg, err := config.Load(root)
	if err != nil {
		log.Printf("indexer: %v; continuing with defaults", err)
		cfg = config.Default()
	}

	idx := &Indexer{Root: root, Config: cfg}

	if cfg.FrontmatterSchemaPath != "" {
		raw, err := os.ReadFile(cfg.FrontmatterSchemaPath)
		if err != nil {
			log.Printf("indexer: frontmatter schema unreadable (%v); validation disabled", err)
		} else if compiled, err := schema.Compile(raw); err != nil {
			log.Printf("indexer: frontmatter schema invalid (%v); validation disabled", err)
		} else {
			idx.schema = compiled
		}
	}

	return idx, nil
}

// WithDiskCache opens (or creates) a persisted extraction cache at path and
// attaches it to idx; subsequent Load/Refresh calls consult it before
// reading a file's content from disk.
func (idx *Indexer) WithDiskCache(path string) error {
	c, err := diskcache.Open(path)
	if err != nil {
		return err
	}
	idx.cache = c
	return nil
}

// Engine returns a query engine bound to the current snapshot.
func (idx *Indexer) Engine() *query.Engine {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return query.New(idx.vault)
}

// Load performs the initial parallel crawl: enumerate paths serially,
// then read and extract each file across a worker pool, then assemble the
// graph on a single thread.
func (idx *Indexer) Load() error {
	paths, err := idx.enumerate()
	if err != nil {
		return err
	}

	docs := idx.extractAll(paths)

	if idx.cache != nil {
		idx.forgetStaleCacheEntries(paths)
	}

	v := graph.Build(docs)

	idx.mu.Lock()
	idx.vault = v
	idx.mu.Unlock()
	return nil
}

// forgetStaleCacheEntries evicts cache rows for paths no longer present in
// the current walk (files deleted or renamed since the cache was last
// populated), so the persisted cache doesn't grow unboundedly across runs.
func (idx *Indexer) forgetStaleCacheEntries(present []string) {
	ctx := context.Background()
	cached, err := idx.cache.Paths(ctx)
	if err != nil {
		log.Printf("indexer: list cached paths: %v", err)
		return
	}
	live := make(map[string]bool, len(present))
	for _, p := range present {
		live[p] = true
	}
	for _, p := range cached {
		if !live[p] {
			if err := idx.cache.Forget(ctx, p); err != nil {
				log.Printf("indexer: forget stale cache entry %s: %v", p, err)
			}
		}
	}
}

// Refresh re-extracts the given vault-relative paths and rebuilds the graph
// under the writer-exclusive lock. The whole snapshot is replaced
// rather than edited in place, so concurrent readers never see a partial
// update; for a vault of modest size a full edge-rebuild is simpler and
// cheap enough to be worth it over incremental edge patching.
func (idx *Indexer) Refresh(changed []string, removed []string) error {
	idx.mu.Lock()
	current := idx.vault
	if current == nil {
		idx.mu.Unlock()
		return idx.Load()
	}
	defer idx.mu.Unlock()

	docs := make(map[string]*document.Document, len(current.Docs))
	for p, d := range current.Docs {
		docs[p] = d
	}
	for _, p := range removed {
		delete(docs, p)
		if idx.cache != nil {
			if err := idx.cache.Forget(context.Background(), p); err != nil {
				log.Printf("indexer: forget cache entry %s: %v", p, err)
			}
		}
	}

	for _, d := range idx.extractAll(changed) {
		docs[d.Path] = d
	}

	idx.vault = graph.Build(docs)
	return nil
}

// enumerate walks Root serially: every .md file, excluding hidden
// directories and any directory named "logseq".
func (idx *Indexer) enumerate() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(idx.Root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if p != idx.Root && (strings.HasPrefix(name, ".") || name == "logseq") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), ".md") {
			return nil
		}
		rel, err := filepath.Rel(idx.Root, p)
		if err != nil {
			return nil
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// extractAll reads and extracts each path in parallel, one worker per CPU,
// matching the job-channel/WaitGroup shape of CollectBacklinks. Unreadable
// files are logged and omitted; the result map only
// ever contains successfully extracted documents.
func (idx *Indexer) extractAll(paths []string) map[string]*document.Document {
	workerCount := runtime.NumCPU()
	if workerCount < 1 {
		workerCount = 1
	}
	jobs := make(chan string, workerCount)

	var mu sync.Mutex
	var wg sync.WaitGroup
	results := make(map[string]*document.Document, len(paths))

	extCfg := extract.Config{
		TagsInCodeblocks:       idx.Config.TagsInCodeblocks,
		ReferencesInCodeblocks: idx.Config.ReferencesInCodeblocks,
	}

	ctx := context.Background()

	worker := func() {
		defer wg.Done()
		for rel := range jobs {
			abs, err := vault.SafeJoinVaultPath(idx.Root, rel)
			if err != nil {
				log.Printf("indexer: %v; omitting from index", err)
				continue
			}
			info, err := os.Stat(abs)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Printf("indexer: stat %s: %v", rel, err)
			}
			modTime := modTimeOf(info)

			var content string
			var cacheHit bool
			if idx.cache != nil && info != nil {
				content, cacheHit = idx.cache.Lookup(ctx, rel, info.Size(), modTime)
			}
			if !cacheHit {
				raw, err := os.ReadFile(abs)
				if err != nil {
					log.Printf("indexer: read %s: %v; omitting from index", rel, err)
					continue
				}
				content = string(raw)
				if idx.cache != nil && info != nil {
					if err := idx.cache.Store(ctx, rel, info.Size(), modTime, content); err != nil {
						log.Printf("indexer: cache store %s: %v", rel, err)
					}
				}
			}

			doc := document.Build(rel, content, modTime, extCfg, idx.schema)

			mu.Lock()
			results[rel] = doc
			mu.Unlock()
		}
	}

	wg.Add(workerCount)
	for i := 0; i < workerCount; i++ {
		go worker()
	}
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	return results
}

// modTimeOf returns info.ModTime(), or the UNIX epoch if the stat failed
// (info is nil), so files with unknown mtime sort last in backref results.
func modTimeOf(info os.FileInfo) time.Time {
	if info == nil {
		return time.Unix(0, 0).UTC()
	}
	return info.ModTime()
}
