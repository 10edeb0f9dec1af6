package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// watchCmd is the only place fsnotify is used: filesystem watching is
// external to the core engine, so internal/indexer only exposes
// Refresh and this command is responsible for deciding when to call it.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault for changes and keep the index refreshed",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndexer()
		if err != nil {
			return err
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		if err := addWatchDirs(watcher, vaultRoot); err != nil {
			return err
		}

		log.Printf("watching %s for changes", vaultRoot)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if !strings.EqualFold(filepath.Ext(ev.Name), ".md") {
					continue
				}
				rel, err := filepath.Rel(vaultRoot, ev.Name)
				if err != nil {
					continue
				}
				rel = filepath.ToSlash(rel)

				var changed, removed []string
				if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					removed = []string{rel}
				} else {
					changed = []string{rel}
				}
				if err := idx.Refresh(changed, removed); err != nil {
					log.Printf("refresh failed for %s: %v", rel, err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Printf("watch error: %v", err)
			}
		}
	},
}

func addWatchDirs(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := info.Name()
		if p != root && (strings.HasPrefix(name, ".") || name == "logseq") {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
