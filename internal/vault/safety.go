// Package vault holds the one piece of shared path-safety logic the
// indexer needs: guarding the update-hook boundary (update hooks are called
// by external watchers) against a path that would resolve outside the vault
// root. Clean, reject absolute paths, then require the joined result to
// stay under the root with a separator boundary check so "/vault-backup"
// can't be mistaken for a prefix of "/vault".
package vault

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SafeJoinVaultPath joins root and a vault-relative path, returning an error
// if rel is absolute or the join would escape root. Used wherever a path
// arrives from outside the indexer's own filesystem walk (Indexer.Refresh's
// changed/removed lists, supplied by an external watch loop).
func SafeJoinVaultPath(root, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("vault: absolute path not allowed: %s", rel)
	}
	absRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("vault: resolve root: %w", err)
	}
	joined := filepath.Join(absRoot, filepath.FromSlash(rel))
	if joined != absRoot && !strings.HasPrefix(joined, absRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("vault: path escapes root: %s", rel)
	}
	return joined, nil
}
