package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/spf13/cobra"

	"github.com/obsidian-lsp/vaultls/internal/query"
	"github.com/obsidian-lsp/vaultls/internal/rope"
)

// parseLineCol parses a "line:character" cursor position, the CLI's
// shorthand for the --at flag (an LSP caller would pass these as separate
// integers the way `definition`/`hover` already do).
func parseLineCol(s string) (lsp.Position, error) {
	line, col, found := strings.Cut(s, ":")
	if !found {
		return lsp.Position{}, fmt.Errorf("invalid --at %q: want line:character", s)
	}
	l, err := strconv.Atoi(line)
	if err != nil {
		return lsp.Position{}, fmt.Errorf("invalid --at line %q: %w", line, err)
	}
	c, err := strconv.Atoi(col)
	if err != nil {
		return lsp.Position{}, fmt.Errorf("invalid --at character %q: %w", col, err)
	}
	return lsp.Position{Line: l, Character: c}, nil
}

var (
	renameDryRun bool
	renameAt     string
)

var renameCmd = &cobra.Command{
	Use:   "rename <path> [fragment] --to <new-name>",
	Short: "Plan (and, with --dry-run=false, apply) a rename across the vault",
	Long: "Plan (and, with --dry-run=false, apply) a rename across the vault.\n" +
		"--dry-run defaults to true: only the edit plan is printed.\n" +
		"By default <path> [fragment] names the referenceable to rename directly.\n" +
		"With --at line:col, the rename instead starts from a cursor position: if\n" +
		"the cursor sits on a reference (e.g. a {ref}/{numref} role), the rename\n" +
		"looks through it to its resolved target first.",
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		newName, err := cmd.Flags().GetString("to")
		if err != nil {
			return err
		}
		if strings.TrimSpace(newName) == "" {
			return fmt.Errorf("--to is required")
		}

		path := args[0]

		idx, err := loadIndexer()
		if err != nil {
			return err
		}
		e := idx.Engine()

		var edit *query.WorkspaceEdit
		var ok bool
		if renameAt != "" {
			pos, perr := parseLineCol(renameAt)
			if perr != nil {
				return perr
			}
			edit, ok = e.RenameAtCursor(path, pos, newName)
			if !ok {
				return fmt.Errorf("cannot rename at %s:%s to %q", path, renameAt, newName)
			}
		} else {
			fragment := ""
			if len(args) == 2 {
				fragment = args[1]
			}
			target, found := lookupReferenceable(e.AllReferenceables(path), fragment)
			if !found {
				return fmt.Errorf("no referenceable found at %s#%s", path, fragment)
			}
			edit, ok = e.Rename(target, newName)
			if !ok {
				return fmt.Errorf("cannot rename %s#%s to %q", path, fragment, newName)
			}
		}

		if renameDryRun {
			printWorkspaceEditPlan(edit)
			return nil
		}
		return applyWorkspaceEdit(vaultRoot, edit)
	},
}

func printWorkspaceEditPlan(edit *query.WorkspaceEdit) {
	if edit.RenameFrom != "" {
		fmt.Printf("rename file: %s -> %s\n", edit.RenameFrom, edit.RenameTo)
	}
	paths := make([]string, 0, len(edit.Changes))
	for p := range edit.Changes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		for _, e := range edit.Changes[p] {
			fmt.Printf("%s\t%d:%d-%d:%d\t%q\n", p, e.Range.Start.Line, e.Range.Start.Character, e.Range.End.Line, e.Range.End.Character, e.NewText)
		}
	}
}

func init() {
	renameCmd.Flags().String("to", "", "destination name")
	renameCmd.Flags().BoolVar(&renameDryRun, "dry-run", true, "print the edit plan instead of writing files")
	renameCmd.Flags().StringVar(&renameAt, "at", "", "line:character cursor position, in place of [fragment]")
	rootCmd.AddCommand(renameCmd)
}

// applyWorkspaceEdit writes every file in edit.Changes with its edits
// applied, then performs the file rename (if any) last, so the rewritten
// content lands at the new path.
func applyWorkspaceEdit(root string, edit *query.WorkspaceEdit) error {
	for relPath, edits := range edit.Changes {
		abs := filepath.Join(root, filepath.FromSlash(relPath))
		raw, err := os.ReadFile(abs)
		if err != nil {
			return fmt.Errorf("read %s: %w", relPath, err)
		}
		updated := applyTextEdits(string(raw), edits)
		if err := os.WriteFile(abs, []byte(updated), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", relPath, err)
		}
	}

	if edit.RenameFrom != "" && edit.RenameFrom != edit.RenameTo {
		oldAbs := filepath.Join(root, filepath.FromSlash(edit.RenameFrom))
		newAbs := filepath.Join(root, filepath.FromSlash(edit.RenameTo))
		if err := os.MkdirAll(filepath.Dir(newAbs), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", edit.RenameTo, err)
		}
		if err := os.Rename(oldAbs, newAbs); err != nil {
			return fmt.Errorf("rename %s to %s: %w", edit.RenameFrom, edit.RenameTo, err)
		}
	}
	return nil
}

// applyTextEdits rewrites original with edits applied back-to-front (by
// descending byte offset) so earlier ranges stay valid as later ones are
// substituted. Every lsp.Range's Character field is a UTF-16 code-unit
// offset (the LSP position encoding), so ranges are converted through a rope
// built over the current content rather than indexed directly as bytes.
func applyTextEdits(original string, edits []lsp.TextEdit) string {
	r := rope.New(original)
	type byteEdit struct {
		start, end int
		newText    string
	}
	byteEdits := make([]byteEdit, 0, len(edits))
	for _, e := range edits {
		byteEdits = append(byteEdits, byteEdit{
			start:   r.PositionToOffset(e.Range.Start),
			end:     r.PositionToOffset(e.Range.End),
			newText: e.NewText,
		})
	}
	sort.Slice(byteEdits, func(i, j int) bool { return byteEdits[i].start > byteEdits[j].start })

	out := original
	for _, e := range byteEdits {
		if e.start < 0 || e.end > len(out) || e.start > e.end {
			continue
		}
		out = out[:e.start] + e.newText + out[e.end:]
	}
	return out
}
