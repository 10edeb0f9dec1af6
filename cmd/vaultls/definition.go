package main

import (
	"fmt"
	"strconv"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/spf13/cobra"

	"github.com/obsidian-lsp/vaultls/internal/model"
)

var definitionCmd = &cobra.Command{
	Use:   "definition <path> <line> <character>",
	Short: "Resolve the reference under a position to its target(s)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, pos, err := parsePathPosition(args)
		if err != nil {
			return err
		}

		idx, err := loadIndexer()
		if err != nil {
			return err
		}
		e := idx.Engine()

		ref, ok := e.ReferenceAt(path, pos)
		if !ok {
			fmt.Println("no reference at that position")
			return nil
		}
		targets := e.TargetsOf(ref, path)
		if len(targets) == 0 {
			fmt.Printf("%q is unresolved\n", ref.Data().Text)
			return nil
		}
		for _, t := range targets {
			fmt.Printf("%s\t%s\n", t.OwnerPath(), model.DisplayName(t))
		}
		return nil
	},
}

func parsePathPosition(args []string) (string, lsp.Position, error) {
	path := args[0]
	line, err := strconv.Atoi(args[1])
	if err != nil {
		return "", lsp.Position{}, fmt.Errorf("invalid line %q: %w", args[1], err)
	}
	character, err := strconv.Atoi(args[2])
	if err != nil {
		return "", lsp.Position{}, fmt.Errorf("invalid character %q: %w", args[2], err)
	}
	return path, lsp.Position{Line: line, Character: character}, nil
}

func init() {
	rootCmd.AddCommand(definitionCmd)
}
