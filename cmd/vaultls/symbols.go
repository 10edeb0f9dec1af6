package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obsidian-lsp/vaultls/internal/model"
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <path>",
	Short: "List a file's document symbols",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndexer()
		if err != nil {
			return err
		}
		for _, s := range idx.Engine().Symbols(args[0]) {
			fmt.Printf("%d\t%s\t%s\t%s\n", s.Range.Start.Line, s.Kind, s.Name, s.Detail)
		}
		return nil
	},
}

var workspaceSymbolsCmd = &cobra.Command{
	Use:   "workspace-symbols <query>",
	Short: "Fuzzy-search every referenceable in the vault by display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndexer()
		if err != nil {
			return err
		}
		for _, r := range idx.Engine().WorkspaceSymbols(args[0]) {
			fmt.Printf("%s\t%s\n", r.OwnerPath(), model.DisplayName(r))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(workspaceSymbolsCmd)
}
