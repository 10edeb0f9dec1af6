package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Crawl the vault once and report document counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndexer()
		if err != nil {
			return err
		}
		e := idx.Engine()
		fmt.Printf("indexed %d document(s) from %s\n", len(e.Vault.Docs), vaultRoot)
		fmt.Printf("%d edge(s)\n", len(e.Vault.Edges))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
