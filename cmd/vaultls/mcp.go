package main

import (
	"log"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/obsidian-lsp/vaultls/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server exposing the vault's query surface over stdio",
	Long: `Run a Model Context Protocol (MCP) server exposing vaultls's query surface as tools.
The server communicates over stdin/stdout and can be used with MCP clients like Claude Desktop, Cursor, or VS Code.

Tools exposed:
- backrefs: every reference resolving to a referenceable
- unresolved: references in a file that resolve to nothing
- symbols: a file's document symbols
- workspace_symbols: fuzzy search over every referenceable in the vault
- preview: hover-preview text for a referenceable`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			log.SetOutput(os.Stderr)
		}

		idx, err := loadIndexer()
		if err != nil {
			return err
		}

		s := mcpserver.New(idx)
		if debug {
			log.Printf("starting MCP server for vault at %s", vaultRoot)
		}
		return server.ServeStdio(s)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
