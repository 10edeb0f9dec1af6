// Package main wires the indexer, query engine, diagnostics, and MCP
// packages behind a cobra CLI: one persistent --vault flag every
// subcommand shares, a thin Execute() entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	vaultRoot string
	cachePath string
	debug     bool
)

var rootCmd = &cobra.Command{
	Use:     "vaultls",
	Short:   "vaultls - language-server backend for a MyST/CommonMark vault",
	Version: "v0.1.0",
	Long:    "vaultls indexes a vault of MyST/CommonMark documents and answers definition, backref, symbol, rename, and diagnostic queries against it.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "vaultls: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&vaultRoot, "vault", "v", ".", "path to the vault root")
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", "", "path to a persisted extraction cache (disabled if empty)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func main() {
	Execute()
}
