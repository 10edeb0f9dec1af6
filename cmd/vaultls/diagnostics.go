package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/obsidian-lsp/vaultls/internal/diagnostics"
)

var diagnosticsCmd = &cobra.Command{
	Use:   "diagnostics <path>",
	Short: "Print diagnostics for a file: parse errors, schema warnings, unresolved references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		idx, err := loadIndexer()
		if err != nil {
			return err
		}
		e := idx.Engine()
		doc, ok := e.Vault.Docs[path]
		if !ok {
			return fmt.Errorf("no such file indexed: %s", path)
		}

		diags := diagnostics.ForFile(path, doc, e, idx.Config.UnresolvedDiagnostics)
		if len(diags) == 0 {
			fmt.Println("no diagnostics")
			return nil
		}
		for _, d := range diags {
			fmt.Printf("%d:%d\t%s\t%s\n", d.Range.Start.Line, d.Range.Start.Character, severityLabel(d.Severity), d.Message)
		}
		return nil
	},
}

func severityLabel(s diagnostics.Severity) string {
	switch s {
	case diagnostics.SeverityError:
		return "error"
	case diagnostics.SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

func init() {
	rootCmd.AddCommand(diagnosticsCmd)
}
