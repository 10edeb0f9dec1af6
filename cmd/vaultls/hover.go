package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var hoverCmd = &cobra.Command{
	Use:   "hover <path> <line> <character>",
	Short: "Print the hover-preview text for the referenceable under a position",
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

		target := e.ReferenceableAt(path, pos)
		preview := e.Preview(target)
		if preview == "" {
			fmt.Println("no preview available")
			return nil
		}
		fmt.Println(preview)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(hoverCmd)
}
