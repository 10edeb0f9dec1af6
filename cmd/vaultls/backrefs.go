package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backrefsCmd = &cobra.Command{
	Use:   "backrefs <path> [fragment]",
	Short: "List every reference resolving to a referenceable",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		fragment := ""
		if len(args) == 2 {
			fragment = args[1]
		}

		idx, err := loadIndexer()
		if err != nil {
			return err
		}
		e := idx.Engine()

		target, ok := lookupReferenceable(e.AllReferenceables(path), fragment)
		if !ok {
			return fmt.Errorf("no referenceable found at %s#%s", path, fragment)
		}

		backs := e.Backrefs(target)
		if len(backs) == 0 {
			fmt.Println("no backreferences")
			return nil
		}
		for _, b := range backs {
			fmt.Printf("%s\t%s\n", b.Path, b.Ref.Data().Text)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backrefsCmd)
}
