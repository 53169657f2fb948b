package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove the item with the given key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr := treeFrom(cmd)
		item, ok := tr.Find(args[0])
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "key %q not found\n", args[0])
			return nil
		}
		tr.Remove(item)
		fmt.Fprint(cmd.OutOrStdout(), tr.WriteTree())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
