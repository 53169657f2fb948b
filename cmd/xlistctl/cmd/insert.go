package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var insertCmd = &cobra.Command{
	Use:   "insert <key>",
	Short: "Insert a key in sorted order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr := treeFrom(cmd)
		if !tr.Insert(&stringItem{key: args[0]}) {
			fmt.Fprintf(cmd.OutOrStdout(), "key %q already present, not inserted\n", args[0])
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), tr.WriteTree())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insertCmd)
}
