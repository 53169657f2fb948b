package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// locateCmd exercises Tree.Locate's three-state maybe.Result: an exact
// match, a predecessor short of where key would sort, or neither.
var locateCmd = &cobra.Command{
	Use:   "locate <key>",
	Short: "Report whether key is present, or its nearest predecessor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr := treeFrom(cmd)
		var v *stringItem
		switch m := tr.Locate(args[0]).Match(); m {
		case m.Found(&v):
			fmt.Fprintf(cmd.OutOrStdout(), "found %q\n", v.key)
		case m.Predecessor(&v):
			fmt.Fprintf(cmd.OutOrStdout(), "not found; nearest predecessor is %q\n", v.key)
		case m.None():
			fmt.Fprintln(cmd.OutOrStdout(), "not found; list is empty or key sorts before everything in it")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(locateCmd)
}
