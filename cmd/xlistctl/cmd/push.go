package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pushBack bool

var pushCmd = &cobra.Command{
	Use:   "push <key>",
	Short: "Push a new item onto the front or back of the list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tr := treeFrom(cmd)
		item := &stringItem{key: args[0]}
		if pushBack {
			tr.PushBack(item)
		} else {
			tr.PushFront(item)
		}
		fmt.Fprint(cmd.OutOrStdout(), tr.WriteTree())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().BoolVar(&pushBack, "back", false, "push onto the back instead of the front")
}
