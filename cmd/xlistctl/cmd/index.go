package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index <position>",
	Short: "Get the item at a zero-based position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid position %q: %w", args[0], err)
		}
		item, ok := treeFrom(cmd).GetByIndex(pos)
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "no item at position %d\n", pos)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), item.key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
