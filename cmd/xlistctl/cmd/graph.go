package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the tree's internal node structure as a diagram",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprint(cmd.OutOrStdout(), treeFrom(cmd).WriteTree())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
