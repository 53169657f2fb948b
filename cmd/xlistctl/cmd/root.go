package cmd

import (
	"context"
	"os"
	"strings"

	"github.com/segmentio/ksuid"
	"github.com/spf13/cobra"

	"github.com/npillmayer/xlist"
)

type treeContextKey struct{}

var (
	seedItems  string
	seedRandom int
)

// rootCmd builds a fresh, in-memory, key-ordered xlist.Tree from --items
// and/or --random on every invocation and hands it to whichever subcommand
// runs, mirroring freyjadb's cmd/freyja/cmd/root.go PersistentPreRunE
// pattern of constructing a shared resource once and stashing it on the
// command's context. Unlike freyjadb's store, nothing here is persisted
// between runs: xlistctl is a demonstration and debugging tool for the
// tree's own operations, not a server with its own storage.
var rootCmd = &cobra.Command{
	Use:   "xlistctl",
	Short: "Drive an ordered xlist.Tree from the command line",
	Long: `xlistctl builds an in-memory, string-keyed xlist.Tree from --items
and/or --random, runs one operation against it, and prints the result.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		sizeOps := xlist.IntSizeOps[*stringItem](func(*stringItem) int { return 1 })
		keyOps := xlist.KeyOps[*stringItem, string]{
			Of:      func(i *stringItem) string { return i.key },
			Compare: strings.Compare,
		}
		tr := xlist.NewWithSizeAndKeys[*stringItem, int, string](sizeOps, keyOps)

		for _, k := range splitSeed(seedItems) {
			tr.Insert(&stringItem{key: k})
		}
		for n := 0; n < seedRandom; n++ {
			tr.Insert(&stringItem{key: ksuid.New().String()})
		}

		cmd.SetContext(context.WithValue(cmd.Context(), treeContextKey{}, tr))
		return nil
	},
}

// Execute adds all child commands to the root command and runs it. It is
// called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&seedItems, "items", "", "comma-separated keys to seed the list with")
	rootCmd.PersistentFlags().IntVar(&seedRandom, "random", 0, "seed the list with N KSUID-keyed items")
}

func splitSeed(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func treeFrom(cmd *cobra.Command) *xlist.Tree[*stringItem, int, string] {
	tr, _ := cmd.Context().Value(treeContextKey{}).(*xlist.Tree[*stringItem, int, string])
	return tr
}
