package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeusync/btree/internal/app"
	"github.com/zeusync/btree/internal/core/bt"
	"github.com/zeusync/btree/internal/core/btconfig"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Build a tree definition and print its outline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadConfig(cmd); err != nil {
				return err
			}
			tree, err := btconfig.NewLoader(app.ProvideRegistry(), nil).LoadFile(args[0])
			if err != nil {
				return err
			}
			printOutline(cmd.OutOrStdout(), tree)
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d nodes\n", tree.Size())
			return nil
		},
	}
}

func printOutline(w io.Writer, tree *bt.Tree) {
	tree.Walk(func(n bt.Node, depth int) bool {
		fmt.Fprintf(w, "%s%s %q\n", strings.Repeat("  ", depth), bt.Kind(n), n.Name())
		return true
	})
}
