package main

import (
	"github.com/Nivl/minigit/internal/errutil"
	"github.com/spf13/cobra"
)

func newCheckoutCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkout TREE-ISH",
		Short: "Write the content of a tree in an empty working tree",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return checkoutCmd(cmd, cfg, args[0])
	}
	return cmd
}

func checkoutCmd(cmd *cobra.Command, cfg *config, name string) (err error) {
	r, err := loadRepository(cmd, cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	tree, err := resolveTree(r, name)
	if err != nil {
		return err
	}
	return r.TreeCheckout(tree)
}
