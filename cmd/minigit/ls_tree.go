package main

import (
	"github.com/Nivl/minigit/internal/errutil"
	"github.com/spf13/cobra"
)

func newLsTreeCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-tree TREE-ISH",
		Short: "List the contents of a tree object",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsTreeCmd(cmd, cfg, args[0])
	}
	return cmd
}

func lsTreeCmd(cmd *cobra.Command, cfg *config, name string) (err error) {
	r, err := loadRepository(cmd, cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	tree, err := resolveTree(r, name)
	if err != nil {
		return err
	}
	printTreeEntries(cmd.OutOrStdout(), tree.Entries())
	return nil
}
