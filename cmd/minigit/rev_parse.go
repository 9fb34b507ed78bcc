package main

import (
	"fmt"

	"github.com/Nivl/minigit/internal/errutil"
	"github.com/spf13/cobra"
)

func newRevParseCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rev-parse NAME...",
		Short: "Print the object IDs matching the given names",
		Args:  cobra.MinimumNArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return revParseCmd(cmd, cfg, args)
	}
	return cmd
}

func revParseCmd(cmd *cobra.Command, cfg *config, names []string) (err error) {
	r, err := loadRepository(cmd, cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	for _, name := range names {
		oid, err := resolveName(r, name)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), oid.String())
	}
	return nil
}
