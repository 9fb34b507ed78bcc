package main

import (
	"github.com/Nivl/minigit/internal/errutil"
	"github.com/spf13/cobra"
)

func newUpdateRefCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-ref REF OBJECT",
		Short: "Update the object name stored in a ref",
		Args:  cobra.ExactArgs(2),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return updateRefCmd(cmd, cfg, args[0], args[1])
	}
	return cmd
}

func updateRefCmd(cmd *cobra.Command, cfg *config, name, target string) (err error) {
	r, err := loadRepository(cmd, cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	oid, err := resolveName(r, target)
	if err != nil {
		return err
	}
	return r.CreateRef(name, oid)
}
