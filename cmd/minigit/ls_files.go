package main

import (
	"fmt"

	"github.com/Nivl/minigit/internal/errutil"
	"github.com/spf13/cobra"
)

func newLsFilesCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls-files",
		Short: "Show information about files in the index",
		Args:  cobra.NoArgs,
	}

	stage := cmd.Flags().BoolP("stage", "s", false, "Show staged contents' mode bits, object name and stage number in the output.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return lsFilesCmd(cmd, cfg, *stage)
	}
	return cmd
}

func lsFilesCmd(cmd *cobra.Command, cfg *config, stage bool) (err error) {
	r, err := loadRepository(cmd, cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	idx, err := r.Index()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, e := range idx.Entries {
		if stage {
			fmt.Fprintf(out, "%06o %s %d\t%s\n", int32(e.TreeMode()), e.ID.String(), e.Flags.Stage, e.Path)
			continue
		}
		fmt.Fprintln(out, e.Path)
	}
	return nil
}
