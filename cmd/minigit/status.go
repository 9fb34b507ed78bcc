package main

import (
	"fmt"
	"io"

	"github.com/Nivl/minigit"
	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/internal/errutil"
	"github.com/spf13/cobra"
)

func newStatusCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the differences between the index and HEAD",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return statusCmd(cmd, cfg)
	}
	return cmd
}

func statusCmd(cmd *cobra.Command, cfg *config) (err error) {
	r, err := loadRepository(cmd, cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	s, err := r.Status()
	if err != nil {
		return err
	}
	printStatus(cmd.OutOrStdout(), s)
	return nil
}

func printStatus(out io.Writer, s *git.Status) {
	if s.ActiveBranch == ginternals.Head {
		fmt.Fprintln(out, "HEAD detached")
	} else {
		fmt.Fprintf(out, "On branch %s\n", s.ActiveBranch)
	}

	if s.IsClean() {
		fmt.Fprintln(out, "nothing to commit")
		return
	}

	fmt.Fprintln(out, "Changes to be committed:")
	for _, p := range s.Added {
		fmt.Fprintf(out, "\tnew file:   %s\n", p)
	}
	for _, p := range s.Modified {
		fmt.Fprintf(out, "\tmodified:   %s\n", p)
	}
	for _, p := range s.Deleted {
		fmt.Fprintf(out, "\tdeleted:    %s\n", p)
	}
}
