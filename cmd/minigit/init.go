package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/Nivl/minigit"
	"github.com/spf13/cobra"
)

func newInitCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [DIRECTORY]",
		Short: "Create an empty git repository",
		Args:  cobra.MaximumNArgs(1),
	}

	branch := cmd.Flags().StringP("initial-branch", "b", "", "Use the specified name for the initial branch in the newly created repository.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p := cfg.path(cmd)
		if len(args) == 1 {
			p = args[0]
			if !filepath.IsAbs(p) {
				p = filepath.Join(cfg.path(cmd), p)
			}
		}
		return initCmd(cmd.OutOrStdout(), cfg, p, *branch)
	}

	return cmd
}

func initCmd(out io.Writer, cfg *config, path, branch string) error {
	r, err := git.InitRepositoryWithOptions(path, git.InitOptions{
		InitialBranch: branch,
		Logger:        cfg.logger,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Initialized empty Git repository in %s\n", r.DotGitPath())
	return r.Close()
}
