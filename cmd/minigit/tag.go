package main

import (
	"errors"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/object"
	"github.com/Nivl/minigit/internal/errutil"
	"github.com/spf13/cobra"
)

func newTagCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag NAME [OBJECT]",
		Short: "Create a tag targeting an object (HEAD by default)",
		Args:  cobra.RangeArgs(1, 2),
	}

	annotate := cmd.Flags().BoolP("annotate", "a", false, "Make an unsigned, annotated tag object")
	message := cmd.Flags().StringP("message", "m", "", "Use the given tag message (implies -a)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p := tagParams{
			name:     args[0],
			target:   ginternals.Head,
			annotate: *annotate || *message != "",
			message:  *message,
		}
		if len(args) == 2 {
			p.target = args[1]
		}
		return tagCmd(cmd, cfg, p)
	}
	return cmd
}

type tagParams struct {
	name     string
	target   string
	annotate bool
	message  string
}

func tagCmd(cmd *cobra.Command, cfg *config, p tagParams) (err error) {
	if p.annotate && p.message == "" {
		return errors.New("a message is required for annotated tags")
	}

	r, err := loadRepository(cmd, cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	oid, err := resolveName(r, p.target)
	if err != nil {
		return err
	}

	if !p.annotate {
		return r.CreateLightweightTag(p.name, oid)
	}

	target, err := r.Object(oid)
	if err != nil {
		return err
	}
	tag := object.NewTag(&object.TagParams{
		Target:  target,
		Name:    p.name,
		Tagger:  object.NewSignature(cfg.v.GetString(keyAuthorName), cfg.v.GetString(keyAuthorEmail)),
		Message: p.message + "\n",
	})
	return r.CreateTag(tag)
}
