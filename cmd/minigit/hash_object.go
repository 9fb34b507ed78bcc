package main

import (
	"fmt"
	"os"

	"github.com/Nivl/minigit"
	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/object"
	"github.com/Nivl/minigit/internal/errutil"
	"github.com/Nivl/minigit/internal/pathutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

func newHashObjectCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash-object FILE",
		Short: "Compute object ID and optionally creates a blob from a file",
		Args:  cobra.ExactArgs(1),
	}

	typ := cmd.Flags().StringP("type", "t", object.TypeBlob.String(), "Specify the type")
	write := cmd.Flags().BoolP("write", "w", false, "Actually write the object into the object database.")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		p, err := pathutil.FilePath(cfg.path(cmd), args[0])
		if err != nil {
			return err
		}
		return hashObjectCmd(cmd, cfg, hashObjectParams{
			filePath: p,
			typ:      *typ,
			write:    *write,
		})
	}

	return cmd
}

type hashObjectParams struct {
	filePath string
	typ      string
	write    bool
}

func hashObjectCmd(cmd *cobra.Command, cfg *config, p hashObjectParams) (err error) {
	typ, err := object.NewTypeFromString(p.typ)
	if err != nil {
		return xerrors.Errorf("%s: %w", p.typ, err)
	}

	if !p.write {
		oid, err := computeID(p.filePath, typ)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), oid.String())
		return nil
	}

	r, err := loadRepository(cmd, cfg)
	if err != nil {
		return err
	}
	defer errutil.Close(r, &err)

	oid, err := r.HashObject(p.filePath, typ)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), oid.String())
	return nil
}

// computeID returns the ID the file would have once stored in the odb.
// The same types as Repository.HashObject are supported
func computeID(filePath string, typ object.Type) (ginternals.Oid, error) {
	if typ != object.TypeBlob {
		return ginternals.NullOid, xerrors.Errorf("hash %s from a file: %w", typ, git.ErrNotImplemented)
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not read %s: %w", filePath, err)
	}
	return object.NewBlob(content).ToObject().ID(), nil
}
