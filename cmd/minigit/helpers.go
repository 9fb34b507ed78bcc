package main

import (
	"errors"

	"github.com/Nivl/minigit"
	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/object"
	"github.com/Nivl/minigit/internal/gitpath"
	"github.com/Nivl/minigit/internal/pathutil"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
)

var errInvalidName = errors.New("not a valid object name")

func loadRepository(cmd *cobra.Command, cfg *config) (*git.Repository, error) {
	root, err := pathutil.WorkingTreeFromPath(cfg.path(cmd), gitpath.DotGitPath)
	if err != nil {
		return nil, err
	}
	return git.OpenRepositoryWithOptions(root, git.OpenOptions{
		Logger: cfg.logger,
	})
}

// resolveName returns the ID of the object matching the given name.
// The name is first treated as an ID (or HEAD), then as a reference
func resolveName(r *git.Repository, name string) (ginternals.Oid, error) {
	res, err := r.ObjectFind(name)
	if err != nil {
		return ginternals.NullOid, err
	}
	switch res.Status {
	case git.Found:
		return res.ID, nil
	case git.TooManyResults, git.PointsToDeletedRef:
		return ginternals.NullOid, xerrors.Errorf("%s (%s): %w", name, res.Status, errInvalidName)
	case git.NoResult, git.NotARef:
	}

	toTry := []string{
		// catches refs/heads/master or heads/master
		name,
		// catches local branch names
		gitpath.LocalBranchFullName(name),
		// catches local tag names
		gitpath.LocalTagFullName(name),
	}
	for _, refName := range toTry {
		oid, err := r.ResolveRef(refName)
		if err == nil {
			return oid, nil
		}
		// if the ref doesn't exist we test the the next one
		if !errors.Is(err, ginternals.ErrRefNotFound) && !errors.Is(err, ginternals.ErrRefNameInvalid) {
			return ginternals.NullOid, xerrors.Errorf("could not check if ref %s exists: %w", refName, err)
		}
	}
	return ginternals.NullOid, xerrors.Errorf("%s: %w", name, errInvalidName)
}

// resolveTree returns the tree matching the given name. Commits are
// peeled to their tree, and tags to their target
func resolveTree(r *git.Repository, name string) (*object.Tree, error) {
	oid, err := resolveName(r, name)
	if err != nil {
		return nil, err
	}
	// a tag can target another tag, we don't want to loop forever
	for i := 0; i < ginternals.MaxRefDepth; i++ {
		o, err := r.Object(oid)
		if err != nil {
			return nil, err
		}
		switch o.Type() {
		case object.TypeTree:
			return o.AsTree()
		case object.TypeCommit:
			c, err := o.AsCommit()
			if err != nil {
				return nil, err
			}
			oid = c.TreeID()
		case object.TypeTag:
			tag, err := o.AsTag()
			if err != nil {
				return nil, err
			}
			oid = tag.Target()
		case object.TypeBlob:
			return nil, xerrors.Errorf("%s is a blob: %w", name, object.ErrObjectInvalid)
		}
	}
	return nil, xerrors.Errorf("%s: %w", name, ginternals.ErrRefDepthExceeded)
}
