package git

import (
	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/object"
	"github.com/Nivl/minigit/internal/gitpath"
	"golang.org/x/xerrors"
)

// CreateRef creates or updates a reference targeting the given ID.
// tags/v1 and refs/tags/v1 are both valid names.
func (r *Repository) CreateRef(name string, target ginternals.Oid) error {
	ref := ginternals.NewReference(ginternals.NormalizeRefName(name), target)
	if err := r.dotGit.WriteReference(ref); err != nil {
		return xerrors.Errorf("could not create ref %s: %w", name, err)
	}
	return nil
}

// CreateSymbolicRef creates or updates a reference targeting another
// reference
func (r *Repository) CreateSymbolicRef(name, target string) error {
	ref := ginternals.NewSymbolicReference(ginternals.NormalizeRefName(name), ginternals.NormalizeRefName(target))
	if err := r.dotGit.WriteReference(ref); err != nil {
		return xerrors.Errorf("could not create ref %s: %w", name, err)
	}
	return nil
}

// CreateLightweightTag creates a tag reference targeting the given
// object. ginternals.ErrRefExists is returned if the tag already
// exists
func (r *Repository) CreateLightweightTag(name string, target ginternals.Oid) error {
	ref := ginternals.NewReference(gitpath.LocalTagFullName(name), target)
	if err := r.dotGit.WriteReferenceSafe(ref); err != nil {
		return xerrors.Errorf("could not create tag %s: %w", name, err)
	}
	return nil
}

// CreateTag persists the given tag object, and creates a reference
// in refs/tags/ targeting it.
// ginternals.ErrRefExists is returned if the tag already exists, in
// which case the tag object is not written
func (r *Repository) CreateTag(tag *object.Tag) error {
	exists, err := r.dotGit.HasReference(gitpath.LocalTagFullName(tag.Name()))
	if err != nil {
		return xerrors.Errorf("could not check tag %s: %w", tag.Name(), err)
	}
	if exists {
		return xerrors.Errorf("tag %s: %w", tag.Name(), ginternals.ErrRefExists)
	}

	oid, err := r.dotGit.WriteObject(tag.ToObject())
	if err != nil {
		return xerrors.Errorf("could not write tag object: %w", err)
	}
	return r.CreateLightweightTag(tag.Name(), oid)
}
