package git

import (
	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/object"
	"golang.org/x/xerrors"
)

// TreeBuilder is used to build trees
type TreeBuilder struct {
	repo    *Repository
	entries map[string]object.TreeEntry
}

// NewTreeBuilder create a new empty tree builder
func (r *Repository) NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{
		repo:    r,
		entries: map[string]object.TreeEntry{},
	}
}

// NewTreeBuilderFromTree create a new tree builder containing the
// entries of another tree
func (r *Repository) NewTreeBuilderFromTree(t *object.Tree) *TreeBuilder {
	tb := r.NewTreeBuilder()
	for _, e := range t.Entries() {
		tb.entries[e.Path] = e
	}
	return tb
}

// Insert inserts a new object in a tree.
// The object must exist and match the mode, unless the mode is a
// gitlink (the commit belongs to another repository).
// The path must be a single valid path component
func (tb *TreeBuilder) Insert(path string, oid ginternals.Oid, mode object.TreeObjectMode) error {
	if !object.IsEntryPathValid(path) {
		return xerrors.Errorf("invalid path %q: %w", path, object.ErrTreeInvalid)
	}
	if !mode.IsValid() {
		return xerrors.Errorf("invalid mode %s: %w", mode, object.ErrTreeInvalid)
	}

	if mode != object.ModeGitLink {
		o, err := tb.repo.Object(oid)
		if err != nil {
			return xerrors.Errorf("cannot verify object: %w", err)
		}
		if o.Type() != mode.ObjectType() {
			return xerrors.Errorf("mode %s expects a %s, got a %s: %w", mode, mode.ObjectType(), o.Type(), object.ErrObjectInvalid)
		}
	}

	tb.entries[path] = object.TreeEntry{
		Mode: mode,
		Path: path,
		ID:   oid,
	}
	return nil
}

// Remove removes an object from tree
func (tb *TreeBuilder) Remove(path string) {
	delete(tb.entries, path)
}

// Write creates and persists a new Tree object
func (tb *TreeBuilder) Write() (*object.Tree, error) {
	entries := make([]object.TreeEntry, 0, len(tb.entries))
	for _, e := range tb.entries {
		entries = append(entries, e)
	}

	// NewTree takes care of sorting the entries
	t := object.NewTree(entries)
	if _, err := tb.repo.WriteObject(t.ToObject()); err != nil {
		return nil, xerrors.Errorf("could not write the object to the odb: %w", err)
	}
	return t, nil
}
