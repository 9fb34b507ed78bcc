package git

import (
	"path"
	"path/filepath"
	"sort"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/index"
	"github.com/Nivl/minigit/ginternals/object"
	"github.com/Nivl/minigit/internal/gitpath"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// Status represents the differences between the index and the
// commit targeted by HEAD
type Status struct {
	// ActiveBranch is the short name of the current branch, or HEAD
	// if the repository is detached
	ActiveBranch string
	// Added contains the paths that are in the index but not in the
	// commit, in index order
	Added []string
	// Modified contains the paths that have a different content in
	// the index and in the commit, in index order
	Modified []string
	// Deleted contains the paths that are in the commit but not in the
	// index, sorted
	Deleted []string
}

// IsClean returns whether the index matches the commit
func (s *Status) IsClean() bool {
	return len(s.Added) == 0 && len(s.Modified) == 0 && len(s.Deleted) == 0
}

// Index reads and returns the index of the repository
func (r *Repository) Index() (*index.Index, error) {
	return index.Read(r.fs, filepath.Join(r.dotGitPath, gitpath.IndexPath))
}

// Status compares the index with the tree of the commit targeted by
// HEAD.
// ErrNoHead is returned if HEAD doesn't point to a commit
func (r *Repository) Status() (*Status, error) {
	idx, err := r.Index()
	if err != nil {
		return nil, xerrors.Errorf("could not load the index: %w", err)
	}

	headID, err := r.Head()
	if err != nil {
		return nil, err
	}
	c, err := r.Commit(headID)
	if err != nil {
		return nil, xerrors.Errorf("HEAD (%s): %w", headID.String(), ErrNoHead)
	}
	committed, err := r.TreeToMap(c.TreeID())
	if err != nil {
		return nil, xerrors.Errorf("could not list the files of %s: %w", headID.String(), err)
	}

	branch, err := r.ActiveBranch()
	if err != nil {
		return nil, err
	}

	s := &Status{
		ActiveBranch: branch,
		Added:        []string{},
		Modified:     []string{},
	}
	deleted := make(map[string]struct{}, len(committed))
	for p := range committed {
		deleted[p] = struct{}{}
	}
	for _, e := range idx.Entries {
		id, ok := committed[e.Path]
		if !ok {
			s.Added = append(s.Added, e.Path)
			continue
		}
		if id != e.ID {
			s.Modified = append(s.Modified, e.Path)
		}
		delete(deleted, e.Path)
	}

	s.Deleted = make([]string, 0, len(deleted))
	for p := range deleted {
		s.Deleted = append(s.Deleted, p)
	}
	sort.Strings(s.Deleted)
	return s, nil
}

// TreeToMap returns all the blobs reachable from the given tree,
// indexed by their path relative to the tree.
// Gitlinks are ignored.
func (r *Repository) TreeToMap(treeID ginternals.Oid) (map[string]ginternals.Oid, error) {
	type pending struct {
		prefix string
		id     ginternals.Oid
	}

	out := map[string]ginternals.Oid{}
	queue := []pending{{id: treeID}}
	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		tree, err := r.Tree(current.id)
		if err != nil {
			return nil, xerrors.Errorf("could not get tree %s: %w", current.id.String(), err)
		}
		for _, e := range tree.Entries() {
			p := path.Join(current.prefix, e.Path)
			if e.Mode == object.ModeGitLink {
				continue
			}

			o, err := r.Object(e.ID)
			if err != nil {
				return nil, xerrors.Errorf("could not get object %s at %s: %w", e.ID.String(), p, err)
			}
			switch o.Type() {
			case object.TypeTree:
				queue = append(queue, pending{prefix: p, id: e.ID})
			case object.TypeBlob:
				out[p] = e.ID
			case object.TypeCommit, object.TypeTag:
				r.logger.Debug("skipping unexpected object in tree",
					zap.String("path", p),
					zap.Stringer("type", o.Type()))
			}
		}
	}
	return out, nil
}
