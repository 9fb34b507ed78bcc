package git

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Nivl/minigit/ginternals/object"
	"github.com/Nivl/minigit/internal/gitpath"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// TreeCheckout writes the content of a tree in the working tree.
// The working tree must be empty (the .git directory is allowed),
// ErrWorkTreeNotEmpty is returned otherwise.
// Subtrees become directories and blobs become files. Any other
// kind of object is skipped.
// Entries with a path that would be written outside of the working
// tree, or inside the .git directory, fail with object.ErrTreeInvalid
func (r *Repository) TreeCheckout(tree *object.Tree) error {
	infos, err := afero.ReadDir(r.fs, r.workTree)
	if err != nil {
		return xerrors.Errorf("could not read the working tree: %w", err)
	}
	for _, info := range infos {
		if info.Name() != gitpath.DotGitPath {
			return xerrors.Errorf("%s: %w", r.workTree, ErrWorkTreeNotEmpty)
		}
	}

	type pending struct {
		dir  string
		tree *object.Tree
	}
	queue := []pending{{dir: r.workTree, tree: tree}}
	for len(queue) > 0 {
		current := queue[len(queue)-1]
		queue = queue[:len(queue)-1]

		for _, e := range current.tree.Entries() {
			if !object.IsEntryPathValid(e.Path) {
				return xerrors.Errorf("invalid path %q in tree %s: %w", e.Path, current.tree.ID().String(), object.ErrTreeInvalid)
			}
			p := filepath.Join(current.dir, e.Path)
			if !r.isInWorkTree(p) {
				return xerrors.Errorf("%s is outside the working tree: %w", p, object.ErrTreeInvalid)
			}
			if e.Mode == object.ModeGitLink {
				continue
			}

			o, err := r.Object(e.ID)
			if err != nil {
				return xerrors.Errorf("could not get object %s: %w", e.ID.String(), err)
			}
			switch o.Type() {
			case object.TypeTree:
				subtree, err := o.AsTree()
				if err != nil {
					return xerrors.Errorf("could not parse tree %s: %w", e.ID.String(), err)
				}
				if err = r.fs.Mkdir(p, 0o755); err != nil {
					return xerrors.Errorf("could not create directory %s: %w", p, err)
				}
				queue = append(queue, pending{dir: p, tree: subtree})
			case object.TypeBlob:
				perm := os.FileMode(0o644)
				if e.Mode == object.ModeExecutable {
					perm = 0o755
				}
				if err = afero.WriteFile(r.fs, p, o.Bytes(), perm); err != nil {
					return xerrors.Errorf("could not write %s: %w", p, err)
				}
			case object.TypeCommit, object.TypeTag:
				r.logger.Debug("skipping unexpected object in tree",
					zap.String("path", p),
					zap.Stringer("type", o.Type()))
			}
		}
	}
	return nil
}

// isInWorkTree returns whether p is a path inside the working tree,
// and outside the .git directory
func (r *Repository) isInWorkTree(p string) bool {
	rel, err := filepath.Rel(r.workTree, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	return !strings.EqualFold(first, gitpath.DotGitPath)
}
