package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/internal/gitpath"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// refLockTimeout is the maximum amount of time we wait to acquire the
// lock on the refs
const refLockTimeout = 5 * time.Second

// refPath returns the absolute path of a ref from its name.
// Ex.: On windows refs/heads/master would return <root>\refs\heads\master
func (b *Backend) refPath(name string) string {
	return filepath.Join(b.root, gitpath.SystemPath(name))
}

// RawReference returns the raw content of a reference, without
// resolving it.
// ErrRefNotFound is returned if the reference doesn't exists
func (b *Backend) RawReference(name string) ([]byte, error) {
	b.refMu.RLock(name)
	defer b.refMu.RUnlock(name)

	return b.readRef(name)
}

func (b *Backend) readRef(name string) ([]byte, error) {
	data, err := afero.ReadFile(b.fs, b.refPath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, xerrors.Errorf(`ref "%s": %w`, name, ginternals.ErrRefNotFound)
		}
		return nil, xerrors.Errorf(`could not read ref "%s": %w`, name, err)
	}
	return data, nil
}

// Reference returns a stored reference from its name, following
// the symbolic references.
// ErrRefNotFound is returned if the reference (or one of its targets)
// doesn't exists.
// ErrRefDepthExceeded is returned if too many symbolic references
// had to be followed.
// This method can be called concurrently
func (b *Backend) Reference(name string) (*ginternals.Reference, error) {
	finder := func(name string) ([]byte, error) {
		b.refMu.RLock(name)
		defer b.refMu.RUnlock(name)
		return b.readRef(name)
	}
	return ginternals.ResolveReference(name, finder)
}

// HasReference returns whether a reference file exists
func (b *Backend) HasReference(name string) (bool, error) {
	_, err := b.RawReference(name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ginternals.ErrRefNotFound):
		return false, nil
	default:
		return false, err
	}
}

// WriteReference writes the given reference on disk. If the
// reference already exists it will be overwritten
func (b *Backend) WriteReference(ref *ginternals.Reference) error {
	return b.writeReference(ref, false)
}

// WriteReferenceSafe writes the given reference on disk.
// ErrRefExists is returned if the reference already exists
func (b *Backend) WriteReferenceSafe(ref *ginternals.Reference) error {
	return b.writeReference(ref, true)
}

func (b *Backend) writeReference(ref *ginternals.Reference, safe bool) (err error) {
	if !ginternals.IsRefNameValid(ref.Name()) {
		return xerrors.Errorf(`ref "%s": %w`, ref.Name(), ginternals.ErrRefNameInvalid)
	}

	var target string
	switch ref.Type() {
	case ginternals.SymbolicReference:
		target = fmt.Sprintf("%s%s\n", ginternals.SymbolicRefPrefix, ref.SymbolicTarget())
	case ginternals.OidReference:
		target = fmt.Sprintf("%s\n", ref.Target().String())
	default:
		return xerrors.Errorf("reference type %d: %w", ref.Type(), ginternals.ErrRefInvalid)
	}

	b.refMu.Lock(ref.Name())
	defer b.refMu.Unlock(ref.Name())

	unlock, err := b.lockRefs()
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, unlock())
	}()

	refPath := b.refPath(ref.Name())
	if safe {
		_, e := b.fs.Stat(refPath)
		if e == nil {
			return xerrors.Errorf(`ref "%s": %w`, ref.Name(), ginternals.ErrRefExists)
		}
		if !errors.Is(e, os.ErrNotExist) {
			return xerrors.Errorf(`could not check ref "%s": %w`, ref.Name(), e)
		}
	}

	// Since we can have `/` in the ref name, we need to create
	// the path on the FS
	if err = b.fs.MkdirAll(filepath.Dir(refPath), 0o755); err != nil {
		return xerrors.Errorf("could not persist reference to disk: %w", err)
	}
	if err = afero.WriteFile(b.fs, refPath, []byte(target), 0o644); err != nil {
		return xerrors.Errorf("could not persist reference to disk: %w", err)
	}

	b.logger.Debug("reference written",
		zap.String("name", ref.Name()),
		zap.String("content", target[:len(target)-1]))
	return nil
}

// lockRefs prevents other processes from writing references.
// Locking only happens when working on the OS filesystem, other
// filesystems are private to the process.
func (b *Backend) lockRefs() (unlock func() error, err error) {
	if _, ok := b.fs.(*afero.OsFs); !ok {
		return func() error { return nil }, nil
	}

	lockPath := filepath.Join(b.root, gitpath.RefsLockPath)
	if err = os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, xerrors.Errorf("could not create %s: %w", filepath.Dir(lockPath), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), refLockTimeout)
	defer cancel()

	lock := flock.New(lockPath)
	locked, err := lock.TryLockContext(ctx, 10*time.Millisecond)
	if err != nil {
		return nil, xerrors.Errorf("could not get file lock %q: %w", lockPath, err)
	}
	if !locked {
		return nil, xerrors.Errorf("could not lock %q", lockPath)
	}
	return lock.Unlock, nil
}
