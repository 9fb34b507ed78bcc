package backend

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/object"
	"github.com/Nivl/minigit/internal/errutil"
	"github.com/Nivl/minigit/internal/gitpath"
	"github.com/Nivl/minigit/internal/readutil"
	"github.com/klauspost/compress/zlib"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/xerrors"
)

// looseObjectPath returns the absolute path of a loose object
func (b *Backend) looseObjectPath(oid ginternals.Oid) string {
	return filepath.Join(b.root, gitpath.LooseObjectPath(oid.String()))
}

// Object returns the object that has given oid.
// ginternals.ErrObjectNotFound is returned if the object doesn't exist,
// ginternals.ErrObjectCorrupted is returned if the object cannot be
// parsed.
// This method can be called concurrently
func (b *Backend) Object(oid ginternals.Oid) (*object.Object, error) {
	key := oid.String()
	b.objectMu.RLock(key)
	defer b.objectMu.RUnlock(key)

	if cachedO, found := b.cache.Get(oid); found {
		if o, valid := cachedO.(*object.Object); valid {
			return o, nil
		}
	}

	o, err := b.looseObject(oid)
	if err != nil {
		return nil, err
	}
	b.cache.Add(oid, o)
	return o, nil
}

// looseObject returns the object matching the given OID
// The format of an object is an ascii encoded type, an ascii encoded
// space, then an ascii encoded length of the object, then a null
// character, then the body of the object
func (b *Backend) looseObject(oid ginternals.Oid) (o *object.Object, err error) {
	strOid := oid.String()
	p := b.looseObjectPath(oid)
	f, err := b.fs.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, xerrors.Errorf("object %s: %w", strOid, ginternals.ErrObjectNotFound)
		}
		return nil, xerrors.Errorf("could not get object %s at path %s: %w", strOid, p, err)
	}
	defer errutil.Close(f, &err)

	// Objects are zlib encoded
	zlibReader, err := zlib.NewReader(f)
	if err != nil {
		return nil, xerrors.Errorf("could not decompress object %s at path %s (%s): %w", strOid, p, err.Error(), ginternals.ErrObjectCorrupted)
	}
	defer errutil.Close(zlibReader, &err)

	// We directly read the entire file since most of it is the content we
	// need, this allows us to be able to easily store the object's content
	buff, err := io.ReadAll(zlibReader)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s at path %s (%s): %w", strOid, p, err.Error(), ginternals.ErrObjectCorrupted)
	}

	o, err = parseLooseObject(buff)
	if err != nil {
		return nil, xerrors.Errorf("invalid object %s at path %s: %w", strOid, p, err)
	}
	return o, nil
}

// parseLooseObject parses the decompressed content of a loose object
func parseLooseObject(buff []byte) (*object.Object, error) {
	// the type of the object starts at offset 0 and ends a the first
	// space character
	typ := readutil.ReadTo(buff, ' ')
	if typ == nil {
		return nil, xerrors.Errorf("could not find object type: %w", ginternals.ErrObjectCorrupted)
	}
	oType, err := object.NewTypeFromString(string(typ))
	if err != nil {
		return nil, xerrors.Errorf("unsupported type %q: %w", string(typ), ginternals.ErrObjectCorrupted)
	}
	pointerPos := len(typ) + 1 // +1 for the space

	// The size of the object starts after the space and ends at a NULL char
	size := readutil.ReadTo(buff[pointerPos:], 0)
	if size == nil {
		return nil, xerrors.Errorf("could not find object size: %w", ginternals.ErrObjectCorrupted)
	}
	oSize, err := strconv.Atoi(string(size))
	if err != nil || oSize < 0 {
		return nil, xerrors.Errorf("invalid size %q: %w", size, ginternals.ErrObjectCorrupted)
	}
	pointerPos += len(size) + 1 // +1 for the NULL char
	oContent := buff[pointerPos:]

	if len(oContent) != oSize {
		return nil, xerrors.Errorf("object marked as size %d, but has %d: %w", oSize, len(oContent), ginternals.ErrObjectCorrupted)
	}
	return object.New(oType, oContent), nil
}

// HasObject returns whether an object exists in the odb
// This method can be called concurrently
func (b *Backend) HasObject(oid ginternals.Oid) (bool, error) {
	key := oid.String()
	b.objectMu.RLock(key)
	defer b.objectMu.RUnlock(key)

	return b.hasObjectUnsafe(oid)
}

// hasObjectUnsafe checks the presence of the object on disk. An object
// that has been removed from the disk is also removed from the cache
func (b *Backend) hasObjectUnsafe(oid ginternals.Oid) (bool, error) {
	_, err := b.fs.Stat(b.looseObjectPath(oid))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		b.cache.Remove(oid)
		return false, nil
	}
	return false, xerrors.Errorf("could not check object %s: %w", oid.String(), err)
}

// WriteObject adds an object to the odb and returns its ID.
// Nothing is written if the object already exists.
// This method can be called concurrently
func (b *Backend) WriteObject(o *object.Object) (ginternals.Oid, error) {
	oid := o.ID()
	key := oid.String()
	b.objectMu.Lock(key)
	defer b.objectMu.Unlock(key)

	found, err := b.hasObjectUnsafe(oid)
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not check if object (%s) already exists: %w", key, err)
	}
	if found {
		return oid, nil
	}

	data, err := o.Compress()
	if err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not compress object: %w", err)
	}

	p := b.looseObjectPath(oid)
	if err = b.writeFileAtomic(p, data, 0o444); err != nil {
		return ginternals.NullOid, xerrors.Errorf("could not persist object %s: %w", key, err)
	}

	b.cache.Add(oid, o)
	b.logger.Debug("object written",
		zap.String("id", key),
		zap.Stringer("type", o.Type()),
		zap.Int("size", o.Size()))
	return oid, nil
}

// writeFileAtomic writes the data to a temporary file that is then
// moved to the given path, so a reader can never see a partially
// written file. The parent directories are created if needed.
func (b *Backend) writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dest := filepath.Dir(path)
	if err = b.fs.MkdirAll(dest, 0o755); err != nil {
		return xerrors.Errorf("could not create the destination directory %s: %w", dest, err)
	}

	tmp, err := afero.TempFile(b.fs, dest, "tmp_obj_")
	if err != nil {
		return xerrors.Errorf("could not create temporary file in %s: %w", dest, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			b.fs.Remove(tmpPath) //nolint:errcheck // best effort cleanup
		}
	}()

	if _, err = io.Copy(tmp, bytes.NewReader(data)); err != nil {
		errutil.Close(tmp, &err)
		return xerrors.Errorf("could not write temporary file %s: %w", tmpPath, err)
	}
	if err = tmp.Close(); err != nil {
		return xerrors.Errorf("could not close temporary file %s: %w", tmpPath, err)
	}
	if err = b.fs.Chmod(tmpPath, perm); err != nil {
		return xerrors.Errorf("could not set permissions on %s: %w", tmpPath, err)
	}
	if err = b.fs.Rename(tmpPath, path); err != nil {
		return xerrors.Errorf("could not move %s to %s: %w", tmpPath, path, err)
	}
	return nil
}

// LooseObjectPrefix returns the IDs of all the loose objects starting
// by the given hex prefix. The prefix must contain at least 2 chars.
// Files that are not objects are ignored.
func (b *Backend) LooseObjectPrefix(prefix string) ([]ginternals.Oid, error) {
	prefix = strings.ToLower(prefix)
	if len(prefix) < 2 || !ginternals.IsHex(prefix) {
		return nil, xerrors.Errorf("prefix %q: %w", prefix, ginternals.ErrInvalidOid)
	}

	dir := filepath.Join(b.root, gitpath.LooseObjectDir(prefix[:2]))
	infos, err := afero.ReadDir(b.fs, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, xerrors.Errorf("could not list %s: %w", dir, err)
	}

	var oids []ginternals.Oid
	for _, info := range infos {
		if info.IsDir() || !strings.HasPrefix(info.Name(), prefix[2:]) {
			continue
		}
		oid, err := ginternals.NewOidFromStr(prefix[:2] + info.Name())
		if err != nil {
			b.logger.Debug("skipping unexpected file in objects directory",
				zap.String("dir", dir),
				zap.String("name", info.Name()))
			continue
		}
		oids = append(oids, oid)
	}
	return oids, nil
}
