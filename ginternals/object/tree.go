package object

import (
	"bytes"
	"sort"
	"strconv"
	"strings"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/internal/readutil"
	"golang.org/x/xerrors"
)

// maxModeSize is the maximum number of octal chars a mode can use
const maxModeSize = 6

// TreeObjectMode represents the mode of an object inside a tree
// Non-standard modes (like 0o100664) are kept as is
type TreeObjectMode int32

const (
	// ModeFile represents the mode to use for a regular file
	ModeFile TreeObjectMode = 0o100644
	// ModeExecutable represents the mode to use for a executable file
	ModeExecutable TreeObjectMode = 0o100755
	// ModeDirectory represents the mode to use for a directory
	ModeDirectory TreeObjectMode = 0o040000
	// ModeSymLink represents the mode to use for a symbolic link
	ModeSymLink TreeObjectMode = 0o120000
	// ModeGitLink represents the mode to use for a gitlink (submodule)
	ModeGitLink TreeObjectMode = 0o160000
)

// IsValid returns whether the mode is a supported mode or not
func (m TreeObjectMode) IsValid() bool {
	switch m {
	case ModeFile, ModeExecutable, ModeDirectory, ModeSymLink, ModeGitLink:
		return true
	default:
		return false
	}
}

// ObjectType returns the object type associated to a mode
func (m TreeObjectMode) ObjectType() Type {
	switch m {
	case ModeDirectory:
		return TypeTree
	case ModeGitLink:
		return TypeCommit
	case ModeExecutable, ModeFile, ModeSymLink:
		return TypeBlob
	default:
		// We treat anything unexpected as blob
		return TypeBlob
	}
}

// String returns the mode as it is written in a tree: in octal, without
// leading zeros
func (m TreeObjectMode) String() string {
	return strconv.FormatInt(int64(m), 8)
}

// Tree represents a git tree object
// Trees only reference their children by ID, subtrees have to be
// retrieved from the odb
type Tree struct {
	rawObject *Object
	// we don't use pointers to make sure entries are immutable
	entries []TreeEntry
}

// TreeEntry represents an entry inside a git tree
type TreeEntry struct {
	Path string
	ID   ginternals.Oid
	Mode TreeObjectMode

	// rawMode contains the mode as it was written in the tree, when it
	// differs from Mode.String() (ex. "040000")
	rawMode string
}

// modeBytes returns the mode as it should be written in a tree
func (e TreeEntry) modeBytes() string {
	if e.rawMode != "" {
		if m, err := strconv.ParseUint(e.rawMode, 8, 32); err == nil && TreeObjectMode(m) == e.Mode {
			return e.rawMode
		}
	}
	return e.Mode.String()
}

// IsEntryPathValid returns whether the given name can be used as the
// path of a tree entry.
// A path is a single path component, it cannot be "." or "..", contain
// a separator or a NUL char, and cannot be named .git
func IsEntryPathValid(p string) bool {
	switch {
	case p == "", p == ".", p == "..":
		return false
	case strings.ContainsAny(p, "/\\\x00"):
		return false
	case strings.EqualFold(p, ".git"):
		return false
	default:
		return true
	}
}

// sortKey returns the string used to sort the entry in a tree.
// Directories are sorted as if they had a trailing /
func (e TreeEntry) sortKey() string {
	if e.Mode == ModeDirectory {
		return e.Path + "/"
	}
	return e.Path
}

// SortTreeEntries sorts the entries the way git expects them to be
// stored in a tree
func SortTreeEntries(entries []TreeEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].sortKey() < entries[j].sortKey()
	})
}

// NewTree returns a new tree with the given entries.
// The entries are sorted
func NewTree(entries []TreeEntry) *Tree {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	SortTreeEntries(sorted)

	t := &Tree{
		entries: sorted,
	}
	t.rawObject = t.encode()
	return t
}

// NewTreeFromObject returns a new tree from an object.
// The order of the entries is preserved.
//
// A tree has following format:
//
// {octal_mode} {path_name}\0{40_chars_hex_sha}
//
// Note:
// - a Tree may have multiple entries
// - an empty object is an empty tree
// - a path is a single path component (see IsEntryPathValid)
func NewTreeFromObject(o *Object) (*Tree, error) {
	if o.Type() != TypeTree {
		return nil, xerrors.Errorf("type %s is not a tree: %w", o.Type(), ErrObjectInvalid)
	}

	entries := []TreeEntry{}
	objData := o.Bytes()
	offset := 0
	// i is only used for error messages
	for i := 1; offset < len(objData); i++ {
		entry := TreeEntry{}

		data := readutil.ReadTo(objData[offset:], ' ')
		if len(data) == 0 || len(data) > maxModeSize {
			return nil, xerrors.Errorf("could not retrieve the mode of entry %d: %w", i, ErrTreeInvalid)
		}
		offset += len(data) + 1 // +1 for the space
		mode, err := strconv.ParseUint(string(data), 8, 32)
		if err != nil {
			return nil, xerrors.Errorf("could not parse mode %q of entry %d: %w", string(data), i, ErrTreeInvalid)
		}
		entry.Mode = TreeObjectMode(mode)
		if entry.Mode.String() != string(data) {
			entry.rawMode = string(data)
		}

		data = readutil.ReadTo(objData[offset:], 0)
		if len(data) == 0 {
			return nil, xerrors.Errorf("could not retrieve the path of entry %d: %w", i, ErrTreeInvalid)
		}
		offset += len(data) + 1 // +1 for the \0
		entry.Path = string(data)
		if !IsEntryPathValid(entry.Path) {
			return nil, xerrors.Errorf("invalid path %q for entry %d: %w", entry.Path, i, ErrTreeInvalid)
		}

		if offset+ginternals.OidHexSize > len(objData) {
			return nil, xerrors.Errorf("not enough space to retrieve the ID of entry %d: %w", i, ErrTreeInvalid)
		}
		entry.ID, err = ginternals.NewOidFromChars(objData[offset : offset+ginternals.OidHexSize])
		if err != nil {
			return nil, xerrors.Errorf("invalid SHA for entry %d (%s): %w", i, err.Error(), ErrTreeInvalid)
		}
		offset += ginternals.OidHexSize

		entries = append(entries, entry)
	}

	return &Tree{
		rawObject: o,
		entries:   entries,
	}, nil
}

// Entries returns a copy of tree entries
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Entry returns the entry matching the given path, if any
func (t *Tree) Entry(path string) (TreeEntry, bool) {
	for _, e := range t.entries {
		if e.Path == path {
			return e, true
		}
	}
	return TreeEntry{}, false
}

// ID returns the object's ID
func (t *Tree) ID() ginternals.Oid {
	return t.rawObject.ID()
}

// ToObject returns an Object representing the tree
func (t *Tree) ToObject() *Object {
	return t.rawObject
}

// encode builds the raw object of the tree, keeping the entries in
// their current order
func (t *Tree) encode() *Object {
	// Quick reminder that the Write* methods on bytes.Buffer never fails,
	// the error returned is always nil
	buf := new(bytes.Buffer)

	// A tree object is only composed of a bunch of entries back to back
	for _, e := range t.entries {
		buf.WriteString(e.modeBytes())
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte(0)
		buf.WriteString(e.ID.String())
	}

	return New(TypeTree, buf.Bytes())
}
