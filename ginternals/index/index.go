// Package index contains methods to read and write the index file
// (also called staging area or cache) of a repository
package index

import (
	"bytes"
	"crypto/sha1" //nolint:gosec // git uses sha1, that's not our call
	"encoding/binary"
	"errors"
	"time"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/ginternals/object"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Index represents a git index file
// An index file contains 4 sections. A header, a list of entries,
// a list of extensions, and a footer.
// Header: 12 bytes
//         The first 4 bytes contain the magic ('D', 'I', 'R', 'C')
//         The next 4 bytes contains the version (0, 0, 0, 2)
//             Only version 2 is supported
//         The last 4 bytes contains the number of entries in the file
// Entries: Variable size
//          Data (see stat(2) for more info on some fields):
//              - 4 bytes: the ctime seconds.
//                  ctime: Last time the file's metadata changed
//              - 4 bytes: the ctime nanosecond fractions
//              - 4 bytes: the mtime seconds
//                  mtime: Last time the file's data changed
//              - 4 bytes: mtime nanosecond fractions
//              - 4 bytes: dev (device ID)
//              - 4 bytes: ino (inode's number or file's serial number)
//              - 4 bytes: mode of the entry (high to low, left to right)
//                  - 16 unused bits
//                  - Object type (4 bits)
//                    1000 (regular file), 1010 (symbolic link)
//                    1110 (gitlink)
//                  - unused bits (3 bits)
//                  - UNIX perms (9 bits). Only 0755 and 0644 are valid
//                    for regular files. Symbolic links and gitlinks
//                    have value 0 in this field.
//              - 4 bytes: uid (user ID)
//              - 4 bytes: gid (group ID)
//              - 4 bytes: size of the file, truncated to 32 bits
//              - 20 bytes: the SHA of the object
//              - 2 bytes: flags (high to low, left to right)
//                  - assume-valid flag (1 bit)
//                  - extended flag (1 bit). Must be 0 in V2
//                  - stage (2 bits). Used during merge
//                  - name length (12 bits).
//                      - If 0xFFF, the length didn't fit in 12 bits
//                        and the name has to be read until NULL
//              - Entry path name (variable size)
//              - 1 to 8 NULL bytes as padding so the size of the entry
//                is a multiple of 8
// Extensions: Variable size. Ignored.
// Footer: 20 bytes
//         Contains the SHA1 sum of the index (without this SHA)
// https://git-scm.com/docs/index-format
type Index struct {
	Version uint32
	Entries []Entry
}

// ModeType represents the type of file of an index entry
type ModeType uint8

const (
	// ModeTypeRegular represents a regular file
	ModeTypeRegular ModeType = 0b1000
	// ModeTypeSymlink represents a symbolic link
	ModeTypeSymlink ModeType = 0b1010
	// ModeTypeGitLink represents a gitlink (submodule)
	ModeTypeGitLink ModeType = 0b1110
)

// String returns the name of the mode type
func (m ModeType) String() string {
	switch m {
	case ModeTypeRegular:
		return "regular"
	case ModeTypeSymlink:
		return "symlink"
	case ModeTypeGitLink:
		return "gitlink"
	default:
		return "unknown"
	}
}

// Flags represents the flags of an index entry
type Flags struct {
	AssumeValid bool
	Extended    bool
	Stage       uint8
	NameLength  uint16
}

// Entry represents a file in the index
type Entry struct {
	// CTime is the last time the file's metadata changed, since epoch
	CTime time.Duration
	// MTime is the last time the file's data changed, since epoch
	MTime     time.Duration
	Dev       uint32
	Ino       uint32
	ModeType  ModeType
	ModePerms uint16
	UID       uint32
	GID       uint32
	Size      uint32
	ID        ginternals.Oid
	Flags     Flags
	Path      string
}

// TreeMode returns the mode the entry would have in a tree
func (e Entry) TreeMode() object.TreeObjectMode {
	switch e.ModeType {
	case ModeTypeSymlink:
		return object.ModeSymLink
	case ModeTypeGitLink:
		return object.ModeGitLink
	case ModeTypeRegular:
		if e.ModePerms&0o111 != 0 {
			return object.ModeExecutable
		}
		return object.ModeFile
	default:
		return object.ModeFile
	}
}

const (
	// SupportedVersion is the only version of the index that can be
	// read
	SupportedVersion = 2

	headerSize      = 12
	entryPrefixSize = 62

	flagAssumeValid = 0x8000
	flagExtended    = 0x4000
	flagStageMask   = 0x3000
	flagStageShift  = 12
	// NameLengthMask is the max value of the name length in the flags.
	// A name that long has to be read until NULL.
	NameLengthMask = 0x0FFF
)

var signature = []byte{'D', 'I', 'R', 'C'}

var (
	// ErrIndexInvalid is returned when the index cannot be parsed
	ErrIndexInvalid = errors.New("invalid index")
	// ErrUnsupportedVersion is returned when the version of the index
	// is not supported
	ErrUnsupportedVersion = errors.New("unsupported index version")
	// ErrUnsupportedFeature is returned when the index uses a feature
	// that is not supported, like extended flags
	ErrUnsupportedFeature = errors.New("unsupported index feature")
)

// Read reads and decodes the index file at the given path
func Read(fs afero.Fs, path string) (*Index, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, xerrors.Errorf("could not read index %s: %w", path, err)
	}
	idx, err := Decode(data)
	if err != nil {
		return nil, xerrors.Errorf("could not decode index %s: %w", path, err)
	}
	return idx, nil
}

// Decode parses the provided data into an Index
// The extensions and the checksum are ignored
func Decode(data []byte) (*Index, error) {
	if len(data) < headerSize {
		return nil, xerrors.Errorf("header is %d bytes long: %w", len(data), ErrIndexInvalid)
	}
	if !bytes.Equal(data[:4], signature) {
		return nil, xerrors.Errorf("unexpected signature %q: %w", data[:4], ErrIndexInvalid)
	}

	idx := &Index{
		Version: binary.BigEndian.Uint32(data[4:8]),
	}
	if idx.Version != SupportedVersion {
		return nil, xerrors.Errorf("version %d: %w", idx.Version, ErrUnsupportedVersion)
	}

	count := binary.BigEndian.Uint32(data[8:12])
	// each entry takes at least 64 bytes, we use that to not
	// allocate crazy amount of memory if the count is garbage
	if uint64(count)*(entryPrefixSize+2) > uint64(len(data)) {
		return nil, xerrors.Errorf("index contains %d entries but only has %d bytes: %w", count, len(data), ErrIndexInvalid)
	}
	idx.Entries = make([]Entry, 0, count)

	offset := headerSize
	for i := uint32(0); i < count; i++ {
		entry, size, err := decodeEntry(data[offset:])
		if err != nil {
			return nil, xerrors.Errorf("could not decode entry %d: %w", i, err)
		}
		idx.Entries = append(idx.Entries, entry)
		offset += size
	}

	return idx, nil
}

// decodeEntry decodes the entry at the beginning of data and returns
// it alongside the number of bytes it uses (padding included)
func decodeEntry(data []byte) (e Entry, size int, err error) {
	if len(data) < entryPrefixSize {
		return e, 0, xerrors.Errorf("entry is truncated: %w", ErrIndexInvalid)
	}
	u32 := func(offset int) uint32 {
		return binary.BigEndian.Uint32(data[offset : offset+4])
	}

	e.CTime = time.Duration(u32(0))*time.Second + time.Duration(u32(4))
	e.MTime = time.Duration(u32(8))*time.Second + time.Duration(u32(12))
	e.Dev = u32(16)
	e.Ino = u32(20)

	mode := u32(24)
	e.ModeType = ModeType((mode >> 12) & 0xF)
	switch e.ModeType {
	case ModeTypeRegular, ModeTypeSymlink, ModeTypeGitLink:
	default:
		return e, 0, xerrors.Errorf("unknown object type %04b: %w", e.ModeType, ErrIndexInvalid)
	}
	e.ModePerms = uint16(mode & 0o777)

	e.UID = u32(28)
	e.GID = u32(32)
	e.Size = u32(36)
	e.ID, err = ginternals.NewOidFromHex(data[40:60])
	if err != nil {
		return e, 0, xerrors.Errorf("invalid oid: %w", ErrIndexInvalid)
	}

	flags := binary.BigEndian.Uint16(data[60:62])
	e.Flags = Flags{
		AssumeValid: flags&flagAssumeValid != 0,
		Extended:    flags&flagExtended != 0,
		Stage:       uint8((flags & flagStageMask) >> flagStageShift),
		NameLength:  flags & NameLengthMask,
	}
	if e.Flags.Extended {
		return e, 0, xerrors.Errorf("extended flags are not supported in version %d: %w", SupportedVersion, ErrUnsupportedFeature)
	}

	name := data[entryPrefixSize:]
	nameLen := int(e.Flags.NameLength)
	if e.Flags.NameLength == NameLengthMask {
		nameLen = bytes.IndexByte(name, 0)
		if nameLen == -1 {
			return e, 0, xerrors.Errorf("name is not NULL terminated: %w", ErrIndexInvalid)
		}
	}

	size = paddedEntrySize(nameLen)
	if size > len(data) {
		return e, 0, xerrors.Errorf("entry is truncated: %w", ErrIndexInvalid)
	}
	e.Path = string(name[:nameLen])
	return e, size, nil
}

// paddedEntrySize returns the size of an entry having a name of the
// given length, including the 1 to 8 NULL bytes of padding
func paddedEntrySize(nameLen int) int {
	return (entryPrefixSize + nameLen + 8) &^ 7
}

// Encode returns the binary representation of the index, followed by
// its checksum
func (idx *Index) Encode() []byte {
	// Quick reminder that the Write* methods on bytes.Buffer never fails,
	// the error returned is always nil
	buf := new(bytes.Buffer)
	buf.Write(signature)
	_ = binary.Write(buf, binary.BigEndian, idx.Version)
	_ = binary.Write(buf, binary.BigEndian, uint32(len(idx.Entries)))

	for _, e := range idx.Entries {
		start := buf.Len()
		fields := []uint32{
			uint32(e.CTime / time.Second), uint32(e.CTime % time.Second),
			uint32(e.MTime / time.Second), uint32(e.MTime % time.Second),
			e.Dev,
			e.Ino,
			uint32(e.ModeType)<<12 | uint32(e.ModePerms&0o777),
			e.UID,
			e.GID,
			e.Size,
		}
		for _, f := range fields {
			_ = binary.Write(buf, binary.BigEndian, f)
		}
		buf.Write(e.ID.Bytes())

		nameLen := len(e.Path)
		if nameLen > NameLengthMask {
			nameLen = NameLengthMask
		}
		flags := uint16(nameLen) | uint16(e.Flags.Stage&0x3)<<flagStageShift
		if e.Flags.AssumeValid {
			flags |= flagAssumeValid
		}
		if e.Flags.Extended {
			flags |= flagExtended
		}
		_ = binary.Write(buf, binary.BigEndian, flags)
		buf.WriteString(e.Path)

		padding := paddedEntrySize(len(e.Path)) - (buf.Len() - start)
		buf.Write(make([]byte, padding))
	}

	sum := sha1.Sum(buf.Bytes()) //nolint:gosec // git uses sha1, that's not our call
	buf.Write(sum[:])
	return buf.Bytes()
}
