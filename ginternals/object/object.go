// Package object contains methods and objects to work with git objects
package object

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/Nivl/minigit/ginternals"
	"github.com/Nivl/minigit/internal/errutil"
	"github.com/klauspost/compress/zlib"
	"golang.org/x/xerrors"
)

var (
	// ErrObjectUnknown represents an error thrown when encoutering an
	// unknown object
	ErrObjectUnknown = errors.New("invalid object type")

	// ErrObjectInvalid represents an error thrown when an object contains
	// unexpected data or when the wrong object is provided to a method.
	// Ex. Parsing a blob as a commit
	ErrObjectInvalid = errors.New("invalid object")

	// ErrTreeInvalid represents an error thrown when parsing an invalid
	// tree object
	ErrTreeInvalid = errors.New("invalid tree")

	// ErrCommitInvalid represents an error thrown when parsing an invalid
	// commit object
	ErrCommitInvalid = errors.New("invalid commit")

	// ErrTagInvalid represents an error thrown when parsing an invalid
	// tag object
	ErrTagInvalid = errors.New("invalid tag")
)

// Type represents the type of an object
type Type int8

// List of all the possible object types
// The values match the ones used by git in packfiles
const (
	TypeCommit Type = 1
	TypeTree   Type = 2
	TypeBlob   Type = 3
	TypeTag    Type = 4
)

func (t Type) String() string {
	switch t {
	case TypeCommit:
		return "commit"
	case TypeTree:
		return "tree"
	case TypeBlob:
		return "blob"
	case TypeTag:
		return "tag"
	default:
		return fmt.Sprintf("unknown(%d)", t)
	}
}

// IsValid check id the object type is an existing type
func (t Type) IsValid() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob, TypeTag:
		return true
	default:
		return false
	}
}

// NewTypeFromString returns an Type from its string
// representation
func NewTypeFromString(t string) (Type, error) {
	switch t {
	case "commit":
		return TypeCommit, nil
	case "tree":
		return TypeTree, nil
	case "blob":
		return TypeBlob, nil
	case "tag":
		return TypeTag, nil
	default:
		return 0, xerrors.Errorf("%q: %w", t, ErrObjectUnknown)
	}
}

// Object represents a git object. An object can be of multiple types
// but they all share similarities (same storage system, same header,
// etc.).
// The ID of an object is always computed from its content, it
// cannot be set.
// https://git-scm.com/book/en/v2/Git-Internals-Git-Objects
type Object struct {
	id      ginternals.Oid
	typ     Type
	content []byte

	idProcessing sync.Once
}

// New creates a new git object of the given type
func New(typ Type, content []byte) *Object {
	return &Object{
		typ:     typ,
		content: content,
	}
}

// ID returns the ID of the object.
// The ID is the SHA of the envelope of the object
func (o *Object) ID() ginternals.Oid {
	o.idProcessing.Do(func() {
		o.id = ginternals.NewOidFromContent(o.Envelope())
	})
	return o.id
}

// Size returns the size of the object
func (o *Object) Size() int {
	return len(o.content)
}

// Type returns the Type for this object
func (o *Object) Type() Type {
	return o.typ
}

// Bytes returns the object's contents
func (o *Object) Bytes() []byte {
	return o.content
}

// Envelope returns the object as it is stored in a loose object,
// before compression:
// [type] [size][NULL][content]
// The type in ascii, followed by a space, followed by the size in ascii,
// followed by a null character (0), followed by the object data
func (o *Object) Envelope() []byte {
	// Quick reminder that the Write* methods on bytes.Buffer never fails,
	// the error returned is always nil
	w := new(bytes.Buffer)
	w.Grow(len(o.content) + 32)

	w.WriteString(o.Type().String())
	w.WriteByte(' ')
	w.WriteString(strconv.Itoa(o.Size()))
	w.WriteByte(0)
	w.Write(o.content)
	return w.Bytes()
}

// Compress return the envelope of the object zlib compressed
func (o *Object) Compress() (data []byte, err error) {
	compressedContent := new(bytes.Buffer)
	zw := zlib.NewWriter(compressedContent)
	if _, err = zw.Write(o.Envelope()); err != nil {
		errutil.Close(zw, &err)
		return nil, xerrors.Errorf("could not zlib the object: %w", err)
	}
	// the data are only flushed once the writer is closed
	if err = zw.Close(); err != nil {
		return nil, xerrors.Errorf("could not flush the compressed object: %w", err)
	}
	return compressedContent.Bytes(), nil
}

// AsBlob parses the object as Blob
func (o *Object) AsBlob() (*Blob, error) {
	return NewBlobFromObject(o)
}

// AsTree parses the object as Tree
func (o *Object) AsTree() (*Tree, error) {
	return NewTreeFromObject(o)
}

// AsCommit parses the object as Commit
func (o *Object) AsCommit() (*Commit, error) {
	return NewCommitFromObject(o)
}

// AsTag parses the object as Tag
func (o *Object) AsTag() (*Tag, error) {
	return NewTagFromObject(o)
}
