package object

import (
	"github.com/Nivl/minigit/ginternals"
	"golang.org/x/xerrors"
)

// Blob represents a blob object. A blob is an opaque byte payload,
// usually the content of a file
type Blob struct {
	rawObject *Object
}

// NewBlob returns a new Blob containing the given data
func NewBlob(data []byte) *Blob {
	return &Blob{
		rawObject: New(TypeBlob, data),
	}
}

// NewBlobFromObject returns a new Blob object from a git Object
func NewBlobFromObject(o *Object) (*Blob, error) {
	if o.Type() != TypeBlob {
		return nil, xerrors.Errorf("type %s is not a blob: %w", o.Type(), ErrObjectInvalid)
	}
	return &Blob{
		rawObject: o,
	}, nil
}

// ID returns the blob's ID
func (b *Blob) ID() ginternals.Oid {
	return b.rawObject.ID()
}

// Bytes returns the blob's contents
func (b *Blob) Bytes() []byte {
	return b.rawObject.Bytes()
}

// BytesCopy returns a copy of blob's contents
func (b *Blob) BytesCopy() []byte {
	out := make([]byte, b.Size())
	copy(out, b.Bytes())
	return out
}

// Size returns the size of the blob
func (b *Blob) Size() int {
	return b.rawObject.Size()
}

// ToObject returns the Blob's underlying Object
func (b *Blob) ToObject() *Object {
	return b.rawObject
}
