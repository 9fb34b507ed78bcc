package ginternals

import (
	"bytes"
	"errors"
	"strings"

	"github.com/Nivl/minigit/internal/gitpath"
	"golang.org/x/xerrors"
)

// Common ref names
const (
	// Head is a reference to the current branch, or to a commit if
	// we're detached
	Head = "HEAD"
	// Master correspond to the default branch name if none was
	// specified
	Master = "master"

	// SymbolicRefPrefix is the prefix of a reference that targets
	// another reference
	SymbolicRefPrefix = "ref: "
)

// MaxRefDepth is the maximum number of symbolic references that
// can be followed before giving up.
const MaxRefDepth = 100

var (
	// ErrRefNotFound is an error thrown when trying to act on a
	// reference that doesn't exists
	ErrRefNotFound = errors.New("reference not found")

	// ErrRefExists is an error thrown when trying to act on a
	// reference that should not exist, but does
	ErrRefExists = errors.New("reference already exists")

	// ErrRefNameInvalid is an error thrown when the name of a reference
	// is not valid
	ErrRefNameInvalid = errors.New("reference name is not valid")

	// ErrRefInvalid is an error thrown when a reference is not valid
	ErrRefInvalid = errors.New("reference is not valid")

	// ErrRefDepthExceeded is returned when more than MaxRefDepth
	// symbolic references had to be followed. This usually means
	// there's a cycle.
	// This is not a lookup failure, the refs on disk are broken.
	ErrRefDepthExceeded = errors.New("reference depth exceeded, possible cycle")
)

// ReferenceType represents the type of a reference
type ReferenceType int8

const (
	// OidReference represents a reference that targets an Oid
	OidReference ReferenceType = 1
	// SymbolicReference represents a reference that targets another
	// reference
	SymbolicReference ReferenceType = 2
)

// Reference represents a git reference
// https://git-scm.com/book/en/v2/Git-Internals-Git-References
type Reference struct {
	name   string
	target string
	id     Oid
	typ    ReferenceType
}

// RefContent represents a method that returns the content of reference
// This is used so we can do the process here, without depending
// on a specific backend or having circular dependencies
type RefContent func(name string) ([]byte, error)

// ResolveReference resolves symbolic references until an Oid is found.
// The targets of symbolic references are always looked up as
// refs/<target> (the refs/ prefix is added if missing).
// ErrRefDepthExceeded is returned if more than MaxRefDepth symbolic
// references have to be followed.
func ResolveReference(name string, finder RefContent) (*Reference, error) {
	return resolveRef(name, finder, 0)
}

func resolveRef(name string, finder RefContent, depth int) (*Reference, error) {
	if depth > MaxRefDepth {
		return nil, xerrors.Errorf(`ref "%s" after %d indirections: %w`, name, depth-1, ErrRefDepthExceeded)
	}

	if !IsRefNameValid(name) {
		return nil, xerrors.Errorf(`ref "%s": %w`, name, ErrRefNameInvalid)
	}

	data, err := finder(name)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSuffix(data, []byte{'\n'})

	if bytes.HasPrefix(data, []byte(SymbolicRefPrefix)) {
		symbolicTarget := NormalizeRefName(string(data[len(SymbolicRefPrefix):]))
		ref, err := resolveRef(symbolicTarget, finder, depth+1)
		if err != nil {
			return nil, err
		}
		return &Reference{
			typ:    SymbolicReference,
			name:   name,
			id:     ref.id,
			target: symbolicTarget,
		}, nil
	}

	oid, err := NewOidFromChars(bytes.TrimSpace(data))
	if err != nil {
		return nil, xerrors.Errorf(`ref "%s" contains "%s": %w`, name, string(data), ErrRefInvalid)
	}
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   oid,
	}, nil
}

// NormalizeRefName returns the full name of a reference.
// HEAD is returned untouched, anything else is prefixed by refs/
// if needed.
// ex. heads/main and refs/heads/main both returns refs/heads/main
func NormalizeRefName(name string) string {
	name = strings.TrimSpace(name)
	if name == Head {
		return name
	}
	return gitpath.RefFullName(name)
}

// NewReference return a new Reference object that targets
// an object
func NewReference(name string, target Oid) *Reference {
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   target,
	}
}

// NewSymbolicReference return a new Reference object that targets
// another reference.
// Example HEAD targeting refs/heads/master
func NewSymbolicReference(name, target string) *Reference {
	return &Reference{
		typ:    SymbolicReference,
		name:   name,
		target: target,
	}
}

// Name returns the full name fo the reference:
// example: refs/heads/master
func (ref *Reference) Name() string {
	return ref.name
}

// Target returns the ID targeted by a reference
func (ref *Reference) Target() Oid {
	return ref.id
}

// Type returns the type of a reference
func (ref *Reference) Type() ReferenceType {
	return ref.typ
}

// SymbolicTarget returns the symbolic target of a reference
func (ref *Reference) SymbolicTarget() string {
	return ref.target
}

// IsRefNameValid returns whether the name of a reference is valid or not
// https://stackoverflow.com/a/12093994/382879
func IsRefNameValid(name string) bool {
	// the reference name cannot:
	// - be empty
	// - end by a "/"
	// - end by .
	if name == "" || name[len(name)-1] == '/' || name[len(name)-1] == '.' {
		return false
	}

	// the reference name cannot contain:
	// - an ASCII char below 32 or a DEL (ASCII 127)
	// - * ? ! ^ ~ : [ \ or a space
	// - @{ or ..
	for i, c := range name {
		if c < 32 || c == 127 {
			return false
		}
		switch c {
		case '*', '?', '!', '^', '~', ' ', '[', '\\', ':':
			return false
		}
		if i < len(name)-1 {
			substr := name[i : i+2]
			if substr == "@{" || substr == ".." {
				return false
			}
		}
	}

	for _, s := range strings.Split(name, "/") {
		// a segment cannot:
		// - be empty
		// - start by a dot
		// - end by ".lock"
		if s == "" || s[0] == '.' || strings.HasSuffix(s, ".lock") {
			return false
		}
	}

	return true
}
