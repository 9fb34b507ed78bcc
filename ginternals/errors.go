// Package ginternals contains objects and methods shared by all the
// layers of the repository: object ids, references, and the errors
// they return
package ginternals

import "errors"

var (
	// ErrObjectNotFound is an error corresponding to a git object not being
	// found
	ErrObjectNotFound = errors.New("object not found")

	// ErrObjectCorrupted is returned when the on-disk representation of
	// an object cannot be trusted (size mismatch, unknown type, invalid
	// header, etc.)
	ErrObjectCorrupted = errors.New("object is corrupted")
)
