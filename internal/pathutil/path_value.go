package pathutil

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"golang.org/x/xerrors"
)

// PathValueType represents the type of a path
type PathValueType int

const (
	// PathValueTypeFile represent file
	PathValueTypeFile PathValueType = iota
	// PathValueTypeDir represent a directory
	PathValueTypeDir
)

var (
	// ErrIsDirectory is an error returned when a path
	// points to a directory instead of a file
	ErrIsDirectory = errors.New("path is a directory")
	// ErrIsNotDirectory is an error returned when a path
	// is expected to points to a directory but isn't
	ErrIsNotDirectory = errors.New("path is not a directory")
	// ErrUnknownType is an error returned when an unknown PathValueType
	// is provided to a method
	ErrUnknownType = errors.New("type unknown")
)

// PathValue represents a Flag value to be parsed by spf13/pflag
type PathValue struct {
	defaultValue  string
	userValue     string
	typ           PathValueType
	pathMustExist bool
	valueSet      bool
}

// NewDirPathFlagWithDefault return a new Flag Value that should hold
// a valid path to a directory
func NewDirPathFlagWithDefault(defaultPath string) pflag.Value {
	return &PathValue{
		pathMustExist: true,
		typ:           PathValueTypeDir,
		defaultValue:  defaultPath,
	}
}

// FilePath returns the absolute path of p, which must point to an
// existing file. Relative paths are resolved from base
func FilePath(base, p string) (string, error) {
	if p == "" {
		p = "."
	}
	v := &PathValue{
		pathMustExist: true,
		typ:           PathValueTypeFile,
		defaultValue:  base,
	}
	if err := v.Set(p); err != nil {
		return "", err
	}
	return v.String(), nil
}

// we make sure the struct implements the interface
var _ pflag.Value = (*PathValue)(nil)

// String returns the flag's value
func (v *PathValue) String() string {
	if v.valueSet {
		return v.userValue
	}
	return v.defaultValue
}

// Set sets the flag's value.
// Relative paths are appended to the current value (the default
// value if Set was never called), absolute paths overwrite it
func (v *PathValue) Set(value string) (err error) {
	if value == "" {
		return nil
	}

	if !filepath.IsAbs(value) {
		value = filepath.Join(v.String(), value)
	}
	value, err = filepath.Abs(value)
	if err != nil {
		return xerrors.Errorf("could not find absolute path: %w", err)
	}

	info, err := os.Stat(value)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return xerrors.Errorf("could not check path %s: %w", value, err)
	}

	if v.pathMustExist && errors.Is(err, os.ErrNotExist) {
		return xerrors.Errorf("invalid path %s: %w", value, os.ErrNotExist)
	}

	if info != nil {
		switch v.typ {
		case PathValueTypeFile:
			if info.IsDir() {
				return xerrors.Errorf("invalid path %s: %w", value, ErrIsDirectory)
			}
		case PathValueTypeDir:
			if !info.IsDir() {
				return xerrors.Errorf("invalid path %s: %w", value, ErrIsNotDirectory)
			}
		default:
			return xerrors.Errorf("type %d: %w", v.typ, ErrUnknownType)
		}
	}

	v.valueSet = true
	v.userValue = value
	return nil
}

// Type returns the unique type of the Value
func (v *PathValue) Type() string {
	return "path"
}
