package git

import (
	"errors"
	"fmt"
)

// List of errors returned by the Repository struct
var (
	ErrNotAGitRepository            = errors.New("not a git repository")
	ErrConfigurationFileMissing     = errors.New("configuration file missing")
	ErrRepositoryUnsupportedVersion = errors.New("repository format version not supported")
	ErrNotADirectory                = errors.New("not a directory")
	ErrAlreadyInitialized           = errors.New("repository already initialized")
	ErrNotImplemented               = errors.New("not implemented")
	ErrNoHead                       = errors.New("HEAD cannot be resolved to a commit")
	ErrWorkTreeNotEmpty             = errors.New("work tree is not empty")
)

// UnsupportedVersionError is returned when the format version of
// a repository is newer than what we support.
// It matches ErrRepositoryUnsupportedVersion
type UnsupportedVersionError struct {
	// Actual is the version found in the config file
	Actual uint8
	// Supported is the highest version supported
	Supported uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s: got %d, max supported is %d", ErrRepositoryUnsupportedVersion.Error(), e.Actual, e.Supported)
}

// Unwrap returns ErrRepositoryUnsupportedVersion
func (e *UnsupportedVersionError) Unwrap() error {
	return ErrRepositoryUnsupportedVersion
}
